package uber

import (
	"time"
)

const (
	// APIBaseURL is the Uber Eats API endpoint
	APIBaseURL = "https://api.uber.com/v1"
	// TokenURL is the OAuth token endpoint
	TokenURL = "https://login.uber.com/oauth/v2/token"
	// AuthorizeBaseURL is the user-facing OAuth authorization endpoint
	AuthorizeBaseURL = "https://login.uber.com/oauth/v2/authorize"

	// OAuthScope is requested on every authorization
	OAuthScope = "eats.store eats.order"
)

// Config holds the static (non-tenant) configuration of the Uber adapter
type Config struct {
	// RedirectURL is where the OAuth flow returns the authorization code
	RedirectURL string
	// Timeout bounds each HTTP call
	Timeout time.Duration
	// BaseURL overrides the API endpoint when set
	BaseURL string
	// TokenEndpoint overrides the OAuth token endpoint when set
	TokenEndpoint string
}

// NewConfig creates an Uber adapter configuration with defaults
func NewConfig(redirectURL string) *Config {
	return &Config{
		RedirectURL: redirectURL,
		Timeout:     30 * time.Second,
	}
}

// apiBaseURL returns the effective API endpoint
func (c *Config) apiBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return APIBaseURL
}

// tokenURL returns the effective OAuth token endpoint
func (c *Config) tokenURL() string {
	if c.TokenEndpoint != "" {
		return c.TokenEndpoint
	}
	return TokenURL
}
