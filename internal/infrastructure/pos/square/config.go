package square

import (
	"errors"
	"time"

	"github.com/menubridge/backend/internal/domain/tenant"
)

const (
	// ProductionBaseURL is the production API endpoint
	ProductionBaseURL = "https://connect.squareup.com"
	// SandboxBaseURL is the sandbox API endpoint
	SandboxBaseURL = "https://connect.squareupsandbox.com"

	// apiVersion is sent as the Square-Version header on every request
	apiVersion = "2024-06-04"
)

// Errors for Square configuration
var (
	ErrMissingAccessToken = errors.New("square: access token is required")
	ErrMissingLocationID  = errors.New("square: location ID is required")
)

// Config holds the static (non-tenant) configuration of the Square adapter
type Config struct {
	// Timeout bounds each HTTP call
	Timeout time.Duration
	// BaseURL overrides the environment-derived endpoint when set
	BaseURL string
}

// NewConfig creates a Square adapter configuration with defaults
func NewConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

// credentials is the per-tenant call material resolved from stored settings
type credentials struct {
	accessToken string
	locationID  string
	baseURL     string
}

// credentialsFromSettings resolves per-tenant credentials, deriving the API
// endpoint from the stored environment unless the adapter config overrides it
func (c *Config) credentialsFromSettings(s *tenant.Settings) (*credentials, error) {
	if !s.HasProviderCredentials() {
		return nil, ErrMissingAccessToken
	}

	baseURL := c.BaseURL
	if baseURL == "" {
		if s.ProviderEnvironment == tenant.EnvironmentProduction {
			baseURL = ProductionBaseURL
		} else {
			baseURL = SandboxBaseURL
		}
	}

	return &credentials{
		accessToken: s.ProviderAccessToken,
		locationID:  s.ProviderLocationID,
		baseURL:     baseURL,
	}, nil
}
