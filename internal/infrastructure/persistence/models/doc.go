// Package models contains the GORM persistence models and their conversions
// to and from domain entities. Models stay inside the persistence layer;
// repositories return domain types only.
package models
