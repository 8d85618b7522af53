// Package models provides shared domain types for FastFile.
//
// This package contains all data models used across the service, including
// users, file links, and viewer grants. It provides a single source of truth
// for domain types with GORM annotations for database persistence.
package models

// AllModels returns all GORM models for auto-migration.
func AllModels() []any {
	return []any{
		&User{},
		&FileLink{},
		&LinkViewer{},
	}
}
