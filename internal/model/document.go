package model

import (
	"strings"
	"time"
)

// Document status values.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// Document is one generated file in a user's history.
// This is a pure domain model with no database-specific dependencies or tags.
//
// StorageKey is either an object key in the configured bucket or, for legacy
// records, an absolute public URL. It is written once at creation.
type Document struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"-"`
	UserName     string    `json:"-"`
	DocumentType string    `json:"document_type"`
	Filename     string    `json:"filename"`
	StorageKey   string    `json:"-"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Status       string    `json:"status"`
}

// IsLegacy reports whether the document points at a pre-existing public URL
// instead of a private object key.
func (d *Document) IsLegacy() bool {
	return strings.HasPrefix(d.StorageKey, "http://") || strings.HasPrefix(d.StorageKey, "https://")
}

// Expired reports whether the retention window has elapsed at now.
func (d *Document) Expired(now time.Time) bool {
	return !d.ExpiresAt.After(now)
}
