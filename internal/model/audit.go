package model

import "time"

// AuditEntry records a single user action. Entries are append-only.
type AuditEntry struct {
	ID         string
	UserID     string
	DocumentID *string
	Action     string
	IPHash     string
	UserAgent  string
	CreatedAt  time.Time
}
