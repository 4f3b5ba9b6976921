package model

import "time"

// AuditEntry is one append-only audit-log row. Details is free-form JSON
// (counts, skip samples, run id for import runs).
type AuditEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
