package model

import "time"

// Document is the catalog folder a File belongs to. The ingestion core
// creates Documents on demand during external import and is responsible for
// deleting them again if the subsequent file/storage write fails.
type Document struct {
	ID        string    `json:"id"`
	SectionID string    `json:"section_id"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
