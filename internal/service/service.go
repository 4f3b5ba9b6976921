package service

// Package service contains the ingestion use cases: local batch upload,
// external bulk import, and single-file mutations (inline edit, delete,
// rollback). Byte persistence always goes through the upload strategy chain;
// catalog rows go through the repositories.

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("file not found")
	ErrNoFiles        = errors.New("no files supplied")
	ErrTooManyFiles   = errors.New("files-per-document cap exceeded")
	ErrTargetRequired = errors.New("target section or document is required")
	ErrFolderRef      = errors.New("folder reference not allowed for file-only import")
	ErrNoSource       = errors.New("content source not configured")
)

// ingestedFiles counts per-file outcomes across both ingestion paths.
var ingestedFiles = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ingest_files_total",
		Help: "Total number of files processed by the ingestion pipeline.",
	},
	[]string{"path", "outcome"},
)

func init() {
	prometheus.MustRegister(ingestedFiles)
}

func logJSON(level, component, event string, fields map[string]any) {
	entry := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"component": component,
		"event":     event,
	}
	for k, v := range fields {
		entry[k] = v
	}
	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
