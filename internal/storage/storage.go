// Package storage abstracts the remote file-storage backend: folder
// resolution, uploads and subfolder listing. Two backends exist, Google
// Drive (REST) and S3 (folders as key prefixes).
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/local/scorefiler/internal/metrics"
)

// Folder is one immediate subfolder of a parent.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client is the storage surface the orchestrator consumes.
//
// FindOrCreateFolder is idempotent: a second call with the same
// (name, parentID) returns the same identifier. UploadFile never retries
// internally; retry policy belongs to the caller.
type Client interface {
	FindOrCreateFolder(ctx context.Context, name, parentID string) (string, error)
	UploadFile(ctx context.Context, data []byte, name, parentID, mimeType string) (string, error)
	ListSubfolders(ctx context.Context, parentID string) ([]Folder, error)
}

// Error wraps any remote storage failure with the operation that failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

func observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.ObserveStorage(op, result, time.Since(start))
}
