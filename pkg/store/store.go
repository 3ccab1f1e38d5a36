// Package store persists scan results for the HTTP API. Each stored
// scan wraps a repository profile with a generated identity and a
// timestamp; the engine itself stays free of storage concerns.
package store

import (
	"context"
	"time"

	"github.com/repolens/repolens/pkg/profile"
)

// ScanRecord is one persisted scan.
type ScanRecord struct {
	ID        string                    `bson:"_id" json:"id"`
	Root      string                    `bson:"root" json:"root"`
	CreatedAt time.Time                 `bson:"created_at" json:"created_at"`
	Profile   profile.RepositoryProfile `bson:"profile" json:"profile"`
}

// Store is the persistence contract for scan results.
type Store interface {
	// Save persists a profile and returns the stored record with its
	// generated ID.
	Save(ctx context.Context, p *profile.RepositoryProfile) (*ScanRecord, error)

	// Get returns the record with the given ID, or an error with code
	// ErrCodeProfileNotFound.
	Get(ctx context.Context, id string) (*ScanRecord, error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]ScanRecord, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
