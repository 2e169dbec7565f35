// Package store persists workspace snapshots behind a small interface with
// SQLite and Postgres backends. It is the persistence collaborator for the
// analytics engine: reports are computed from the snapshot it loads.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/harborview/insights-cli/internal/config"
	"github.com/harborview/insights-cli/internal/model"
)

// Store defines the persistence interface for workspace snapshots.
type Store interface {
	// SaveSnapshot replaces a workspace's records with the snapshot's
	// contents in a single transaction.
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error

	// LoadSnapshot materializes the full record set for a workspace.
	LoadSnapshot(ctx context.Context, workspaceID string) (*model.Snapshot, error)

	// Record-level upserts for incremental updates between full imports.
	UpsertProject(ctx context.Context, p model.Project) error
	UpsertTask(ctx context.Context, t model.Task) error
	UpsertBug(ctx context.Context, b model.Bug) error
	UpsertMember(ctx context.Context, m model.Member) error

	// ListWorkspaces returns the IDs of all stored workspaces.
	ListWorkspaces(ctx context.Context) ([]string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
		})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
