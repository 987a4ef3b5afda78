// Package store keeps the properties of an analysis session.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/model"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound  = eris.New("store: property not found")
	ErrDuplicate = eris.New("store: duplicate property id")
)

// SettingsEntry is one applied version of the scoring settings.
type SettingsEntry struct {
	Version   uint64               `json:"version"`
	Config    config.ScoringConfig `json:"config"`
	AppliedAt time.Time            `json:"applied_at"`
}

// Store defines the persistence interface for a session.
type Store interface {
	// Properties
	AddProperty(ctx context.Context, rec model.PropertyRecord) error
	GetProperty(ctx context.Context, id string) (*model.PropertyRecord, error)
	ListProperties(ctx context.Context) ([]model.PropertyRecord, error)
	RemoveProperty(ctx context.Context, id string) error
	CountProperties(ctx context.Context) (int, error)

	// Settings history
	AppendSettings(ctx context.Context, version uint64, cfg config.ScoringConfig) error
	ListSettings(ctx context.Context) ([]SettingsEntry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
