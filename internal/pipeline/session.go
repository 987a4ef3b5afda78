// Package pipeline runs an analysis session: it ingests raw listings into
// the session store, resolves locations, and scores and ranks the portfolio
// under the current settings.
package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/normalize"
	"github.com/sells-group/property-cli/internal/resolve"
	"github.com/sells-group/property-cli/internal/scorer"
	"github.com/sells-group/property-cli/internal/store"
)

const defaultConcurrency = 8

// Session ties the store, the resolver and the versioned settings together.
type Session struct {
	store       store.Store
	resolver    resolve.Resolver
	settings    *scorer.Session
	normalizer  *normalize.Normalizer
	concurrency int

	// ingestMu serializes writers so duplicate checks see a stable store.
	ingestMu sync.Mutex
}

// Option configures a Session.
type Option func(*Session)

// WithConcurrency bounds parallel resolver calls.
func WithConcurrency(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(s *Session) { s.normalizer = n }
}

// New creates a Session. A nil resolver leaves every location unresolved.
func New(st store.Store, res resolve.Resolver, settings *scorer.Session, opts ...Option) *Session {
	s := &Session{
		store:       st,
		resolver:    res,
		settings:    settings,
		normalizer:  normalize.New(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestReport is the per-record outcome of Ingest.
type IngestReport struct {
	Accepted []string                       `json:"accepted"`
	Warnings map[string][]normalize.Warning `json:"warnings,omitempty"`
	Failures []*normalize.ValidationError   `json:"failures,omitempty"`
}

// Ingest normalizes raws and adds the valid records to the session. Invalid
// records and ids already in the session are reported as failures; they
// never abort the batch. The error is reserved for store failures.
func (s *Session) Ingest(ctx context.Context, raws []model.RawProperty) (*IngestReport, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	batch := s.normalizer.NormalizeBatch(raws)
	report := &IngestReport{
		Accepted: []string{},
		Warnings: map[string][]normalize.Warning{},
	}

	for _, item := range batch.Items {
		if item.Err != nil {
			report.Failures = append(report.Failures, item.Err)
			continue
		}
		rec := item.Result.Record
		if err := s.store.AddProperty(ctx, rec); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				report.Failures = append(report.Failures, duplicateError(rec.ID, raws[item.Index].Row))
				continue
			}
			return report, eris.Wrapf(err, "pipeline: add property %s", rec.ID)
		}
		report.Accepted = append(report.Accepted, rec.ID)
		if len(item.Result.Warnings) > 0 {
			report.Warnings[rec.ID] = item.Result.Warnings
		}
	}

	zap.L().Info("pipeline: ingested batch",
		zap.Int("records", len(raws)),
		zap.Int("accepted", len(report.Accepted)),
		zap.Int("rejected", len(report.Failures)),
	)
	return report, nil
}

// Add normalizes and stores a single raw record. A *normalize.ValidationError
// is returned for invalid input or an id already in the session.
func (s *Session) Add(ctx context.Context, raw model.RawProperty) (*normalize.Result, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	res, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddProperty(ctx, res.Record); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, duplicateError(res.Record.ID, raw.Row)
		}
		return nil, eris.Wrapf(err, "pipeline: add property %s", res.Record.ID)
	}
	return res, nil
}

func duplicateError(id string, row int) *normalize.ValidationError {
	return &normalize.ValidationError{
		ID:     id,
		Row:    row,
		Fields: []normalize.FieldError{{Field: "id", Message: "already in session"}},
	}
}

// Remove deletes a property from the session. store.ErrNotFound is returned
// for an unknown id.
func (s *Session) Remove(ctx context.Context, id string) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()
	return s.store.RemoveProperty(ctx, id)
}

// Get returns one stored record.
func (s *Session) Get(ctx context.Context, id string) (*model.PropertyRecord, error) {
	return s.store.GetProperty(ctx, id)
}

// Settings returns the settings in effect.
func (s *Session) Settings() *scorer.Settings {
	return s.settings.Current()
}

// ApplySettings validates cfg and makes it current. On a *scorer.ConfigError
// the previous settings stay in effect and are returned with the error.
func (s *Session) ApplySettings(ctx context.Context, cfg config.ScoringConfig) (*scorer.Settings, error) {
	next, err := s.settings.Apply(cfg)
	if err != nil {
		zap.L().Warn("pipeline: settings rejected",
			zap.Uint64("version", next.Version()),
			zap.Error(err),
		)
		return next, err
	}
	if err := s.store.AppendSettings(ctx, next.Version(), next.Config()); err != nil {
		zap.L().Warn("pipeline: failed to record settings", zap.Error(err))
	}
	zap.L().Info("pipeline: settings applied",
		zap.Uint64("version", next.Version()),
		zap.String("fingerprint", next.Fingerprint()),
	)
	return next, nil
}

// SettingsHistory returns every recorded settings version.
func (s *Session) SettingsHistory(ctx context.Context) ([]store.SettingsEntry, error) {
	return s.store.ListSettings(ctx)
}
