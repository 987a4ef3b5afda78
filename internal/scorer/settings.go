package scorer

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/normalize"
)

// Settings is one immutable, validated version of the reference settings.
// Every ScoredProperty records the Version it was computed under.
type Settings struct {
	cfg     config.ScoringConfig
	version uint64
	weights map[model.Category]float64
	sum     float64
}

// NewSettings validates cfg and freezes it as the given version. The
// reference postcode is canonicalized.
func NewSettings(cfg config.ScoringConfig, version uint64) (*Settings, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	// ValidateConfig has checked the shape.
	cfg.ReferencePostcode, _ = normalize.CanonicalPostcode(cfg.ReferencePostcode)
	return &Settings{
		cfg:     cfg,
		version: version,
		weights: Weights(cfg.Weights),
		sum:     WeightSum(cfg.Weights),
	}, nil
}

// Config returns a copy of the underlying configuration.
func (s *Settings) Config() config.ScoringConfig { return s.cfg }

// Version returns the settings version.
func (s *Settings) Version() uint64 { return s.version }

// ReferencePostcode returns the canonical reference postcode.
func (s *Settings) ReferencePostcode() string { return s.cfg.ReferencePostcode }

// Weight returns the configured weight of cat.
func (s *Settings) Weight(cat model.Category) float64 { return s.weights[cat] }

// Share returns cat's fraction of the total weight, or 0 when all weights are 0.
func (s *Settings) Share(cat model.Category) float64 {
	if s.sum <= 0 {
		return 0
	}
	return s.weights[cat] / s.sum
}

// Fingerprint returns a short hash of the configuration for logs and
// cache validators.
func (s *Settings) Fingerprint() string {
	data, err := json.Marshal(s.cfg)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:8])
}

// Session holds the current Settings of an analysis session. Applying new
// settings bumps the version; an invalid configuration leaves the current
// settings in place.
type Session struct {
	mu      sync.RWMutex
	current *Settings
}

// NewSession starts a session at version 1.
func NewSession(cfg config.ScoringConfig) (*Session, error) {
	s, err := NewSettings(cfg, 1)
	if err != nil {
		return nil, err
	}
	return &Session{current: s}, nil
}

// Current returns the settings in effect.
func (s *Session) Current() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Apply validates cfg and makes it current under the next version.
func (s *Session) Apply(cfg config.ScoringConfig) (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := NewSettings(cfg, s.current.version+1)
	if err != nil {
		return s.current, err
	}
	s.current = next
	return next, nil
}
