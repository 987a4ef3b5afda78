package scorer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/model"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ValidateConfig(cfg))
	assert.InDelta(t, 1.0, WeightSum(cfg.Weights), 1e-9)

	var total float64
	for _, cat := range model.Categories {
		total += MaxPoints[cat]
	}
	assert.Equal(t, 100.0, total)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.ScoringConfig)
		want   []string
	}{
		{
			name:   "missing postcode",
			mutate: func(c *config.ScoringConfig) { c.ReferencePostcode = "  " },
			want:   []string{"reference_postcode is required"},
		},
		{
			name:   "malformed postcode",
			mutate: func(c *config.ScoringConfig) { c.ReferencePostcode = "London Bridge" },
			want:   []string{`reference_postcode "London Bridge" is not a valid UK postcode`},
		},
		{
			name:   "inverted budget",
			mutate: func(c *config.ScoringConfig) { c.BudgetMin, c.BudgetMax = 500000, 400000 },
			want:   []string{"budget_min (500000) must be <= budget_max (400000)"},
		},
		{
			name:   "negative budget",
			mutate: func(c *config.ScoringConfig) { c.BudgetMin = -1 },
			want:   []string{"budget_min must be >= 0"},
		},
		{
			name:   "negative bedrooms",
			mutate: func(c *config.ScoringConfig) { c.MinBedrooms = -2 },
			want:   []string{"min_bedrooms must be >= 0"},
		},
		{
			name:   "zero commute",
			mutate: func(c *config.ScoringConfig) { c.MaxCommuteMinutes = 0 },
			want:   []string{"max_commute_minutes must be > 0"},
		},
		{
			name:   "weight above bound",
			mutate: func(c *config.ScoringConfig) { c.Weights.Price = 0.5 },
			want:   []string{"weights.price must be between 0 and 0.40, got 0.5"},
		},
		{
			name: "several problems reported together",
			mutate: func(c *config.ScoringConfig) {
				c.Weights.Schools = -0.1
				c.Weights.GrammarBonus = 0.2
				c.MaxCommuteMinutes = -5
			},
			want: []string{
				"max_commute_minutes must be > 0",
				"weights.schools must be between 0 and 0.15, got -0.1",
				"weights.grammar_bonus must be between 0 and 0.15, got 0.2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)
			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.want, ce.Problems)
			assert.Contains(t, err.Error(), "scorer: config validation failed")
		})
	}
}

func TestValidateConfig_BoundaryWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = config.WeightsConfig{
		Price: 0.40, Commute: 0.40, PropertyType: 0.25, Bedrooms: 0.25,
		OutdoorSpace: 0.15, Schools: 0.15, GrammarBonus: 0.15,
	}
	assert.NoError(t, ValidateConfig(cfg))

	cfg.Weights = config.WeightsConfig{}
	assert.NoError(t, ValidateConfig(cfg))
}

func TestNewSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReferencePostcode = "se19sp"
	s, err := NewSettings(cfg, 7)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), s.Version())
	assert.Equal(t, "SE1 9SP", s.ReferencePostcode())
	assert.Equal(t, 0.2, s.Weight(model.CategoryPrice))
	assert.InDelta(t, 0.2, s.Share(model.CategoryPrice), 1e-9)
	assert.Len(t, s.Fingerprint(), 16)

	cfg.BudgetMax = 1
	_, err = NewSettings(cfg, 8)
	assert.Error(t, err)
}

func TestSettings_FingerprintTracksConfig(t *testing.T) {
	a, err := NewSettings(DefaultConfig(), 1)
	require.NoError(t, err)
	b, err := NewSettings(DefaultConfig(), 2)
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	cfg := DefaultConfig()
	cfg.MinBedrooms = 4
	c, err := NewSettings(cfg, 3)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestSession_Apply(t *testing.T) {
	sess, err := NewSession(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sess.Current().Version())

	cfg := DefaultConfig()
	cfg.MaxCommuteMinutes = 45
	next, err := sess.Apply(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.Version())
	assert.Equal(t, 45.0, sess.Current().Config().MaxCommuteMinutes)

	bad := DefaultConfig()
	bad.BudgetMin, bad.BudgetMax = 600000, 500000
	kept, err := sess.Apply(bad)
	require.Error(t, err)
	assert.Same(t, next, kept)
	assert.Same(t, next, sess.Current())
	assert.Equal(t, uint64(2), sess.Current().Version())
}

func TestNewSession_Invalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReferencePostcode = ""
	_, err := NewSession(cfg)
	assert.Error(t, err)
}

func TestProfile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")

	cfg := DefaultConfig()
	cfg.BudgetMax = 500000
	cfg.Weights.Commute = 0.35
	require.NoError(t, SaveProfile(path, cfg))

	got, err := LoadProfile(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadProfile_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	data := []byte("scoring:\n  max_commute_minutes: 40\n  weights:\n    grammar_bonus: 0\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	base := DefaultConfig()
	got, err := LoadProfile(path, base)
	require.NoError(t, err)

	want := base
	want.MaxCommuteMinutes = 40
	want.Weights.GrammarBonus = 0
	assert.Equal(t, want, got)
}

func TestLoadProfile_Errors(t *testing.T) {
	dir := t.TempDir()
	base := DefaultConfig()

	_, err := LoadProfile(filepath.Join(dir, "missing.yaml"), base)
	assert.Error(t, err)

	garbled := filepath.Join(dir, "garbled.yaml")
	require.NoError(t, os.WriteFile(garbled, []byte("scoring: [unclosed"), 0o644))
	got, err := LoadProfile(garbled, base)
	assert.Error(t, err)
	assert.Equal(t, base, got)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("scoring:\n  weights:\n    price: 0.9\n"), 0o644))
	got, err = LoadProfile(invalid, base)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, base, got)
}
