package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/pipeline"
	"github.com/sells-group/property-cli/internal/resolve"
	"github.com/sells-group/property-cli/internal/scorer"
	"github.com/sells-group/property-cli/internal/store"
)

// sessionEnv holds the store, resolver and analysis session used by every
// command that scores properties.
type sessionEnv struct {
	Store    store.Store
	Resolver *resolve.Cached
	Session  *pipeline.Session
}

// Close releases resources held by the session environment.
func (se *sessionEnv) Close() {
	if se.Store != nil {
		_ = se.Store.Close()
	}
}

// initSession opens the store, builds the resolver and starts a session
// scoring against scoring. Callers should defer env.Close().
func initSession(ctx context.Context, mode string, scoring config.ScoringConfig) (*sessionEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	settings, err := scorer.NewSession(scoring)
	if err != nil {
		return nil, err
	}

	res, err := resolve.FromConfig(cfg.Resolver)
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLite(cfg.Store.DSN)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	sess := pipeline.New(st, res, settings,
		pipeline.WithConcurrency(cfg.Pipeline.ResolveConcurrency),
	)

	zap.L().Debug("session ready",
		zap.String("mode", mode),
		zap.String("resolver", cfg.Resolver.Mode),
		zap.String("reference", settings.Current().ReferencePostcode()),
	)

	return &sessionEnv{Store: st, Resolver: res, Session: sess}, nil
}

// addScoringFlags registers the flags that override scoring settings.
func addScoringFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("profile", "", "YAML weight profile to apply over the config")
	f.String("reference", "", "reference postcode for commute and school lookups")
	f.Int64("budget-min", 0, "lower budget bound in pounds")
	f.Int64("budget-max", 0, "upper budget bound in pounds")
	f.Int("min-bedrooms", 0, "minimum acceptable bedrooms")
	f.Float64("max-commute", 0, "maximum acceptable commute in minutes")
	f.Float64("weight-price", 0, "price weight (0-0.40)")
	f.Float64("weight-commute", 0, "commute weight (0-0.40)")
	f.Float64("weight-property-type", 0, "property type weight (0-0.25)")
	f.Float64("weight-bedrooms", 0, "bedrooms weight (0-0.25)")
	f.Float64("weight-outdoor-space", 0, "outdoor space weight (0-0.15)")
	f.Float64("weight-schools", 0, "schools weight (0-0.15)")
	f.Float64("weight-grammar-bonus", 0, "grammar school bonus weight (0-0.15)")
}

// scoringFromFlags returns the configured scoring settings with the profile
// and any explicitly set flags applied, in that order.
func scoringFromFlags(cmd *cobra.Command, base config.ScoringConfig) (config.ScoringConfig, error) {
	c := base
	f := cmd.Flags()

	if path, _ := f.GetString("profile"); path != "" {
		p, err := scorer.LoadProfile(path, c)
		if err != nil {
			return base, err
		}
		c = p
	}

	if f.Changed("reference") {
		c.ReferencePostcode, _ = f.GetString("reference")
	}
	if f.Changed("budget-min") {
		c.BudgetMin, _ = f.GetInt64("budget-min")
	}
	if f.Changed("budget-max") {
		c.BudgetMax, _ = f.GetInt64("budget-max")
	}
	if f.Changed("min-bedrooms") {
		c.MinBedrooms, _ = f.GetInt("min-bedrooms")
	}
	if f.Changed("max-commute") {
		c.MaxCommuteMinutes, _ = f.GetFloat64("max-commute")
	}

	weights := map[string]*float64{
		"weight-price":         &c.Weights.Price,
		"weight-commute":       &c.Weights.Commute,
		"weight-property-type": &c.Weights.PropertyType,
		"weight-bedrooms":      &c.Weights.Bedrooms,
		"weight-outdoor-space": &c.Weights.OutdoorSpace,
		"weight-schools":       &c.Weights.Schools,
		"weight-grammar-bonus": &c.Weights.GrammarBonus,
	}
	for name, dst := range weights {
		if f.Changed(name) {
			*dst, _ = f.GetFloat64(name)
		}
	}

	if err := scorer.ValidateConfig(c); err != nil {
		return base, err
	}
	return c, nil
}
