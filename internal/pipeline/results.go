package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/portfolio"
	"github.com/sells-group/property-cli/internal/ranking"
	"github.com/sells-group/property-cli/internal/resolve"
	"github.com/sells-group/property-cli/internal/scorer"
)

// Results is the ranked portfolio under one settings version.
type Results struct {
	Settings *scorer.Settings
	// Records are the stored records with resolved locations filled in, in
	// insertion order.
	Records     []model.PropertyRecord
	Resolutions map[string]*model.Resolution
	Ranked      []model.ScoredProperty
}

// Record returns the resolved record with the given id.
func (r *Results) Record(id string) (model.PropertyRecord, bool) {
	for _, rec := range r.Records {
		if rec.ID == id {
			return rec, true
		}
	}
	return model.PropertyRecord{}, false
}

// Dashboard is the top of the ranking plus the portfolio summary.
type Dashboard struct {
	SettingsVersion uint64                 `json:"settings_version"`
	Total           int                    `json:"total"`
	Top             []model.ScoredProperty `json:"top"`
	Summary         portfolio.Summary      `json:"summary"`
}

// Results resolves, scores and ranks every stored property under the
// current settings. Nothing is cached between calls. Resolver failures
// degrade to unresolved; only cancellation and store errors are returned.
func (s *Session) Results(ctx context.Context) (*Results, error) {
	settings := s.settings.Current()
	recs, err := s.store.ListProperties(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: list properties")
	}

	resolved, resolutions, err := s.resolveAll(ctx, recs, settings.ReferencePostcode())
	if err != nil {
		return nil, err
	}

	return &Results{
		Settings:    settings,
		Records:     resolved,
		Resolutions: resolutions,
		Ranked:      ranking.Rank(scorer.ScoreAll(resolved, settings)),
	}, nil
}

// Dashboard returns the top k properties and the portfolio summary.
func (s *Session) Dashboard(ctx context.Context, k int) (*Dashboard, error) {
	res, err := s.Results(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		SettingsVersion: res.Settings.Version(),
		Total:           len(res.Ranked),
		Top:             ranking.TopN(res.Ranked, k),
		Summary:         portfolio.Aggregate(res.Records, res.Ranked),
	}, nil
}

func (s *Session) resolveAll(ctx context.Context, recs []model.PropertyRecord, reference string) ([]model.PropertyRecord, map[string]*model.Resolution, error) {
	out := make([]model.PropertyRecord, len(recs))
	copy(out, recs)
	resolutions := make(map[string]*model.Resolution, len(recs))
	if s.resolver == nil {
		return out, resolutions, nil
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range out {
		rec := out[i]
		if rec.Postcode == "" || (rec.CommuteMinutes != nil && rec.GrammarSchoolDistanceKM != nil) {
			continue
		}
		g.Go(func() error {
			res, err := s.resolver.Resolve(gCtx, resolve.Query{Postcode: rec.Postcode, Reference: reference})
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				zap.L().Warn("pipeline: resolve failed, scoring as unresolved",
					zap.String("property_id", rec.ID),
					zap.String("postcode", rec.Postcode),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			resolutions[rec.ID] = res
			mu.Unlock()
			out[i] = rec.WithResolution(res)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: resolve locations")
	}
	return out, resolutions, nil
}
