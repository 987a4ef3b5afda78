package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/export"
	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/normalize"
	"github.com/sells-group/property-cli/internal/pipeline"
	"github.com/sells-group/property-cli/internal/portfolio"
	"github.com/sells-group/property-cli/internal/ranking"
	"github.com/sells-group/property-cli/internal/scorer"
	"github.com/sells-group/property-cli/internal/store"
)

const (
	defaultTopK  = 5
	maxBodyBytes = 4 << 20
)

// rankedProperty is one entry of a ranked listing.
type rankedProperty struct {
	Rank     int                  `json:"rank"`
	Property model.PropertyRecord `json:"property"`
	Score    model.ScoredProperty `json:"score"`
	Geohash  string               `json:"geohash,omitempty"`
}

type rankedResponse struct {
	SettingsVersion uint64           `json:"settings_version"`
	Total           int              `json:"total"`
	Properties      []rankedProperty `json:"properties"`
}

type settingsResponse struct {
	Version     uint64               `json:"version"`
	Fingerprint string               `json:"fingerprint"`
	Config      config.ScoringConfig `json:"config"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listProperties(w http.ResponseWriter, r *http.Request) {
	res, err := s.session.Results(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rankedBody(res, res.Ranked))
}

func (s *Server) topProperties(w http.ResponseWriter, r *http.Request) {
	k := defaultTopK
	if q := r.URL.Query().Get("k"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "k must be a non-negative integer")
			return
		}
		k = v
	}

	res, err := s.session.Results(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rankedBody(res, ranking.TopN(res.Ranked, k)))
}

func (s *Server) getProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.session.Results(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	pos := ranking.Position(res.Ranked, id)
	if pos == 0 {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	writeJSON(w, http.StatusOK, rankedEntry(res, pos))
}

func (s *Server) createProperty(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r, schemaProperty)
	if !ok {
		return
	}
	var raw model.RawProperty
	if err := json.Unmarshal(body, &raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.session.Add(r.Context(), raw)
	var verr *normalize.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
		return
	case err != nil:
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"property": res.Record,
		"warnings": res.Warnings,
	})
}

func (s *Server) createBatch(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r, schemaBatch)
	if !ok {
		return
	}
	var raws []model.RawProperty
	if err := json.Unmarshal(body, &raws); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i := range raws {
		raws[i].Row = i + 1
	}

	report, err := s.session.Ingest(r.Context(), raws)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) deleteProperty(w http.ResponseWriter, r *http.Request) {
	err := s.session.Remove(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "property not found")
	case err != nil:
		writeInternal(w, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	k := defaultTopK
	if q := r.URL.Query().Get("k"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v >= 0 {
			k = v
		}
	}
	d, err := s.session.Dashboard(r.Context(), k)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, settingsBody(s.session.Settings()))
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r, schemaSettings)
	if !ok {
		return
	}
	var cfg config.ScoringConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, err := s.session.ApplySettings(r.Context(), cfg)
	var cerr *scorer.ConfigError
	switch {
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    "invalid settings",
			"problems": cerr.Problems,
			"current":  settingsBody(current),
		})
		return
	case err != nil:
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsBody(current))
}

func (s *Server) settingsHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.session.SettingsHistory(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	res, err := s.session.Results(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="properties.csv"`)
	if err := export.WriteCSV(w, res.Ranked, res.Records); err != nil {
		zap.L().Error("server: csv export failed", zap.Error(err))
	}
}

func (s *Server) exportXLSX(w http.ResponseWriter, r *http.Request) {
	res, err := s.session.Results(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="properties.xlsx"`)
	summary := portfolio.Aggregate(res.Records, res.Ranked)
	if err := export.WriteXLSXTo(w, res.Ranked, res.Records, summary); err != nil {
		zap.L().Error("server: xlsx export failed", zap.Error(err))
	}
}

// readBody reads and schema-checks the request body. On failure the
// response has been written and ok is false.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, schema string) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	if err := s.schemas.validate(schema, body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return body, true
}

func rankedBody(res *pipeline.Results, entries []model.ScoredProperty) rankedResponse {
	out := rankedResponse{
		SettingsVersion: res.Settings.Version(),
		Total:           len(res.Ranked),
		Properties:      make([]rankedProperty, 0, len(entries)),
	}
	for i := range entries {
		out.Properties = append(out.Properties, rankedEntry(res, i+1))
	}
	return out
}

// rankedEntry builds the entry at 1-based position pos of res.Ranked.
func rankedEntry(res *pipeline.Results, pos int) rankedProperty {
	sp := res.Ranked[pos-1]
	rec, _ := res.Record(sp.PropertyID)
	entry := rankedProperty{Rank: pos, Property: rec, Score: sp}
	if loc := res.Resolutions[sp.PropertyID]; loc != nil {
		entry.Geohash = loc.Geohash
	}
	return entry
}

func settingsBody(s *scorer.Settings) settingsResponse {
	return settingsResponse{
		Version:     s.Version(),
		Fingerprint: s.Fingerprint(),
		Config:      s.Config(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeInternal(w http.ResponseWriter, err error) {
	zap.L().Error("server: request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
