package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/resilience"
)

const ref = "SE1 9SP"

func TestSimulated_StationCommute(t *testing.T) {
	res, err := NewSimulated().Resolve(context.Background(), Query{Postcode: "se9 3jd", Reference: ref})
	require.NoError(t, err)
	require.True(t, res.Resolved())
	assert.InDelta(t, 43, *res.CommuteMinutes, 0.001, "Sidcup journey plus walk")
	require.NotNil(t, res.GrammarSchoolDistanceKM)
	assert.InDelta(t, 1.7, *res.GrammarSchoolDistanceKM, 0.11)
	assert.Len(t, res.Geohash, geohashPrecision)
	assert.Equal(t, SourceSimulated, res.Source)
}

func TestSimulated_DistanceCommute(t *testing.T) {
	s := NewSimulated()
	ctx := context.Background()

	res, err := s.Resolve(ctx, Query{Postcode: "SE10 9HT", Reference: ref})
	require.NoError(t, err)
	assert.InDelta(t, 26, *res.CommuteMinutes, 1)

	// Station times only apply towards central London.
	res, err = s.Resolve(ctx, Query{Postcode: "SE9 3JD", Reference: "DA15 7HD"})
	require.NoError(t, err)
	assert.InDelta(t, 23, *res.CommuteMinutes, 1)
}

func TestSimulated_ClampsToMinimum(t *testing.T) {
	res, err := NewSimulated().Resolve(context.Background(), Query{Postcode: ref, Reference: ref})
	require.NoError(t, err)
	assert.InDelta(t, minCommuteMinutes, *res.CommuteMinutes, 0.001)
}

func TestSimulated_OutwardFallback(t *testing.T) {
	res, err := NewSimulated().Resolve(context.Background(), Query{Postcode: "SE9 9ZZ", Reference: ref})
	require.NoError(t, err)
	assert.True(t, res.Resolved())
}

func TestSimulated_Unresolved(t *testing.T) {
	s := NewSimulated()
	ctx := context.Background()

	res, err := s.Resolve(ctx, Query{Postcode: "ZZ1 1ZZ", Reference: ref})
	require.NoError(t, err, "unknown postcodes are not errors")
	assert.False(t, res.Resolved())
	assert.Nil(t, res.GrammarSchoolDistanceKM)

	res, err = s.Resolve(ctx, Query{Postcode: "", Reference: ref})
	require.NoError(t, err)
	assert.False(t, res.Resolved())

	res, err = s.Resolve(ctx, Query{Postcode: "SE9 3JD", Reference: "M1 1AE"})
	require.NoError(t, err)
	assert.False(t, res.Resolved(), "unknown reference leaves commute unresolved")
	assert.NotNil(t, res.GrammarSchoolDistanceKM)
}

func TestSimulated_Deterministic(t *testing.T) {
	s := NewSimulated()
	q := Query{Postcode: "BR1 2TW", Reference: ref}
	a, err := s.Resolve(context.Background(), q)
	require.NoError(t, err)
	b, err := s.Resolve(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSimulated_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSimulated().Resolve(ctx, Query{Postcode: "SE9 3JD", Reference: ref})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHaversineKM(t *testing.T) {
	a := newPoint(51.5074, -0.0886)
	assert.InDelta(t, 0, haversineKM(a, a), 1e-9)
	// London Bridge to Orpington is roughly 20 km.
	assert.InDelta(t, 20, haversineKM(a, newPoint(51.3562, 0.0956)), 2)
}

func fastHTTP(srv *httptest.Server) *HTTPResolver {
	return NewHTTPResolver(srv.URL,
		WithHTTPClient(srv.Client()),
		WithRateLimit(0),
		WithRetry(resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}),
	)
}

func TestHTTPResolver_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/resolve", r.URL.Path)
		assert.Equal(t, "SE9 3JD", r.URL.Query().Get("postcode"))
		assert.Equal(t, ref, r.URL.Query().Get("reference"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commute_minutes":            41.5,
			"grammar_school_distance_km": nil,
			"latitude":                   51.4394,
			"longitude":                  0.0755,
		})
	}))
	defer srv.Close()

	res, err := fastHTTP(srv).Resolve(context.Background(), Query{Postcode: "se93jd", Reference: "se1 9sp"})
	require.NoError(t, err)
	assert.InDelta(t, 41.5, *res.CommuteMinutes, 0.001)
	assert.Nil(t, res.GrammarSchoolDistanceKM)
	assert.NotEmpty(t, res.Geohash)
	assert.Equal(t, SourceHTTP, res.Source)
}

func TestHTTPResolver_NotFoundIsUnresolved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res, err := fastHTTP(srv).Resolve(context.Background(), Query{Postcode: "ZZ1 1ZZ", Reference: ref})
	require.NoError(t, err)
	assert.False(t, res.Resolved())
}

func TestHTTPResolver_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"commute_minutes": 30, "grammar_school_distance_km": 4.5}`))
	}))
	defer srv.Close()

	res, err := fastHTTP(srv).Resolve(context.Background(), Query{Postcode: "SE9 3JD", Reference: ref})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.InDelta(t, 30, *res.CommuteMinutes, 0.001)
	assert.InDelta(t, 4.5, *res.GrammarSchoolDistanceKM, 0.001)
}

func TestHTTPResolver_PermanentError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := fastHTTP(srv).Resolve(context.Background(), Query{Postcode: "SE9 3JD", Reference: ref})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPResolver_RejectsNegative(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"commute_minutes": -3}`))
	}))
	defer srv.Close()

	_, err := fastHTTP(srv).Resolve(context.Background(), Query{Postcode: "SE9 3JD", Reference: ref})
	require.Error(t, err)
}

func TestHTTPResolver_BlankPostcode(t *testing.T) {
	r := NewHTTPResolver("http://127.0.0.1:1")
	res, err := r.Resolve(context.Background(), Query{Reference: ref})
	require.NoError(t, err)
	assert.False(t, res.Resolved())
}

type countingResolver struct {
	calls atomic.Int32
	err   error
}

func (c *countingResolver) Resolve(_ context.Context, q Query) (*model.Resolution, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &model.Resolution{CommuteMinutes: model.Float64(33), Source: q.Postcode}, nil
}

func TestCached(t *testing.T) {
	next := &countingResolver{}
	c := NewCached(next)
	ctx := context.Background()

	a, err := c.Resolve(ctx, Query{Postcode: "se9 3jd", Reference: ref})
	require.NoError(t, err)
	b, err := c.Resolve(ctx, Query{Postcode: "SE9 3JD", Reference: "se19sp"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), next.calls.Load(), "equivalent queries share one lookup")
	assert.Equal(t, a, b)
	assert.Equal(t, 1, c.Len())

	*a.CommuteMinutes = 99
	again, err := c.Resolve(ctx, Query{Postcode: "SE9 3JD", Reference: ref})
	require.NoError(t, err)
	assert.InDelta(t, 33, *again.CommuteMinutes, 0.001, "callers get copies")

	c.Reset()
	assert.Zero(t, c.Len())
}

func TestCached_DoesNotCacheErrors(t *testing.T) {
	next := &countingResolver{err: errors.New("boom")}
	c := NewCached(next)

	_, err := c.Resolve(context.Background(), Query{Postcode: "SE9 3JD", Reference: ref})
	require.Error(t, err)
	_, err = c.Resolve(context.Background(), Query{Postcode: "SE9 3JD", Reference: ref})
	require.Error(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestFromConfig(t *testing.T) {
	r, err := FromConfig(config.ResolverConfig{Mode: "simulated"})
	require.NoError(t, err)
	res, err := r.Resolve(context.Background(), Query{Postcode: "SE9 3JD", Reference: ref})
	require.NoError(t, err)
	assert.True(t, res.Resolved())

	_, err = FromConfig(config.ResolverConfig{Mode: "http"})
	require.Error(t, err)

	_, err = FromConfig(config.ResolverConfig{Mode: "http", BaseURL: "http://localhost:9000"})
	require.NoError(t, err)

	_, err = FromConfig(config.ResolverConfig{Mode: "carrier-pigeon"})
	require.Error(t, err)
}
