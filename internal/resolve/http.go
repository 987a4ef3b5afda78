package resolve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/resilience"
)

// SourceHTTP tags resolutions produced by HTTPResolver.
const SourceHTTP = "http"

const serviceName = "locations"

// HTTPResolver queries a location API:
//
//	GET {base}/v1/resolve?postcode=SE9+3JD&reference=SE1+9SP
//
// A 404 means the postcode is unknown and resolves to nil fields.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	breaker *resilience.Breaker
}

// HTTPOption configures an HTTPResolver.
type HTTPOption func(*HTTPResolver)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(r *HTTPResolver) { r.client = hc }
}

// WithRateLimit caps requests per second. rps <= 0 disables limiting.
func WithRateLimit(rps float64) HTTPOption {
	return func(r *HTTPResolver) {
		if rps <= 0 {
			r.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) HTTPOption {
	return func(r *HTTPResolver) { r.retry = cfg }
}

// WithBreaker sets the circuit breaker guarding the API.
func WithBreaker(b *resilience.Breaker) HTTPOption {
	return func(r *HTTPResolver) { r.breaker = b }
}

// NewHTTPResolver creates a resolver for the API at baseURL.
func NewHTTPResolver(baseURL string, opts ...HTTPOption) *HTTPResolver {
	r := &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(10, 10),
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewBreaker(resilience.BreakerConfig{Name: serviceName}),
	}
	for _, o := range opts {
		o(r)
	}
	if r.retry.OnRetry == nil {
		r.retry.OnRetry = resilience.RetryLogger(serviceName, "resolve")
	}
	return r
}

type resolveResponse struct {
	CommuteMinutes          *float64 `json:"commute_minutes"`
	GrammarSchoolDistanceKM *float64 `json:"grammar_school_distance_km"`
	Latitude                *float64 `json:"latitude"`
	Longitude               *float64 `json:"longitude"`
}

// Resolve implements Resolver.
func (r *HTTPResolver) Resolve(ctx context.Context, q Query) (*model.Resolution, error) {
	q = q.Normalized()
	if blank(q.Postcode) || blank(q.Reference) {
		return Unresolved(SourceHTTP), nil
	}
	return resilience.DoVal(ctx, r.retry, func(ctx context.Context) (*model.Resolution, error) {
		return resilience.Call(ctx, r.breaker, func(ctx context.Context) (*model.Resolution, error) {
			return r.fetch(ctx, q)
		})
	})
}

func (r *HTTPResolver) fetch(ctx context.Context, q Query) (*model.Resolution, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "resolve: rate limiter")
	}

	params := url.Values{}
	params.Set("postcode", q.Postcode)
	params.Set("reference", q.Reference)
	reqURL := r.baseURL + "/v1/resolve?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		zap.L().Debug("resolve: postcode unknown", zap.String("postcode", q.Postcode))
		return Unresolved(SourceHTTP), nil
	case resp.StatusCode != http.StatusOK:
		return nil, resilience.StatusError(serviceName, resp.StatusCode)
	}

	var body resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "resolve: decode response")
	}
	if negative(body.CommuteMinutes) || negative(body.GrammarSchoolDistanceKM) {
		return nil, eris.Errorf("resolve: negative value for %s", q.Postcode)
	}

	res := &model.Resolution{
		CommuteMinutes:          body.CommuteMinutes,
		GrammarSchoolDistanceKM: body.GrammarSchoolDistanceKM,
		Latitude:                body.Latitude,
		Longitude:               body.Longitude,
		Source:                  SourceHTTP,
	}
	if body.Latitude != nil && body.Longitude != nil {
		res.Geohash = pointGeohash(newPoint(*body.Latitude, *body.Longitude))
	}
	return res, nil
}

func negative(v *float64) bool { return v != nil && *v < 0 }
