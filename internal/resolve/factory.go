package resolve

import (
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/resilience"
)

// FromConfig builds the configured resolver wrapped in a session cache.
func FromConfig(cfg config.ResolverConfig) (*Cached, error) {
	switch cfg.Mode {
	case "", "simulated":
		return NewCached(NewSimulated()), nil
	case "http":
		if cfg.BaseURL == "" {
			return nil, eris.New("resolve: http mode requires a base url")
		}
		timeout := 10 * time.Second
		if cfg.TimeoutSecs > 0 {
			timeout = time.Duration(cfg.TimeoutSecs) * time.Second
		}
		r := NewHTTPResolver(cfg.BaseURL,
			WithHTTPClient(&http.Client{Timeout: timeout}),
			WithRateLimit(cfg.RateLimit),
			WithRetry(resilience.DefaultRetryConfig().WithAttempts(cfg.MaxAttempts)),
			WithBreaker(resilience.NewBreaker(resilience.BreakerConfig{
				Name:             serviceName,
				FailureThreshold: cfg.FailureThreshold,
				Cooldown:         time.Duration(cfg.CooldownSecs) * time.Second,
			})),
		)
		return NewCached(r), nil
	}
	return nil, eris.Errorf("resolve: unknown mode %q", cfg.Mode)
}
