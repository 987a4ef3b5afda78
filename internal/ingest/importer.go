package ingest

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/normalize"
)

// ImportResult is the outcome for one listing URL. Exactly one of Raw and
// Err is set.
type ImportResult struct {
	URL string
	Raw *model.RawProperty
	Err error
}

// ListingImporter scrapes listing pages into raw records.
type ListingImporter struct {
	collector   *colly.Collector
	parallelism int
	fixedAgent  bool
}

// NewListingImporter configures a collector from cfg. Requests to each
// domain are limited to cfg.Parallelism at a time with a random delay of up
// to cfg.DelayMs between them.
func NewListingImporter(cfg config.ImportConfig) (*ListingImporter, error) {
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	c := colly.NewCollector(colly.AllowURLRevisit())
	if cfg.TimeoutSecs > 0 {
		c.SetRequestTimeout(time.Duration(cfg.TimeoutSecs) * time.Second)
	}
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: parallelism,
		RandomDelay: time.Duration(cfg.DelayMs) * time.Millisecond,
	}); err != nil {
		return nil, eris.Wrap(err, "ingest: set limit rule")
	}

	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}

	return &ListingImporter{collector: c, parallelism: parallelism, fixedAgent: cfg.UserAgent != ""}, nil
}

// Import fetches every URL and returns one result per URL in input order.
// Per-URL failures are reported in the result; Import itself only fails
// when ctx is cancelled.
func (li *ListingImporter) Import(ctx context.Context, urls []string) ([]ImportResult, error) {
	results := make([]ImportResult, len(urls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(li.parallelism)
	for i, u := range urls {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			raw, err := li.fetch(gCtx, u)
			results[i] = ImportResult{URL: u, Raw: raw, Err: err}
			if err != nil {
				zap.L().Warn("ingest: listing import failed", zap.String("url", u), zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, eris.Wrap(err, "ingest: import listings")
	}
	return results, nil
}

// Raws returns the successfully imported records.
func Raws(results []ImportResult) []model.RawProperty {
	out := []model.RawProperty{}
	for _, r := range results {
		if r.Raw != nil {
			out = append(out, *r.Raw)
		}
	}
	return out
}

func (li *ListingImporter) fetch(ctx context.Context, pageURL string) (*model.RawProperty, error) {
	// Clones share the limit rules but not callbacks.
	c := li.collector.Clone()
	c.Context = ctx
	if !li.fixedAgent {
		extensions.RandomUserAgent(c)
	}
	extensions.Referer(c)
	c.OnRequest(func(r *colly.Request) {
		zap.L().Debug("ingest: fetching listing", zap.String("url", r.URL.String()))
	})

	sel := siteSelectors[DetectSite(pageURL)]
	var (
		mu       sync.Mutex
		found    = map[string]string{}
		body     string
		fetchErr error
	)
	capture := func(key, selector string) {
		c.OnHTML(selector, func(e *colly.HTMLElement) {
			text := strings.Join(strings.Fields(e.Text), " ")
			mu.Lock()
			defer mu.Unlock()
			if found[key] == "" && text != "" {
				found[key] = text
			}
		})
	}
	capture("price", sel.price)
	capture("type", sel.propertyType)
	capture("bedrooms", sel.bedrooms)
	capture("address", sel.address)
	c.OnHTML("body", func(e *colly.HTMLElement) {
		mu.Lock()
		body = strings.Join(strings.Fields(e.Text), " ")
		mu.Unlock()
	})
	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		fetchErr = eris.Wrapf(err, "ingest: fetch %s (status %d)", pageURL, r.StatusCode)
		mu.Unlock()
	})

	if err := c.Visit(pageURL); err != nil && fetchErr == nil {
		fetchErr = eris.Wrapf(err, "ingest: visit %s", pageURL)
	}
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if fetchErr != nil {
		return nil, fetchErr
	}
	return buildRaw(pageURL, found, body)
}

func buildRaw(pageURL string, found map[string]string, body string) (*model.RawProperty, error) {
	fromPrice := ExtractListing(found["price"])
	fromBeds := ExtractListing(found["bedrooms"])
	fromBody := ExtractListing(body)

	raw := model.RawProperty{SourceURL: model.Raw(pageURL)}
	if id := ListingID(pageURL); id != "" {
		raw.ID = model.Raw(id)
	}

	switch {
	case fromPrice.Price != nil:
		raw.Price = model.Raw(strconv.FormatInt(*fromPrice.Price, 10))
	case fromBody.Price != nil:
		raw.Price = model.Raw(strconv.FormatInt(*fromBody.Price, 10))
	}
	switch {
	case fromBeds.Bedrooms != nil:
		raw.Bedrooms = model.Raw(strconv.Itoa(*fromBeds.Bedrooms))
	case fromBody.Bedrooms != nil:
		raw.Bedrooms = model.Raw(strconv.Itoa(*fromBody.Bedrooms))
	}

	if t := found["type"]; t != "" {
		raw.PropertyType = model.Raw(t)
	}
	if a := found["address"]; a != "" {
		raw.Address = model.Raw(a)
		if pc, ok := normalize.ExtractPostcode(a); ok {
			raw.Postcode = model.Raw(pc)
		}
	}
	if raw.Postcode.Missing() && fromBody.Postcode != "" {
		raw.Postcode = model.Raw(fromBody.Postcode)
	}

	if raw.Price.Missing() && raw.Address.Missing() {
		return nil, eris.Errorf("ingest: no listing details found at %s", pageURL)
	}
	return &raw, nil
}
