package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/normalize"
)

func TestDetectSite(t *testing.T) {
	tests := map[string]string{
		"https://www.rightmove.co.uk/properties/123456789":     SiteRightmove,
		"https://www.zoopla.co.uk/for-sale/details/123456789/": SiteZoopla,
		"https://www.onthemarket.com/details/987/":             SiteOnTheMarket,
		"https://agent.example.com/listing/1":                  SiteGeneric,
		"not a url but mentions rightmove":                     SiteRightmove,
		"https://example.com/?ref=zoopla":                      SiteGeneric,
	}
	for in, want := range tests {
		assert.Equal(t, want, DetectSite(in), in)
	}
}

func TestListingID(t *testing.T) {
	assert.Equal(t, "RM_123456789", ListingID("https://www.rightmove.co.uk/properties/123456789"))
	assert.Equal(t, "ZP_555", ListingID("https://www.zoopla.co.uk/for-sale/details/555/"))
	assert.Equal(t, "OTM_987", ListingID("https://www.onthemarket.com/details/987"))
	assert.Empty(t, ListingID("https://agent.example.com/listing/1"))
	assert.Empty(t, ListingID("https://www.rightmove.co.uk/"))
}

func TestExtractListing(t *testing.T) {
	l := ExtractListing("Guide price £425,000. A 3-bedroom semi in Eltham, London se9 3jd.")
	require.NotNil(t, l.Price)
	assert.Equal(t, int64(425000), *l.Price)
	require.NotNil(t, l.Bedrooms)
	assert.Equal(t, 3, *l.Bedrooms)
	assert.Equal(t, "SE9 3JD", l.Postcode)

	l = ExtractListing("4 bed detached")
	assert.Nil(t, l.Price)
	assert.Equal(t, 4, *l.Bedrooms)
	assert.Empty(t, l.Postcode)

	assert.Equal(t, Listing{}, ExtractListing(""))
}

func TestSearchURLs(t *testing.T) {
	urls := SearchURLs("se9 3jd", SearchParams{MinPrice: 300000, MaxPrice: 420000, MinBedrooms: 3})
	require.Len(t, urls, 3)
	assert.Contains(t, urls[SiteRightmove], "locationIdentifier=OUTCODE%5ESE9")
	assert.Contains(t, urls[SiteRightmove], "minBedrooms=3")
	assert.Contains(t, urls[SiteRightmove], "radius=5")
	assert.Contains(t, urls[SiteZoopla], "/for-sale/property/se9-3jd/")
	assert.Contains(t, urls[SiteZoopla], "price_max=420000")
	assert.Contains(t, urls[SiteOnTheMarket], "/for-sale/property/se9/")
	assert.Contains(t, urls[SiteOnTheMarket], "min-price=300000")
}

const listingPage = `<html><head><title>Listing</title></head><body>
<h1>3 bedroom semi-detached house for sale</h1>
<div class="price">£395,000</div>
<address>14 Court Road, Eltham, London SE9 3JD</address>
<p>Generous rear garden.</p>
</body></html>`

func TestListingImporter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/listing/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(listingPage)) //nolint:errcheck
	})
	mux.HandleFunc("/listing/empty", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>nothing here</p></body></html>")) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	li, err := NewListingImporter(config.ImportConfig{Parallelism: 2, UserAgent: "property-cli-test"})
	require.NoError(t, err)

	urls := []string{srv.URL + "/listing/1", srv.URL + "/missing", srv.URL + "/listing/empty"}
	results, err := li.Import(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, results, 3)

	ok := results[0]
	require.NoError(t, ok.Err)
	require.NotNil(t, ok.Raw)
	assert.Equal(t, urls[0], ok.Raw.SourceURL.String())
	assert.Equal(t, "395000", ok.Raw.Price.String())
	assert.Equal(t, "3", ok.Raw.Bedrooms.String())
	assert.Equal(t, "SE9 3JD", ok.Raw.Postcode.String())
	assert.Equal(t, "14 Court Road, Eltham, London SE9 3JD", ok.Raw.Address.String())

	// The scraped record normalizes cleanly.
	res, err := normalize.Normalize(*ok.Raw)
	require.NoError(t, err)
	assert.Equal(t, "House", string(res.Record.PropertyType))

	assert.Error(t, results[1].Err, "404 is reported per url")
	assert.Nil(t, results[1].Raw)
	assert.Error(t, results[2].Err, "page without listing details")

	assert.Len(t, Raws(results), 1)
}

func TestListingImporter_Cancelled(t *testing.T) {
	li, err := NewListingImporter(config.ImportConfig{Parallelism: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = li.Import(ctx, []string{"http://127.0.0.1:1/never"})
	assert.Error(t, err)
}
