package ingest

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/property-cli/internal/normalize"
)

// Listing sites with dedicated selectors.
const (
	SiteRightmove   = "rightmove"
	SiteZoopla      = "zoopla"
	SiteOnTheMarket = "onthemarket"
	SiteGeneric     = "generic"
)

var (
	priceTextRe    = regexp.MustCompile(`£\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	bedroomsTextRe = regexp.MustCompile(`(?i)(\d+)\s*[-\s]?bed`)
	postcodeTextRe = regexp.MustCompile(`\b([A-Z]{1,2}[0-9][A-Z0-9]?\s*[0-9][A-Z]{2})\b`)
)

// DetectSite classifies a listing URL by host.
func DetectSite(rawURL string) string {
	host := strings.ToLower(rawURL)
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = strings.ToLower(u.Host)
	}
	switch {
	case strings.Contains(host, "rightmove"):
		return SiteRightmove
	case strings.Contains(host, "zoopla"):
		return SiteZoopla
	case strings.Contains(host, "onthemarket"):
		return SiteOnTheMarket
	}
	return SiteGeneric
}

// ListingID derives a stable id from a listing URL, prefixed by site.
// Zoopla URLs end in a slash so their id is the second-to-last segment.
func ListingID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) == 0 {
		return ""
	}
	last := segs[len(segs)-1]
	switch DetectSite(rawURL) {
	case SiteRightmove:
		return "RM_" + last
	case SiteZoopla:
		return "ZP_" + last
	case SiteOnTheMarket:
		return "OTM_" + last
	}
	return ""
}

// Listing holds the facts recovered from free listing text. Nil and empty
// fields were not found.
type Listing struct {
	Price    *int64
	Bedrooms *int
	Postcode string
}

// ExtractListing scans listing text for a £ price, a bedroom count and a
// UK postcode. The first match of each wins.
func ExtractListing(text string) Listing {
	var l Listing
	if m := priceTextRe.FindStringSubmatch(text); m != nil {
		if p, err := normalize.ParsePrice(m[1]); err == nil {
			l.Price = &p
		}
	}
	if m := bedroomsTextRe.FindStringSubmatch(text); m != nil {
		if b, err := strconv.Atoi(m[1]); err == nil {
			l.Bedrooms = &b
		}
	}
	if m := postcodeTextRe.FindStringSubmatch(strings.ToUpper(text)); m != nil {
		if pc, ok := normalize.CanonicalPostcode(m[1]); ok {
			l.Postcode = pc
		}
	}
	return l
}

// selectors are the CSS selectors read from a listing page. Each entry may
// list alternatives; the first non-empty element wins.
type selectors struct {
	price, propertyType, bedrooms, address string
}

var siteSelectors = map[string]selectors{
	SiteRightmove: {
		price:        ".property-header-price",
		propertyType: ".property-header-subtitle",
		bedrooms:     ".property-header-subtitle",
		address:      ".property-header-address",
	},
	SiteZoopla: {
		price:        ".price-header, .pricing-banner-price",
		propertyType: ".property-type, .property-summary-text",
		bedrooms:     ".property-features, .property-summary-text",
		address:      ".property-address, .address-label",
	},
	SiteOnTheMarket: {
		price:        ".price, .property-price",
		propertyType: ".property-type, .property-details",
		bedrooms:     ".bedrooms, .property-icon-bed",
		address:      ".address, .property-address",
	},
	SiteGeneric: {
		price:        ".price, .property-price, [itemprop=price]",
		propertyType: ".property-type, h1",
		bedrooms:     ".bedrooms, h1",
		address:      "address, .address, [itemprop=address]",
	},
}

// SearchParams narrows the generated search URLs.
type SearchParams struct {
	MinPrice    int64
	MaxPrice    int64
	MinBedrooms int
	RadiusMiles int
}

// SearchURLs builds search result URLs on each supported site for the
// district of postcode.
func SearchURLs(postcode string, p SearchParams) map[string]string {
	pc, _ := normalize.CanonicalPostcode(postcode)
	outward := normalize.OutwardCode(pc)
	radius := p.RadiusMiles
	if radius <= 0 {
		radius = 5
	}

	rm := url.Values{}
	rm.Set("searchType", "SALE")
	rm.Set("locationIdentifier", "OUTCODE^"+outward)
	rm.Set("radius", strconv.Itoa(radius))
	zp := url.Values{}
	otm := url.Values{}
	if p.MinPrice > 0 {
		rm.Set("minPrice", strconv.FormatInt(p.MinPrice, 10))
		zp.Set("price_min", strconv.FormatInt(p.MinPrice, 10))
		otm.Set("min-price", strconv.FormatInt(p.MinPrice, 10))
	}
	if p.MaxPrice > 0 {
		rm.Set("maxPrice", strconv.FormatInt(p.MaxPrice, 10))
		zp.Set("price_max", strconv.FormatInt(p.MaxPrice, 10))
		otm.Set("max-price", strconv.FormatInt(p.MaxPrice, 10))
	}
	if p.MinBedrooms > 0 {
		rm.Set("minBedrooms", strconv.Itoa(p.MinBedrooms))
		zp.Set("beds_min", strconv.Itoa(p.MinBedrooms))
		otm.Set("min-bedrooms", strconv.Itoa(p.MinBedrooms))
	}

	area := strings.ToLower(outward)
	return map[string]string{
		SiteRightmove:   "https://www.rightmove.co.uk/property-for-sale/find.html?" + rm.Encode(),
		SiteZoopla:      "https://www.zoopla.co.uk/for-sale/property/" + strings.ReplaceAll(strings.ToLower(pc), " ", "-") + "/?" + zp.Encode(),
		SiteOnTheMarket: "https://www.onthemarket.com/for-sale/property/" + area + "/?" + otm.Encode(),
	}
}
