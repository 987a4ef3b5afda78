package normalize

import (
	"regexp"
	"strings"
)

var (
	// Compact form, no space: outward code then inward code.
	ukPostcodeRe = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?[0-9][A-Z]{2}$`)

	// Trailing postcode inside a free-text address.
	addressPostcodeRe = regexp.MustCompile(`([A-Z]{1,2}[0-9][A-Z0-9]?\s*[0-9][A-Z]{2})\s*$`)

	areaRe = regexp.MustCompile(`^[A-Z]+`)
)

// londonAreas are the postcode areas covering Greater London.
var londonAreas = map[string]bool{
	"E": true, "EC": true, "N": true, "NW": true, "SE": true, "SW": true, "W": true, "WC": true,
	"BR": true, "CR": true, "DA": true, "EN": true, "HA": true, "IG": true,
	"KT": true, "RM": true, "SM": true, "TW": true, "UB": true,
}

// CanonicalPostcode upper-cases s and places a single space before the
// inward code. ok is false when s does not have the shape of a UK postcode;
// the upper-cased, trimmed text is returned in that case.
func CanonicalPostcode(s string) (string, bool) {
	compact := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	if !ukPostcodeRe.MatchString(compact) {
		return strings.ToUpper(strings.TrimSpace(s)), false
	}
	return compact[:len(compact)-3] + " " + compact[len(compact)-3:], true
}

// OutwardCode returns the part of a canonical postcode before the space.
func OutwardCode(postcode string) string {
	if i := strings.IndexByte(postcode, ' '); i > 0 {
		return postcode[:i]
	}
	return postcode
}

// IsLondonPostcode reports whether a canonical postcode falls in a London
// postal area.
func IsLondonPostcode(postcode string) bool {
	return londonAreas[areaRe.FindString(postcode)]
}

// CheckPostcode canonicalizes s and returns a warning when it is malformed
// or outside London. A nil warning means the postcode is usable for lookups.
func CheckPostcode(s string) (string, *Warning) {
	pc, ok := CanonicalPostcode(s)
	if !ok {
		return pc, &Warning{Field: "postcode", Message: "not a valid UK postcode"}
	}
	if !IsLondonPostcode(pc) {
		return pc, &Warning{Field: "postcode", Message: "outside London postal areas"}
	}
	return pc, nil
}

// ExtractPostcode returns the postcode at the end of an address, if any.
func ExtractPostcode(address string) (string, bool) {
	m := addressPostcodeRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(address)))
	if m == nil {
		return "", false
	}
	return CanonicalPostcode(m[1])
}
