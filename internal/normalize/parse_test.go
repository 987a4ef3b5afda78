package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-cli/internal/model"
)

func TestParsePropertyType(t *testing.T) {
	tests := []struct {
		in   string
		want model.PropertyType
		ok   bool
	}{
		{"House", model.PropertyTypeHouse, true},
		{"HOUSE", model.PropertyTypeHouse, true},
		{"apartment", model.PropertyTypeFlat, true},
		{"Duplex", model.PropertyTypeMaisonette, true},
		{"maisonette", model.PropertyTypeMaisonette, true},
		{"Studio Flat", model.PropertyTypeStudio, true},
		{"end of terrace", model.PropertyTypeHouse, true},
		{"2 bed ground floor flat", model.PropertyTypeFlat, true},
		{"Penthouse", model.PropertyTypeFlat, true},
		{"Other", model.PropertyTypeOther, true},
		{"Barge", model.PropertyTypeOther, false},
		{"", model.PropertyTypeOther, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePropertyType(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParseOutdoorSpace(t *testing.T) {
	tests := []struct {
		in   string
		want model.OutdoorSpace
		ok   bool
	}{
		{"", model.OutdoorNone, true},
		{"None", model.OutdoorNone, true},
		{"no garden", model.OutdoorNone, true},
		{"Garden", model.OutdoorGarden, true},
		{"Patio", model.OutdoorGarden, true},
		{"roof terrace", model.OutdoorTerrace, true},
		{"Juliet balcony", model.OutdoorBalcony, true},
		{"moat", model.OutdoorNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseOutdoorSpace(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParseSchoolRating(t *testing.T) {
	tests := []struct {
		in   string
		want model.SchoolRating
		ok   bool
	}{
		{"Outstanding", model.SchoolOutstanding, true},
		{"1", model.SchoolOutstanding, true},
		{"good", model.SchoolGood, true},
		{"Requires Improvement", model.SchoolRequiresImprovement, true},
		{"3", model.SchoolRequiresImprovement, true},
		{"Inadequate", model.SchoolInadequate, true},
		{"Unknown", model.SchoolUnknown, true},
		{"", model.SchoolUnknown, true},
		{"excellent", model.SchoolUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSchoolRating(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParsePrice(t *testing.T) {
	for in, want := range map[string]int64{
		"£425,000":    425000,
		"425000":      425000,
		" £1 250 000": 1250000,
		"300000.49":   300000,
		"0":           0,
	} {
		got, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePrice("-1")
	assert.ErrorIs(t, err, errNegative)
	_, err = ParsePrice("NaN")
	assert.ErrorIs(t, err, errNotNumber)

	for _, in := range []string{"1e20", "99999999999999999999999", "£9,223,372,036,854,775,808"} {
		_, err = ParsePrice(in)
		assert.ErrorIs(t, err, errTooLarge, in)
	}
}

func TestParseBedrooms(t *testing.T) {
	for in, want := range map[string]int{
		"3":         3,
		"3 bed":     3,
		"3-bedroom": 3,
		"4 Beds":    4,
		"studio":    0,
		"2.0":       2,
	} {
		got, err := ParseBedrooms(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBedrooms("-1")
	assert.ErrorIs(t, err, errNegative)
	_, err = ParseBedrooms("1.5")
	assert.ErrorIs(t, err, errNotWhole)
	_, err = ParseBedrooms("several")
	assert.ErrorIs(t, err, errNotNumber)

	for _, in := range []string{"1001", "99999999999999999999999", "1e20"} {
		_, err = ParseBedrooms(in)
		assert.Error(t, err, in)
	}
	_, err = ParseBedrooms("99999999999999999999999")
	assert.ErrorIs(t, err, errTooLarge)
}

func TestCheckPostcode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		warning string
	}{
		{"SE1 9SP", "SE1 9SP", ""},
		{"sw1a1aa", "SW1A 1AA", ""},
		{" ec2v 7hh ", "EC2V 7HH", ""},
		{"BR1 1AA", "BR1 1AA", ""},
		{"M1 1AE", "M1 1AE", "outside London postal areas"},
		{"12345", "12345", "not a valid UK postcode"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, w := CheckPostcode(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.warning == "" {
				assert.Nil(t, w)
				return
			}
			require.NotNil(t, w)
			assert.Equal(t, tt.warning, w.Message)
		})
	}
}

func TestOutwardCode(t *testing.T) {
	assert.Equal(t, "SE1", OutwardCode("SE1 9SP"))
	assert.Equal(t, "SE1", OutwardCode("SE1"))
}

func TestBorough(t *testing.T) {
	got, w := Borough("tower   hamlets")
	assert.Equal(t, "Tower Hamlets", got)
	assert.Nil(t, w)

	got, w = Borough("")
	assert.Empty(t, got)
	assert.Nil(t, w)

	got, w = Borough("richmond")
	assert.Equal(t, "Richmond", got)
	require.NotNil(t, w)
	assert.Contains(t, w.Message, "Richmond upon Thames")

	got, w = Borough("manchester")
	assert.Equal(t, "Manchester", got)
	require.NotNil(t, w)
	assert.Contains(t, w.Message, "is not a London borough")
}
