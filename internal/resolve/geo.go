package resolve

import (
	"math"

	"github.com/mmcloughlin/geohash"
	"github.com/twpayne/go-geom"
)

const (
	earthRadiusKM    = 6371.0
	geohashPrecision = 7
)

// newPoint builds a WGS84 point. go-geom stores X as longitude.
func newPoint(lat, lon float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326)
}

// haversineKM returns the great-circle distance between two points.
func haversineKM(a, b *geom.Point) float64 {
	lat1, lat2 := radians(a.Y()), radians(b.Y())
	dLat := lat2 - lat1
	dLon := radians(b.X() - a.X())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// pointGeohash keys a point for map markers.
func pointGeohash(p *geom.Point) string {
	return geohash.EncodeWithPrecision(p.Y(), p.X(), geohashPrecision)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
