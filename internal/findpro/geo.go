package findpro

import "math"

const (
	EarthRadiusMiles = 3958.8
	DefaultRadius    = 15.0
)

var DefaultCenter = LatLng{Lat: 40.7128, Lng: -74.006}

// zipCenters are map presets for common service ZIPs.
var zipCenters = map[string]LatLng{
	"10001": {40.7506, -73.9972},
	"10002": {40.717, -73.989},
	"10017": {40.7522, -73.9725},
	"10018": {40.7557, -73.9925},
	"11201": {40.6955, -73.989},
	"11205": {40.6976, -73.9713},
	"11215": {40.6673, -73.985},
}

// LookupZip returns the preset center for a five-digit ZIP.
func LookupZip(zip string) (LatLng, bool) {
	if len(zip) != 5 {
		return LatLng{}, false
	}
	c, ok := zipCenters[zip]
	return c, ok
}

// Distance is the haversine great-circle distance in miles.
func Distance(a, b LatLng) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h just past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMiles * c
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Valid reports whether both coordinates are finite numbers.
func (p LatLng) Valid() bool {
	return finite(p.Lat) && finite(p.Lng)
}
