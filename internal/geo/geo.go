package geo

import (
	"math"
	"math/rand"
)

// earthRadiusKm is the mean Earth radius used for all spherical math.
const earthRadiusKm = 6371.0

// unsetDegrees marks a latitude or longitude with no real GPS data. The
// value is inherited from the upstream metadata convention: 0.01 degrees is
// an implausible intentional coordinate. It must not leak outside this
// package; callers use Unset and IsUnset.
const unsetDegrees = 0.01

// Coordinate is a latitude/longitude pair in decimal degrees. Values are
// not range-checked; malformed upstream metadata may produce garbage and
// callers have to tolerate it.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Unset returns the sentinel coordinate that signals "no GPS data".
func Unset() Coordinate {
	return Coordinate{Lat: unsetDegrees, Lng: unsetDegrees}
}

// IsUnset reports whether either component of c carries the no-GPS sentinel.
func IsUnset(c Coordinate) bool {
	return c.Lat == unsetDegrees || c.Lng == unsetDegrees
}

// UnsetDegrees returns the sentinel value for a single missing component.
func UnsetDegrees() float64 {
	return unsetDegrees
}

// Distance returns the great-circle distance between a and b in kilometers
// using the haversine formula.
func Distance(a, b Coordinate) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// RandomPointWithin returns a coordinate at most radiusKm from center. The
// angular distance and bearing are each drawn uniformly, which biases draws
// toward the center rather than sampling uniformly by area. That sampling
// law is inherited from the upstream implementation and kept for
// compatibility.
func RandomPointWithin(rng *rand.Rand, center Coordinate, radiusKm float64) Coordinate {
	angular := rng.Float64() * (radiusKm / earthRadiusKm)
	bearing := rng.Float64() * 2 * math.Pi

	lat1 := radians(center.Lat)
	lng1 := radians(center.Lng)

	lat2 := math.Asin(
		math.Sin(lat1)*math.Cos(angular) +
			math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing),
	)
	lng2 := lng1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Coordinate{Lat: degrees(lat2), Lng: degrees(lng2)}
}

// Round8 rounds v to 8 decimal places, the precision the location search
// collaborator expects for query coordinates.
func Round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
