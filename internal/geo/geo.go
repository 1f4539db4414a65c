// Package geo maps coordinates to the spatial buckets that key automatic
// rooms, and measures distances for invite admission.
package geo

import (
	"math"

	"github.com/mmcloughlin/geohash"
)

// cellPrecision is the geohash character count. Seven characters give a
// cell edge of roughly 250 m, so everyone standing on the same block
// lands in the same room.
const cellPrecision = 7

const earthRadiusMeters = 6371000

// Cell returns the room bucket for a coordinate pair. Deterministic:
// identical inputs always yield the identical cell. Callers must have
// validated lat ∈ [-90,90] and lon ∈ [-180,180].
func Cell(lat, lon float64) string {
	return geohash.EncodeWithPrecision(lat, lon, cellPrecision)
}

// ValidCoords reports whether a coordinate pair is in range.
func ValidCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// DistanceMeters returns the great-circle (Haversine) distance between
// two coordinate pairs.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}
