package game

import (
	"math"

	"github.com/SireeshLimbu/StoryTrail/internal/storytrail"
)

// earthRadiusM is the mean Earth radius used by the haversine formula.
const earthRadiusM = 6371000.0

// PresenceRadiusM is how close (in meters) a player must be to a waypoint to
// count as physically present.
const PresenceRadiusM = 50.0

// Haversine returns the great-circle distance between two coordinates in
// meters.
func Haversine(a, b storytrail.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// IsPresent reports whether a device fix places the player at the waypoint.
// A missing fix or an unconfigured waypoint position is never present.
func IsPresent(fix, waypoint *storytrail.Coordinate) bool {
	if fix == nil || waypoint == nil {
		return false
	}
	return Haversine(*fix, *waypoint) <= PresenceRadiusM
}

// DistanceTo returns the distance in meters from fix to the waypoint, or nil
// when either position is unknown.
func DistanceTo(fix, waypoint *storytrail.Coordinate) *float64 {
	if fix == nil || waypoint == nil {
		return nil
	}
	d := Haversine(*fix, *waypoint)
	return &d
}
