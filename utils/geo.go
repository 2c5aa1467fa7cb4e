package utils

import (
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicconnect-be/models"
)

const (
	// EarthRadiusMeters is the mean spherical earth radius.
	EarthRadiusMeters = 6371000.0
	// VisibilityRadiusMeters bounds which residents see a new issue.
	VisibilityRadiusMeters = 500.0
)

// Haversine returns the great-circle distance in meters between two
// lat/lng points given in degrees, on a spherical-earth approximation.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := math.Pi / 180.0
	dLat := (lat2 - lat1) * toRad
	dLng := (lng2 - lng1) * toRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*toRad)*math.Cos(lat2*toRad)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// VisibleUsers computes the visibility snapshot for a new issue: every user
// with a known location within VisibilityRadiusMeters (inclusive) of the
// issue, plus the creator. Users without a location never qualify. The
// result is stored on the issue at creation time and never recomputed as
// users move afterwards.
func VisibleUsers(issueLat, issueLng float64, creator primitive.ObjectID, users []models.User) []primitive.ObjectID {
	seen := map[primitive.ObjectID]bool{creator: true}
	visible := []primitive.ObjectID{creator}

	for _, user := range users {
		if user.Location == nil || seen[user.ID] {
			continue
		}
		if Haversine(issueLat, issueLng, user.Location.Lat, user.Location.Lng) <= VisibilityRadiusMeters {
			seen[user.ID] = true
			visible = append(visible, user.ID)
		}
	}
	return visible
}
