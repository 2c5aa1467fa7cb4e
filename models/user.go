package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// User represents a registered citizen or department account.
// Location stays nil until the user shares it for the first time;
// FirstTime is cleared by the set-location flow only.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GoogleID   string             `bson:"googleId,omitempty" json:"-"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password,omitempty" json:"-"`
	Picture    string             `bson:"picture,omitempty" json:"picture,omitempty"`
	Department string             `bson:"department,omitempty" json:"department,omitempty"`
	Location   *GeoPoint          `bson:"location,omitempty" json:"location,omitempty"`
	FirstTime  bool               `bson:"firstTime" json:"firstTime"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}
