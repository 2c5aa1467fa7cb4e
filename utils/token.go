package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// GenerateToken signs a JWT for the user. Department accounts carry their
// department name as a claim so the middleware can gate dashboard routes.
func GenerateToken(userID, department string) (string, error) {
	secretStr := os.Getenv("JWT_SECRET")
	if secretStr == "" {
		return "", fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(3 * time.Hour).Unix(),
	}
	if department != "" {
		claims["department"] = department
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretStr))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
