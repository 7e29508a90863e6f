package auth

import (
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// --- Context Keys ---

// contextKey is a custom type used for context keys to avoid collisions.
type contextKey string

// OwnerIDKey carries the authenticated owner id through the request context.
// Every chat operation is scoped to this id; the core never reads ambient
// session state.
const OwnerIDKey contextKey = "ownerID"

// --- JWT Claims ---

// CustomClaims includes standard JWT claims plus the owner id.
type CustomClaims struct {
	OwnerID uuid.UUID `json:"owner_id"`
	jwt.RegisteredClaims
}

// NewAccessToken generates a new JWT access token for the given owner.
func NewAccessToken(ownerID uuid.UUID, jwtSecret string, expiration time.Duration) (string, error) {
	claims := CustomClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "soulchat-backend",
			Subject:   ownerID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		log.Printf("Error signing JWT token for OwnerID %s: %v", ownerID, err)
		return "", err
	}

	return signedToken, nil
}
