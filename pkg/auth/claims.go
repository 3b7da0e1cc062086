package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/roadcasehq/merchtable-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID string
	BandID *string
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to staff clients.
type AccessTokenClaims struct {
	UserID string         `json:"user_id"`
	BandID *string        `json:"band_id,omitempty"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
