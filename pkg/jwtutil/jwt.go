package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BheemChand1/attendance-backend/pkg/config"
)

var (
	signingKey []byte
	expiration time.Duration
)

// Initialize configures the signing key and token lifetime
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	expiration = time.Duration(cfg.ExpirationHours) * time.Hour
	if expiration == 0 {
		expiration = 24 * time.Hour
	}
}

// UserClaims represents the JWT claims for an authenticated user. CompanyID
// is nil only for the platform superadmin.
type UserClaims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	CompanyID *uint  `json:"company_id,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed token carrying the user's identity, tenant
// and role
func GenerateToken(userID uint, email string, companyID *uint, role string) (string, error) {
	claims := UserClaims{
		UserID:    userID,
		Email:     email,
		CompanyID: companyID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
