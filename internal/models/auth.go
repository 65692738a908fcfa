package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access token payload attached to authenticated requests.
type JWTClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
