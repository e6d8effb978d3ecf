package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the access token payload issued by the authentication service.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
