package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeBearer is the only scheme access tokens are issued for.
const TokenTypeBearer = "Bearer"

// ClientMeta is the request origin recorded with sessions and audit entries.
type ClientMeta struct {
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	ClientMeta
}

// RefreshTokenRequest is the body of both /auth/refresh and /auth/logout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
	ClientMeta
}

// TokenPair is a freshly issued access token and its rotating refresh token.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresIn    int64     `json:"expiresIn"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// LoginResponse adds the caller's profile to the token pair.
type LoginResponse struct {
	TokenPair
	User UserInfo `json:"user"`
}

// RefreshTokenResponse is returned by a successful rotation.
type RefreshTokenResponse struct {
	TokenPair
}

// UserInfo is the public view of an account.
type UserInfo struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	FullName     string   `json:"fullName"`
	Role         UserRole `json:"role"`
	DepartmentID *string  `json:"departmentId,omitempty"`
}

// JWTClaims is the access token payload. DepartmentID is empty for admins.
type JWTClaims struct {
	UserID       string   `json:"uid"`
	Role         UserRole `json:"role"`
	Email        string   `json:"email"`
	FullName     string   `json:"name"`
	DepartmentID string   `json:"dept,omitempty"`
	jwt.RegisteredClaims
}
