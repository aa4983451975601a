package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RefreshToken is one login session. Only the SHA-256 digest of the value
// handed to the client is stored; a rotated session points at its successor.
type RefreshToken struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"userId"`
	TokenHash  string     `db:"token_hash" json:"-"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expiresAt"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	RevokedAt  *time.Time `db:"revoked_at" json:"revokedAt,omitempty"`
	ReplacedBy *string    `db:"replaced_by" json:"replacedBy,omitempty"`
	IPAddress  string     `db:"ip_address" json:"ipAddress"`
	UserAgent  string     `db:"user_agent" json:"userAgent"`
}

// Revoked reports whether the session was ended or rotated.
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Expired reports whether the session lifetime has passed at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// HashRefreshToken returns the stored digest for a raw refresh token.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
