package auth

import "time"

// AccessClaims are the decrypted contents of an access token.
type AccessClaims struct {
	UserID int64 `json:"user_id"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	SessionID  string    `json:"jti"`
}
