package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Claims represents the JWT claims carried by an access token.
// The remote API issues SimpleJWT-shaped tokens, so the subject id
// usually lives in "user_id"; older tokens used "id" or a numeric "sub".
type Claims struct {
	UserID   int    `json:"user_id"`
	AltID    int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// SubjectID resolves the user id from the redundant claim locations
func (c *Claims) SubjectID() int {
	if c.UserID != 0 {
		return c.UserID
	}
	if c.AltID != 0 {
		return c.AltID
	}
	if c.Subject != "" {
		if id, err := strconv.Atoi(c.Subject); err == nil {
			return id
		}
	}
	return 0
}

// ExpiresAtTime returns the expiry claim, zero when absent
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Pair builds the credential pair for a freshly issued token set.
// The refresh token may be empty; Expiry mirrors the access token's
// exp claim so stores can treat the pair uniformly.
func Pair(accessToken, refreshToken string, expiresAt time.Time) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
		Expiry:       expiresAt,
	}
}

// TokenType constants
const (
	TokenTypeBearer = "Bearer"
)
