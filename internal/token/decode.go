package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/openpress/quill/pkg/errors"
)

// Decode extracts the claims from an access token without verifying the
// signature. The client never holds the signing key; it only needs the
// identity claims and the expiry to decide whether a refresh is due.
//
// Returns ErrInvalidToken when the token is structurally malformed or
// carries no expiry claim, and ErrTokenExpired when the expiry has passed.
func Decode(accessToken string) (*Claims, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: empty token", apperrors.ErrInvalidToken)
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(accessToken, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", apperrors.ErrInvalidToken)
	}

	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", apperrors.ErrInvalidToken)
	}

	if claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, apperrors.ErrTokenExpired
	}

	return claims, nil
}
