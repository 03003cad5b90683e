package services

import "errors"

var (
	// ErrStateMismatch covers bad signatures, expiry, and provider or
	// redirect URI mismatches on a state token.
	ErrStateMismatch = errors.New("oauth state mismatch")
	// ErrExchangeFailed wraps every failure of a provider code exchange.
	ErrExchangeFailed = errors.New("social code exchange failed")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	// ErrUnknownToken is returned for forged and already-rotated refresh
	// tokens alike; callers cannot tell the two apart.
	ErrUnknownToken        = errors.New("refresh token not recognized")
	ErrUnknownSubject      = errors.New("token subject no longer exists")
	ErrConfiguration       = errors.New("auth configuration error")
	ErrUnsupportedProvider = errors.New("unsupported auth provider")
	ErrUserNotFound        = errors.New("user not found")
)
