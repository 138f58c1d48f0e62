package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrTokenExpired is returned by ParseSessionToken when the token's
// expiration has passed.  The middleware maps it to a "session expired"
// response so clients know to open a fresh session rather than retry.
var ErrTokenExpired = errors.New("session token expired")

// SessionToken represents a signed JWT identifying one shopping session,
// along with its expiry.  Sessions are anonymous: the token carries only a
// random session ID, never a user identity.  All seat locks the session
// takes are keyed by that ID and die with it.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs an HS256 JWT for a shopping session.
// It takes the signing secret, the session ID and a TTL in minutes.  The
// JWT includes the session ID as subject (sub), expiration (exp) and
// issued at (iat).
func NewSessionToken(secret, sessionID string, ttlMin int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": sessionID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken validates a session token and returns the session ID.
// Expired tokens yield ErrTokenExpired; every other validation failure is
// returned as-is.
func ParseSessionToken(secret, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", errors.New("invalid claims")
	}
	sid, _ := claims["sub"].(string)
	if sid == "" {
		return "", errors.New("missing session id")
	}
	return sid, nil
}
