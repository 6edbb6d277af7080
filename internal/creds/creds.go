// Package creds is the durable credential store: session tokens plus the
// cached profile for each visitor, and the token-liveness check used by
// the session gate.
package creds

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/k-ivanov/bgx/internal/bgx"
)

// ErrNoSession is returned by Load when the visitor has no stored session.
var ErrNoSession = errors.New("no session stored")

// expiryMargin is how close to expiry a token is still considered live.
const expiryMargin = 30 * time.Second

// Session is everything persisted for a logged-in visitor.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         bgx.User `json:"user"`
}

// Store persists sessions keyed by visitor id. Save and Clear are atomic
// from the caller's perspective: a session is stored or removed as a
// whole, never token-by-token.
type Store interface {
	Save(ctx context.Context, visitorID string, s Session) error
	Load(ctx context.Context, visitorID string) (Session, error)
	Clear(ctx context.Context, visitorID string) error
}

// IsLive reports whether the session's access token is present and its
// embedded expiry is more than the safety margin away. The token is
// decoded without signature verification; the client never holds the
// signing secret. An unparsable token counts as expired.
func IsLive(s Session) bool {
	return isLiveAt(s, time.Now())
}

func isLiveAt(s Session, now time.Time) bool {
	if s.AccessToken == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.AccessToken, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return now.Before(exp.Time.Add(-expiryMargin))
}
