// Package auth supplies bearer tokens for mutating backend calls.
//
// Access tokens are usually JWTs. Their signature is the backend's concern;
// this package only reads the exp claim so that an expired token is
// refreshed before a write instead of being rejected by the server.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alfredjeanlab/sprintboard/internal/clock"
)

// ErrNoToken is returned when no valid access token can be produced.
var ErrNoToken = errors.New("no valid access token")

// Leeway is subtracted from a token's expiry so that a token about to expire
// is treated as expired.
const Leeway = 30 * time.Second

// TokenSource yields a valid access token or ErrNoToken.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Expiry returns the exp claim of a JWT without verifying its signature.
// ok is false for opaque tokens and JWTs without exp.
func Expiry(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	t, err := claims.GetExpirationTime()
	if err != nil || t == nil {
		return time.Time{}, false
	}
	return t.Time, true
}

// expired reports whether token is a JWT whose exp has passed at now.
func expired(token string, now time.Time) bool {
	exp, ok := Expiry(token)
	if !ok {
		return false
	}
	return !now.Before(exp.Add(-Leeway))
}

// Static serves a fixed token. An empty or expired token yields ErrNoToken.
type Static struct {
	token string
	clock clock.Clock
}

func NewStatic(token string, clk clock.Clock) *Static {
	if clk == nil {
		clk = clock.Real()
	}
	return &Static{token: token, clock: clk}
}

func (s *Static) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.token == "" {
		return "", ErrNoToken
	}
	if expired(s.token, s.clock.Now()) {
		return "", fmt.Errorf("token expired: %w", ErrNoToken)
	}
	return s.token, nil
}

// RefreshFunc exchanges a refresh token for a new access token.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

// Refreshing caches an access token and uses refresh to replace it once it
// expires. Concurrent callers share one refresh.
type Refreshing struct {
	refreshToken string
	refresh      RefreshFunc
	clock        clock.Clock

	mu     sync.Mutex
	access string
}

func NewRefreshing(access, refreshToken string, refresh RefreshFunc, clk clock.Clock) *Refreshing {
	if clk == nil {
		clk = clock.Real()
	}
	return &Refreshing{
		refreshToken: refreshToken,
		refresh:      refresh,
		clock:        clk,
		access:       access,
	}
}

func (r *Refreshing) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.access != "" && !expired(r.access, r.clock.Now()) {
		return r.access, nil
	}
	if r.refreshToken == "" || r.refresh == nil {
		return "", ErrNoToken
	}
	tok, err := r.refresh(ctx, r.refreshToken)
	if err != nil {
		return "", fmt.Errorf("refreshing token: %w: %w", ErrNoToken, err)
	}
	if tok == "" || expired(tok, r.clock.Now()) {
		return "", fmt.Errorf("refresh returned unusable token: %w", ErrNoToken)
	}
	r.access = tok
	return tok, nil
}
