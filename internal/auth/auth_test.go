package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alfredjeanlab/sprintboard/internal/clock"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return s
}

func TestExpiry(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got, ok := Expiry(signed(t, exp))
	if !ok || !got.Equal(exp) {
		t.Errorf("Expiry = %v, %v; want %v, true", got, ok, exp)
	}
	if _, ok := Expiry("opaque-token"); ok {
		t.Error("Expiry(opaque) ok = true")
	}
}

func TestStatic(t *testing.T) {
	clk := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	for _, tc := range []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"empty", "", true},
		{"opaque", "abc123", false},
		{"valid jwt", signed(t, clk.Now().Add(time.Hour)), false},
		{"expired jwt", signed(t, clk.Now().Add(-time.Minute)), true},
		{"within leeway", signed(t, clk.Now().Add(Leeway/2)), true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewStatic(tc.token, clk).Token(context.Background())
			if tc.wantErr {
				if !errors.Is(err, ErrNoToken) {
					t.Fatalf("err = %v, want ErrNoToken", err)
				}
				return
			}
			if err != nil || got != tc.token {
				t.Fatalf("Token = %q, %v", got, err)
			}
		})
	}
}

func TestRefreshing_RefreshesExpiredToken(t *testing.T) {
	clk := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	old := signed(t, clk.Now().Add(time.Minute))
	fresh := signed(t, clk.Now().Add(time.Hour))

	calls := 0
	src := NewRefreshing(old, "refresh-1", func(ctx context.Context, rt string) (string, error) {
		calls++
		if rt != "refresh-1" {
			t.Errorf("refresh token = %q", rt)
		}
		return fresh, nil
	}, clk)

	if got, _ := src.Token(context.Background()); got != old {
		t.Fatalf("first Token should return cached access token")
	}
	clk.Advance(2 * time.Minute)
	got, err := src.Token(context.Background())
	if err != nil || got != fresh {
		t.Fatalf("Token after expiry = %q, %v", got, err)
	}
	if _, err := src.Token(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("refresh calls = %d, want 1", calls)
	}
}

func TestRefreshing_Failures(t *testing.T) {
	clk := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	boom := errors.New("connection refused")

	for _, tc := range []struct {
		name    string
		refresh RefreshFunc
		rt      string
	}{
		{"no refresh token", nil, ""},
		{"refresh error", func(context.Context, string) (string, error) { return "", boom }, "rt"},
		{"refresh returns expired", func(context.Context, string) (string, error) {
			return signed(t, clk.Now().Add(-time.Hour)), nil
		}, "rt"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := NewRefreshing("", tc.rt, tc.refresh, clk)
			if _, err := src.Token(context.Background()); !errors.Is(err, ErrNoToken) {
				t.Fatalf("err = %v, want ErrNoToken", err)
			}
		})
	}
}

func TestToken_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStatic("abc", nil).Token(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
