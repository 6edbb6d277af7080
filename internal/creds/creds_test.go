package creds

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/k-ivanov/bgx/internal/bgx"
)

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestIsLive(t *testing.T) {
	now := time.Now()

	t.Run("live token", func(t *testing.T) {
		s := Session{AccessToken: tokenExpiringAt(t, now.Add(time.Hour))}
		if !isLiveAt(s, now) {
			t.Fatal("expected live session")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		s := Session{AccessToken: tokenExpiringAt(t, now.Add(-time.Hour))}
		if isLiveAt(s, now) {
			t.Fatal("expected expired session")
		}
	})

	t.Run("inside the safety margin", func(t *testing.T) {
		s := Session{AccessToken: tokenExpiringAt(t, now.Add(20*time.Second))}
		if isLiveAt(s, now) {
			t.Fatal("token expiring within 30s must not count as live")
		}
	})

	t.Run("just outside the safety margin", func(t *testing.T) {
		s := Session{AccessToken: tokenExpiringAt(t, now.Add(31*time.Second))}
		if !isLiveAt(s, now) {
			t.Fatal("token expiring after the margin should be live")
		}
	})

	t.Run("unparsable token", func(t *testing.T) {
		s := Session{AccessToken: "not-a-jwt"}
		if isLiveAt(s, now) {
			t.Fatal("unparsable token must count as expired")
		}
	})

	t.Run("missing token", func(t *testing.T) {
		if isLiveAt(Session{}, now) {
			t.Fatal("empty session must not be live")
		}
	})

	t.Run("token without exp claim", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 42})
		signed, err := token.SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("signing token: %v", err)
		}
		if isLiveAt(Session{AccessToken: signed}, now) {
			t.Fatal("token without expiry must count as expired")
		}
	})
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save then load", func(t *testing.T) {
		store := NewMemStore()
		session := Session{
			AccessToken:  "access",
			RefreshToken: "refresh",
			User:         bgx.User{ID: 1, Username: "ana"},
		}
		if err := store.Save(ctx, "visitor-1", session); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}

		loaded, err := store.Load(ctx, "visitor-1")
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if loaded.User.Username != "ana" || loaded.RefreshToken != "refresh" {
			t.Fatalf("loaded session does not match: %+v", loaded)
		}
	})

	t.Run("load unknown visitor", func(t *testing.T) {
		store := NewMemStore()
		if _, err := store.Load(ctx, "nobody"); !errors.Is(err, ErrNoSession) {
			t.Fatalf("expected ErrNoSession, got %v", err)
		}
	})

	t.Run("clear removes everything", func(t *testing.T) {
		store := NewMemStore()
		session := Session{
			AccessToken:  "access",
			RefreshToken: "refresh",
			User:         bgx.User{ID: 1},
		}
		if err := store.Save(ctx, "visitor-1", session); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		if err := store.Clear(ctx, "visitor-1"); err != nil {
			t.Fatalf("Clear returned error: %v", err)
		}
		if _, err := store.Load(ctx, "visitor-1"); !errors.Is(err, ErrNoSession) {
			t.Fatalf("expected ErrNoSession after clear, got %v", err)
		}
	})

	t.Run("visitors are isolated", func(t *testing.T) {
		store := NewMemStore()
		_ = store.Save(ctx, "a", Session{AccessToken: "token-a"})
		_ = store.Save(ctx, "b", Session{AccessToken: "token-b"})
		_ = store.Clear(ctx, "a")

		if _, err := store.Load(ctx, "b"); err != nil {
			t.Fatalf("clearing one visitor must not touch another: %v", err)
		}
	})
}
