package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/k-ivanov/bgx/internal/bgx"
	"github.com/k-ivanov/bgx/internal/creds"
	"github.com/k-ivanov/bgx/internal/flow"
	"github.com/k-ivanov/bgx/internal/services/sentry"
)

const testVisitor = "visitor-1"

func newTestApp(t *testing.T, backend http.Handler) (*gin.Engine, *creds.MemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	store := creds.NewMemStore()
	api := bgx.NewClient(srv.URL)
	app := NewApp(api, store, flow.NewRegistry(api), sentry.New(), 3*time.Second)
	return app.RegisterRoutes(), store
}

func doRequest(router *gin.Engine, method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.AddCookie(&http.Cookie{Name: visitorCookie, Value: testVisitor})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func liveToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func expiredToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestSessionGate(t *testing.T) {
	t.Run("no session redirects to login", func(t *testing.T) {
		router, _ := newTestApp(t, http.NotFoundHandler())

		w := doRequest(router, http.MethodGet, "/dashboard", nil)
		if w.Code != http.StatusSeeOther {
			t.Fatalf("expected redirect, got %d", w.Code)
		}
		if got := w.Header().Get("Location"); got != "/login" {
			t.Fatalf("expected redirect to /login, got %q", got)
		}
	})

	t.Run("expired session redirects to login", func(t *testing.T) {
		router, store := newTestApp(t, http.NotFoundHandler())
		_ = store.Save(context.Background(), testVisitor, creds.Session{
			AccessToken: expiredToken(t),
			User:        bgx.User{Username: "ana"},
		})

		w := doRequest(router, http.MethodGet, "/dashboard", nil)
		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
			t.Fatalf("expected redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
		}
	})

	t.Run("live session passes", func(t *testing.T) {
		router, store := newTestApp(t, http.NotFoundHandler())
		_ = store.Save(context.Background(), testVisitor, creds.Session{
			AccessToken: liveToken(t),
			User:        bgx.User{Username: "ana", FirstName: "Ana", LastName: "Ivanova"},
		})

		w := doRequest(router, http.MethodGet, "/dashboard", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "ana") {
			t.Fatal("expected dashboard to show the profile")
		}
	})
}

func TestLoginPageGuard(t *testing.T) {
	router, store := newTestApp(t, http.NotFoundHandler())
	_ = store.Save(context.Background(), testVisitor, creds.Session{
		AccessToken: liveToken(t),
		User:        bgx.User{Username: "ana"},
	})

	w := doRequest(router, http.MethodGet, "/login", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestLogin(t *testing.T) {
	t.Run("bad credentials show one general error", func(t *testing.T) {
		backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "No active account found with the given credentials"}`))
		})
		router, store := newTestApp(t, backend)

		w := doRequest(router, http.MethodPost, "/login", url.Values{
			"username": {"ana"},
			"password": {"wrong"},
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "No active account found") {
			t.Fatal("expected the server error in the page")
		}
		if _, err := store.Load(context.Background(), testVisitor); err == nil {
			t.Fatal("no session may be persisted on login failure")
		}
	})

	t.Run("profile fetch failure persists nothing", func(t *testing.T) {
		access := liveToken(t)
		backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/auth/login/":
				_, _ = w.Write([]byte(`{"access": "` + access + `", "refresh": "ref"}`))
			default:
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"detail": "server error"}`))
			}
		})
		router, store := newTestApp(t, backend)

		w := doRequest(router, http.MethodPost, "/login", url.Values{
			"username": {"ana"},
			"password": {"secretpass"},
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if _, err := store.Load(context.Background(), testVisitor); err == nil {
			t.Fatal("half-formed session must not be persisted")
		}
	})

	t.Run("success persists the composed session", func(t *testing.T) {
		access := liveToken(t)
		backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/auth/login/":
				_, _ = w.Write([]byte(`{"access": "` + access + `", "refresh": "ref"}`))
			case "/users/me/":
				if r.Header.Get("Authorization") != "Bearer "+access {
					t.Errorf("profile fetch missing bearer token")
				}
				_, _ = w.Write([]byte(`{"id": 1, "username": "ana", "is_activated": true}`))
			default:
				t.Errorf("unexpected path %q", r.URL.Path)
			}
		})
		router, store := newTestApp(t, backend)

		w := doRequest(router, http.MethodPost, "/login", url.Values{
			"username": {"ana"},
			"password": {"secretpass"},
		})
		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/dashboard" {
			t.Fatalf("expected redirect to /dashboard, got %d %q", w.Code, w.Header().Get("Location"))
		}

		session, err := store.Load(context.Background(), testVisitor)
		if err != nil {
			t.Fatalf("expected stored session: %v", err)
		}
		if session.User.Username != "ana" || session.RefreshToken != "ref" {
			t.Fatalf("unexpected stored session: %+v", session)
		}
	})
}

func TestActivate(t *testing.T) {
	t.Run("bad code stays editable", func(t *testing.T) {
		backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"activation_code": ["Invalid activation code"]}`))
		})
		router, store := newTestApp(t, backend)

		w := doRequest(router, http.MethodPost, "/activate", url.Values{
			"activation_code": {"BADCODE"},
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, "Invalid activation code") {
			t.Fatal("expected the field error in the page")
		}
		if !strings.Contains(body, `value="BADCODE"`) {
			t.Fatal("expected the code to stay in the input")
		}
		if _, err := store.Load(context.Background(), testVisitor); err == nil {
			t.Fatal("no session may be persisted on activation failure")
		}
	})

	t.Run("success persists session and confirms", func(t *testing.T) {
		access := liveToken(t)
		backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access": "` + access + `", "refresh": "ref", "user": {"id": 9, "first_name": "Ana", "last_name": "Ivanova", "is_activated": true}}`))
		})
		router, store := newTestApp(t, backend)

		w := doRequest(router, http.MethodPost, "/activate", url.Values{
			"activation_code": {"GOODCODE"},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Ana Ivanova") {
			t.Fatal("expected the activated user's name in the confirmation")
		}

		session, err := store.Load(context.Background(), testVisitor)
		if err != nil {
			t.Fatalf("expected stored session: %v", err)
		}
		if !creds.IsLive(session) {
			t.Fatal("expected a live stored session")
		}
	})

	t.Run("prefills code from query", func(t *testing.T) {
		router, _ := newTestApp(t, http.NotFoundHandler())

		w := doRequest(router, http.MethodGet, "/activate?code=ABC123", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `value="ABC123"`) {
			t.Fatal("expected the code to be pre-filled")
		}
	})
}

func TestRegisterFlowPages(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/match_rider/":
			_, _ = w.Write([]byte(`{"matches": [{"id": 7, "first_name": "Ana", "last_name": "Ivanova", "club": "MX Sofia"}], "message": "Found 1 matching rider"}`))
		case "/users/claim_account/":
			_, _ = w.Write([]byte(`{"activation_code": "CLAIM-CODE", "user": {"id": 42, "username": "ana", "is_rider": true}}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	})
	router, _ := newTestApp(t, backend)

	// ChooseType
	w := doRequest(router, http.MethodGet, "/register", nil)
	if !strings.Contains(w.Body.String(), "claim my profile") {
		t.Fatal("expected the choose step")
	}

	// Claim branch
	w = doRequest(router, http.MethodPost, "/register/choose", url.Values{"type": {"claim"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	w = doRequest(router, http.MethodGet, "/register", nil)
	if !strings.Contains(w.Body.String(), "Find Your Rider Profile") {
		t.Fatal("expected the match form")
	}

	// Match
	w = doRequest(router, http.MethodPost, "/register/match", url.Values{
		"first_name": {"Ana"},
		"last_name":  {"Ivanova"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	w = doRequest(router, http.MethodGet, "/register", nil)
	if !strings.Contains(w.Body.String(), "MX Sofia") {
		t.Fatal("expected the candidate list")
	}

	// Select and claim
	w = doRequest(router, http.MethodPost, "/register/select", url.Values{"rider_id": {"7"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	w = doRequest(router, http.MethodPost, "/register/claim", url.Values{
		"username":  {"ana"},
		"email":     {"ana@example.com"},
		"password":  {"longenough"},
		"password2": {"longenough"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/register", nil)
	if !strings.Contains(w.Body.String(), "CLAIM-CODE") {
		t.Fatal("expected the activation code on the success step")
	}

	// Finish towards activation carries the code
	w = doRequest(router, http.MethodPost, "/register/finish", url.Values{"next": {"activate"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/activate?code=CLAIM-CODE" {
		t.Fatalf("expected code handover, got %q", got)
	}
}
