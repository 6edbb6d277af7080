package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/k-ivanov/bgx/internal/bgx"
	"github.com/k-ivanov/bgx/internal/creds"
)

const (
	visitorCookie = "bgx_visitor"
	langCookie    = "bgx_lang"

	visitorKey = "visitorID"
	sessionKey = "session"
)

// Logger logs each request through slog.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// VisitorID assigns each browser an opaque id cookie. The credential store
// and the flow registry are keyed by it.
func (a *App) VisitorID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(visitorCookie)
		if err != nil || id == "" {
			id = uuid.New().String()
			c.SetCookie(visitorCookie, id, int((365 * 24 * time.Hour).Seconds()), "/", "", false, true)
		}
		c.Set(visitorKey, id)
		c.Next()
	}
}

// Language resolves the UI language (cookie first, then Accept-Language)
// and attaches it to the request context for the API client.
func (a *App) Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang, err := c.Cookie(langCookie)
		if err != nil || lang == "" {
			lang = primaryLanguage(c.GetHeader("Accept-Language"))
		}
		ctx := bgx.WithLanguage(c.Request.Context(), lang)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SessionGate guards authenticated pages. Only a live session passes;
// everything else redirects to the login page. The gate reads the store,
// it never writes it.
func (a *App) SessionGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := a.liveSession(c)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set(sessionKey, session)
		ctx := bgx.WithToken(c.Request.Context(), session.AccessToken)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// liveSession loads the visitor's stored session and checks liveness.
func (a *App) liveSession(c *gin.Context) (creds.Session, bool) {
	session, err := a.store.Load(c.Request.Context(), visitorID(c))
	if err != nil {
		if !errors.Is(err, creds.ErrNoSession) {
			slog.Error("load session", "error", err)
			a.sentry.CaptureException(err)
		}
		return creds.Session{}, false
	}
	if !creds.IsLive(session) {
		return creds.Session{}, false
	}
	return session, true
}

func visitorID(c *gin.Context) string {
	return c.GetString(visitorKey)
}

func sessionFrom(c *gin.Context) (creds.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return creds.Session{}, false
	}
	session, ok := v.(creds.Session)
	return session, ok
}

// primaryLanguage picks the first tag out of an Accept-Language header.
func primaryLanguage(header string) string {
	if header == "" {
		return "en"
	}
	first := strings.Split(header, ",")[0]
	first = strings.TrimSpace(strings.Split(first, ";")[0])
	if first == "" {
		return "en"
	}
	return first
}
