package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/k-ivanov/bgx/internal/bgx"
	"github.com/k-ivanov/bgx/internal/creds"
)

// HandleLoginPage renders the login form. A visitor with a live session
// never sees it; they go straight to the dashboard.
func (a *App) HandleLoginPage(c *gin.Context) {
	if _, ok := a.liveSession(c); ok {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login", gin.H{"Title": "Sign In", "Username": ""})
}

// HandleLogin exchanges credentials for tokens, loads the profile and
// persists the composed session. A failure of either call surfaces as one
// general error and nothing is persisted.
func (a *App) HandleLogin(c *gin.Context) {
	if _, ok := a.liveSession(c); ok {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.HTML(http.StatusBadRequest, "login", gin.H{
			"Title":    "Sign In",
			"Error":    "Username and password are required",
			"Username": username,
		})
		return
	}

	ctx := c.Request.Context()
	pair, err := a.api.Login(ctx, username, password)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login", gin.H{
			"Error":    loginError(err),
			"Username": username,
		})
		return
	}

	user, err := a.api.CurrentUser(bgx.WithToken(ctx, pair.Access))
	if err != nil {
		// Tokens without a profile are not a session; persist nothing.
		a.sentry.CaptureException(err)
		c.HTML(http.StatusUnauthorized, "login", gin.H{
			"Error":    loginError(err),
			"Username": username,
		})
		return
	}

	session := creds.Session{AccessToken: pair.Access, RefreshToken: pair.Refresh, User: user}
	if err := a.store.Save(ctx, visitorID(c), session); err != nil {
		slog.Error("save session", "error", err)
		a.sentry.CaptureException(err)
		c.HTML(http.StatusInternalServerError, "login", gin.H{
			"Error":    "Login failed. Please try again.",
			"Username": username,
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// HandleLogout clears the stored session and returns to the home page.
func (a *App) HandleLogout(c *gin.Context) {
	if err := a.store.Clear(c.Request.Context(), visitorID(c)); err != nil {
		slog.Error("clear session", "error", err)
		a.sentry.CaptureException(err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// HandleActivatePage renders the activation form, pre-filling the code
// when it was handed over from the registration flow.
func (a *App) HandleActivatePage(c *gin.Context) {
	c.HTML(http.StatusOK, "activate", gin.H{
		"Code": c.Query("code"),
	})
}

// HandleActivate redeems a single-use activation code for a session. On
// failure the code stays in the input for correction; a reused code is an
// ordinary server-reported failure.
func (a *App) HandleActivate(c *gin.Context) {
	code := strings.TrimSpace(c.PostForm("activation_code"))
	if code == "" {
		c.HTML(http.StatusBadRequest, "activate", gin.H{
			"Error": "Activation code is required",
			"Code":  "",
		})
		return
	}

	ctx := c.Request.Context()
	result, err := a.api.Activate(ctx, code)
	if err != nil {
		c.HTML(http.StatusBadRequest, "activate", gin.H{
			"Error": activationError(err),
			"Code":  code,
		})
		return
	}

	session := creds.Session{
		AccessToken:  result.Access,
		RefreshToken: result.Refresh,
		User:         result.User,
	}
	if err := a.store.Save(ctx, visitorID(c), session); err != nil {
		slog.Error("save session", "error", err)
		a.sentry.CaptureException(err)
		c.HTML(http.StatusInternalServerError, "activate", gin.H{
			"Error": "Activation succeeded but the session could not be stored. Please log in.",
			"Code":  code,
		})
		return
	}

	c.HTML(http.StatusOK, "activated", gin.H{
		"User":         result.User,
		"DelaySeconds": int(a.activateDelay.Seconds()),
	})
}

// loginError collapses any login failure into a single banner message.
func loginError(err error) string {
	var apiErr *bgx.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.GeneralError(); msg != "" {
			return msg
		}
		return "Invalid username or password"
	}
	return "Login failed. Please try again."
}

// activationError prefers the server's activation_code field message.
func activationError(err error) string {
	var apiErr *bgx.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.FieldError("activation_code"); msg != "" {
			return msg
		}
		if msg := apiErr.GeneralError(); msg != "" {
			return msg
		}
	}
	return "Activation failed. Please check your code and try again."
}
