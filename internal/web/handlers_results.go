package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Read-only pages: fetch from the API and render. No local state.

func (a *App) HandleHome(c *gin.Context) {
	championships, err := a.api.Championships(c.Request.Context())
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "home", gin.H{
		"Championships": championships,
	})
}

func (a *App) HandleChampionship(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "error", gin.H{"Message": "Championship not found"})
		return
	}

	ctx := c.Request.Context()
	champ, err := a.api.Championship(ctx, id)
	if err != nil {
		a.renderError(c, err)
		return
	}
	standings, err := a.api.ChampionshipResults(ctx, id)
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "championship", gin.H{
		"Championship": champ,
		"Standings":    standings,
	})
}

func (a *App) HandleRaces(c *gin.Context) {
	races, err := a.api.Races(c.Request.Context(), nil)
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "races", gin.H{"Races": races})
}

func (a *App) HandleRace(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "error", gin.H{"Message": "Race not found"})
		return
	}

	ctx := c.Request.Context()
	race, err := a.api.Race(ctx, id)
	if err != nil {
		a.renderError(c, err)
		return
	}
	days, err := a.api.RaceDays(ctx, id)
	if err != nil {
		a.renderError(c, err)
		return
	}
	results, err := a.api.RaceResults(ctx, id, c.Query("category"))
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "race", gin.H{
		"Race":    race,
		"Days":    days,
		"Results": results,
	})
}

func (a *App) HandleRider(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "error", gin.H{"Message": "Rider not found"})
		return
	}

	ctx := c.Request.Context()
	rider, err := a.api.Rider(ctx, id)
	if err != nil {
		a.renderError(c, err)
		return
	}
	results, err := a.api.RiderResults(ctx, id)
	if err != nil {
		a.renderError(c, err)
		return
	}
	standings, err := a.api.RiderChampionshipResults(ctx, id)
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "rider", gin.H{
		"Rider":     rider,
		"Results":   results,
		"Standings": standings,
	})
}

// HandleDashboard is behind the session gate; the session is always set.
func (a *App) HandleDashboard(c *gin.Context) {
	session, _ := sessionFrom(c)
	c.HTML(http.StatusOK, "dashboard", gin.H{
		"User": session.User,
	})
}

func (a *App) renderError(c *gin.Context, err error) {
	a.sentry.CaptureException(err)
	c.HTML(http.StatusBadGateway, "error", gin.H{
		"Message": "Results are temporarily unavailable. Please try again later.",
	})
}
