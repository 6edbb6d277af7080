package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/k-ivanov/bgx/internal/bgx"
	"github.com/k-ivanov/bgx/internal/flow"
)

// The registration flow uses post/redirect/get: every POST drives one
// transition, then the visitor lands back on GET /register which renders
// whatever state the flow is in. Illegal or concurrent submissions are
// no-ops by design, so transition errors all land on the same redirect.

// HandleFlowState renders the current step of the visitor's flow.
func (a *App) HandleFlowState(c *gin.Context) {
	f := a.flows.Get(visitorID(c))

	switch s := f.State().(type) {
	case flow.ChooseType:
		c.HTML(http.StatusOK, "register_choose", gin.H{})
	case flow.MatchOrRegisterForm:
		if s.Type == flow.TypeNew {
			c.HTML(http.StatusOK, "register_new", gin.H{
				"Errors": s.Errors,
				"Values": s.Register,
				"Busy":   f.Busy(),
			})
			return
		}
		c.HTML(http.StatusOK, "register_match", gin.H{
			"Errors": s.Errors,
			"Values": s.Match,
			"Busy":   f.Busy(),
		})
	case flow.CandidateSelection:
		c.HTML(http.StatusOK, "register_candidates", gin.H{
			"Candidates": s.Candidates,
		})
	case flow.ClaimForm:
		c.HTML(http.StatusOK, "register_claim", gin.H{
			"Rider":  s.Selected,
			"Errors": s.Errors,
			"Values": s.Claim,
			"Busy":   f.Busy(),
		})
	case flow.Success:
		c.HTML(http.StatusOK, "register_success", gin.H{
			"ActivationCode": s.ActivationCode,
			"User":           s.User,
		})
	}
}

// HandleFlowChoose picks new-account registration or a claim.
func (a *App) HandleFlowChoose(c *gin.Context) {
	f := a.flows.Get(visitorID(c))
	_ = f.Choose(flow.RegistrationType(c.PostForm("type")))
	c.Redirect(http.StatusSeeOther, "/register")
}

func (a *App) HandleFlowBack(c *gin.Context) {
	f := a.flows.Get(visitorID(c))
	_ = f.Back()
	c.Redirect(http.StatusSeeOther, "/register")
}

// HandleFlowCancel exits the flow entirely.
func (a *App) HandleFlowCancel(c *gin.Context) {
	a.flows.Drop(visitorID(c))
	c.Redirect(http.StatusSeeOther, "/")
}

// HandleFlowRegister submits the new-account form.
func (a *App) HandleFlowRegister(c *gin.Context) {
	f := a.flows.Get(visitorID(c))
	req := bgx.RegisterRequest{
		Username:  strings.TrimSpace(c.PostForm("username")),
		Email:     strings.TrimSpace(c.PostForm("email")),
		Password:  c.PostForm("password"),
		Password2: c.PostForm("password2"),
		FirstName: strings.TrimSpace(c.PostForm("first_name")),
		LastName:  strings.TrimSpace(c.PostForm("last_name")),
	}
	_ = f.SubmitRegister(c.Request.Context(), req)
	c.Redirect(http.StatusSeeOther, "/register")
}

// HandleFlowMatch submits the rider search form.
func (a *App) HandleFlowMatch(c *gin.Context) {
	f := a.flows.Get(visitorID(c))
	query := bgx.MatchQuery{
		FirstName:     strings.TrimSpace(c.PostForm("first_name")),
		LastName:      strings.TrimSpace(c.PostForm("last_name")),
		LicenseNumber: strings.TrimSpace(c.PostForm("license_number")),
		DateOfBirth:   strings.TrimSpace(c.PostForm("date_of_birth")),
	}
	_ = f.SubmitMatch(c.Request.Context(), query)
	c.Redirect(http.StatusSeeOther, "/register")
}

// HandleFlowSelect binds one matched rider.
func (a *App) HandleFlowSelect(c *gin.Context) {
	f := a.flows.Get(visitorID(c))
	riderID, err := strconv.ParseInt(c.PostForm("rider_id"), 10, 64)
	if err == nil {
		_ = f.SelectCandidate(riderID)
	}
	c.Redirect(http.StatusSeeOther, "/register")
}

func (a *App) HandleFlowSearchAgain(c *gin.Context) {
	f := a.flows.Get(visitorID(c))
	_ = f.SearchAgain()
	c.Redirect(http.StatusSeeOther, "/register")
}

// HandleFlowClaim submits the claim form for the bound rider.
func (a *App) HandleFlowClaim(c *gin.Context) {
	f := a.flows.Get(visitorID(c))
	_ = f.SubmitClaim(
		c.Request.Context(),
		strings.TrimSpace(c.PostForm("username")),
		strings.TrimSpace(c.PostForm("email")),
		c.PostForm("password"),
		c.PostForm("password2"),
	)
	c.Redirect(http.StatusSeeOther, "/register")
}

// HandleFlowFinish leaves the Success step, either towards activation with
// the code handed over, or back home. The code is never persisted here;
// deferring visitors must write it down.
func (a *App) HandleFlowFinish(c *gin.Context) {
	f := a.flows.Get(visitorID(c))
	success, ok := f.State().(flow.Success)
	a.flows.Drop(visitorID(c))

	if ok && c.PostForm("next") == "activate" {
		c.Redirect(http.StatusSeeOther, "/activate?code="+url.QueryEscape(success.ActivationCode))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
