// Package web is the gin application: page handlers, the session gate and
// the registration flow endpoints.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/k-ivanov/bgx/internal/bgx"
	"github.com/k-ivanov/bgx/internal/creds"
	"github.com/k-ivanov/bgx/internal/flow"
	"github.com/k-ivanov/bgx/internal/services/sentry"
)

//go:embed templates/*.html
var templateFS embed.FS

// App wires the API client, credential store and flow registry into HTTP
// handlers.
type App struct {
	api    *bgx.Client
	store  creds.Store
	flows  *flow.Registry
	sentry *sentry.Service

	// activateDelay is how long the activation confirmation page waits
	// before redirecting to the dashboard.
	activateDelay time.Duration
}

func NewApp(api *bgx.Client, store creds.Store, flows *flow.Registry, sentrySvc *sentry.Service, activateDelay time.Duration) *App {
	return &App{
		api:           api,
		store:         store,
		flows:         flows,
		sentry:        sentrySvc,
		activateDelay: activateDelay,
	}
}

func (a *App) RegisterRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(Logger())
	router.Use(a.VisitorID())
	router.Use(a.Language())

	tmpl := template.Must(template.ParseFS(templateFS, "templates/*.html"))
	router.SetHTMLTemplate(tmpl)

	// Public pages
	router.GET("/", a.HandleHome)
	router.GET("/championships/:id", a.HandleChampionship)
	router.GET("/races", a.HandleRaces)
	router.GET("/races/:id", a.HandleRace)
	router.GET("/riders/:id", a.HandleRider)

	// Auth pages
	router.GET("/login", a.HandleLoginPage)
	router.POST("/login", a.HandleLogin)
	router.POST("/logout", a.HandleLogout)
	router.GET("/activate", a.HandleActivatePage)
	router.POST("/activate", a.HandleActivate)

	// Registration flow
	reg := router.Group("/register")
	{
		reg.GET("", a.HandleFlowState)
		reg.POST("/choose", a.HandleFlowChoose)
		reg.POST("/back", a.HandleFlowBack)
		reg.POST("/cancel", a.HandleFlowCancel)
		reg.POST("/new", a.HandleFlowRegister)
		reg.POST("/match", a.HandleFlowMatch)
		reg.POST("/select", a.HandleFlowSelect)
		reg.POST("/search-again", a.HandleFlowSearchAgain)
		reg.POST("/claim", a.HandleFlowClaim)
		reg.POST("/finish", a.HandleFlowFinish)
	}

	// Protected pages
	protected := router.Group("/dashboard")
	protected.Use(a.SessionGate())
	{
		protected.GET("", a.HandleDashboard)
	}

	return router
}
