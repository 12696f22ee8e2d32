package http

import (
	"context"
	"log/slog"

	"github.com/expromedia/Marx/internal/domain/user"
	"github.com/expromedia/Marx/internal/http/handlers"
	"github.com/expromedia/Marx/internal/http/middlewares"
	"github.com/expromedia/Marx/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

// Deps is everything the router wires into handlers. Prom and Gatherer may
// be nil in tests; LoginLimiter may be nil to disable login throttling.
type Deps struct {
	Env          string
	ServiceName  string
	CORSOrigins  []string
	SecureCookie bool

	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Ping func(ctx context.Context) error

	Issuer    handlers.ChallengeIssuer
	Validator handlers.CredentialValidator
	Sessions  interface {
		handlers.Choreography
		handlers.Navigator
	}
	Tokens interface {
		handlers.TokenIssuer
		middlewares.TokenVerifier
	}
	Themes    handlers.ThemeStore
	Feedback  handlers.FeedbackStore
	Workflows handlers.WorkflowRunner

	LoginLimiter *middlewares.RateLimiter
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	handlers.RegisterValidators()

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.ClientID(d.SecureCookie))
	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))
	r.Use(middlewares.SecurityHeaders(d.SecureCookie))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health
	health := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	var rec handlers.LoginRecorder
	if d.Prom != nil {
		rec = d.Prom
	}

	authHandler := handlers.NewAuthHandler(d.Issuer, d.Validator, d.Sessions, d.Tokens, rec)
	prefsHandler := handlers.NewPreferencesHandler(d.Themes)
	dashHandler := handlers.NewDashboardHandler(d.Sessions, d.Feedback)
	workflowsHandler := handlers.NewWorkflowsHandler(d.Workflows)

	authMw := middlewares.NewAuthMiddleware(d.Tokens, d.Sessions)

	// login
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/challenge", authHandler.GetChallenge)
		authGroup.POST("/challenge", authHandler.RefreshChallenge)
		authGroup.POST("/challenge/check", authHandler.CheckChallenge)

		login := []gin.HandlerFunc{authHandler.Login}
		if d.LoginLimiter != nil {
			login = append([]gin.HandlerFunc{d.LoginLimiter.RateLimiterMiddleware(middlewares.KeyByIP)}, login...)
		}
		authGroup.POST("/login", login...)

		authGroup.GET("/session", authHandler.Session)
		authGroup.GET("/session/stream", authHandler.Stream)
		authGroup.POST("/logout", authMw.RequireAuth(), authHandler.Logout)
	}

	r.GET("/preferences/theme", prefsHandler.GetTheme)
	r.PUT("/preferences/theme", prefsHandler.SetTheme)

	// everything past the login screen
	dash := r.Group("/dashboard", authMw.RequireAuth())
	{
		dash.GET("/menu", dashHandler.Menu)

		dash.GET("/nav", dashHandler.Nav)
		dash.PUT("/nav/tab", dashHandler.SelectTab)
		dash.PUT("/nav/mobile", dashHandler.SetMobileNav)
		dash.PUT("/nav/profile", dashHandler.SetProfileMenu)
		dash.PUT("/nav/sidebar", dashHandler.SetSidebar)
		dash.POST("/nav/dismiss", dashHandler.DismissMenus)

		dash.GET("/pages/:tab", dashHandler.Page)

		dash.POST("/feedback", dashHandler.CreateFeedback)
		dash.PATCH("/feedback/:id", middlewares.RequireRole(user.RoleAdmin), dashHandler.UpdateFeedbackStatus)

		dash.POST("/workflows/:id/run", workflowsHandler.Run)
	}

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Route not found")
	})

	return r
}
