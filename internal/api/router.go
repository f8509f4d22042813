package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/roots/admin-console/docs"
	"github.com/roots/admin-console/internal/api/handler"
	"github.com/roots/admin-console/internal/api/middleware"
	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
)

// Dependencies are the services and probes the router wires into handlers.
type Dependencies struct {
	Workspaces    middleware.WorkspaceOpener
	Auth          ports.AuthService
	Directory     ports.DirectoryService
	Moderation    ports.ModerationService
	PaymentConfig ports.PaymentConfigService
	Activity      ports.ActivityService

	Mongo   *mongo.Database
	Redis   *redis.Client
	Breaker handler.BreakerProbe

	Cookie         middleware.CookieConfig
	UploadMaxBytes int64
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer     prometheus.Registerer
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "console",
		Registerer: registerer,
	}))

	// --- Health probes, metrics and docs (no session required) ---
	var probes []handler.Probe
	if deps.Mongo != nil {
		probes = append(probes, handler.MongoProbe(deps.Mongo))
	}
	if deps.Redis != nil {
		probes = append(probes, handler.RedisProbe(deps.Redis))
	}
	if deps.Breaker != nil {
		probes = append(probes, handler.CircuitProbe(deps.Breaker))
	}
	healthHandler := handler.NewHealthHandler(probes...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Console session ---
	withWorkspace := middleware.Workspace(deps.Workspaces, deps.Cookie)
	guard := middleware.Guard(deps.Auth, domain.RoleSuperadmin)

	authHandler := handler.NewAuthHandler(deps.Auth)
	e.GET(middleware.LoginPath, authHandler.LoginScreen, withWorkspace)

	auth := e.Group("/auth", withWorkspace)
	auth.POST("/request-otp", authHandler.RequestOTP)
	auth.POST("/verify-otp", authHandler.VerifyOTP)
	auth.GET("/me", authHandler.Me)
	auth.POST("/logout", authHandler.Logout)

	// --- Guarded console screens ---
	usersHandler := handler.NewUsersHandler(deps.Directory)
	requestsHandler := handler.NewRequestsHandler(deps.Moderation)
	paymentConfigHandler := handler.NewPaymentConfigHandler(deps.PaymentConfig, deps.UploadMaxBytes)
	notificationsHandler := handler.NewNotificationsHandler()
	activityHandler := handler.NewActivityHandler(deps.Activity)
	liveHandler := handler.NewLiveHandler(deps.Moderation, 0)

	api := e.Group("/api", withWorkspace, guard)
	api.GET("/users", usersHandler.List)
	api.GET("/payment-requests", requestsHandler.List(domain.KindPayment))
	api.PATCH("/payment-requests/:id", requestsHandler.Review(domain.KindPayment))
	api.GET("/upgrade-requests", requestsHandler.List(domain.KindUpgrade))
	api.PATCH("/upgrade-requests/:id", requestsHandler.Review(domain.KindUpgrade))
	api.GET("/payment-config", paymentConfigHandler.Get)
	api.PUT("/payment-config", paymentConfigHandler.Save)
	api.GET("/notifications", notificationsHandler.Drain)
	api.GET("/activity", activityHandler.List)
	api.GET("/live/:kind", liveHandler.Stream)

	return e
}
