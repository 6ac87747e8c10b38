package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/loanlens/analysis-api/docs"
	"github.com/loanlens/analysis-api/internal/api/handler"
	"github.com/loanlens/analysis-api/internal/api/middleware"
	"github.com/loanlens/analysis-api/internal/core/ports"
)

// Dependencies holds everything the router needs to register routes.
type Dependencies struct {
	Service                  ports.AnalysisService
	RequireApplicantIdentity bool
	AllowedOrigins           []string
	JWTSecret                string

	// Limiter is optional; nil disables rate limiting on /analyse.
	Limiter middleware.Limiter

	// ReadinessChecks are run by GET /health/ready, keyed by dependency name.
	ReadinessChecks map[string]handler.CheckFunc

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(corsConfig(deps.AllowedOrigins)))

	// --- Analysis ---
	analysisHandler := handler.NewAnalysisHandler(deps.Service, deps.RequireApplicantIdentity, deps.Log)

	var analyseMiddleware []echo.MiddlewareFunc
	if deps.JWTSecret != "" {
		analyseMiddleware = append(analyseMiddleware, middleware.Auth(deps.JWTSecret))
	}
	if deps.Limiter != nil {
		analyseMiddleware = append(analyseMiddleware, middleware.RateLimit(deps.Limiter, deps.Log))
	}
	e.POST("/analyse", analysisHandler.Analyse, analyseMiddleware...)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.ReadinessChecks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- API docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// corsConfig allows every method and reflects requested headers. A "*" entry
// reflects the caller's origin so credentialed requests keep working.
func corsConfig(origins []string) echomiddleware.CORSConfig {
	cfg := echomiddleware.CORSConfig{
		AllowOrigins:     origins,
		AllowCredentials: true,
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE, echo.OPTIONS,
		},
	}
	for _, o := range origins {
		if o == "*" {
			cfg.UnsafeWildcardOriginWithAllowCredentials = true
			break
		}
	}
	return cfg
}
