// Package http assembles the gin router and runs the API and metrics servers.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	auditHTTP "github.com/docg1701/iam-dashboard/internal/audit/http"
	authHTTP "github.com/docg1701/iam-dashboard/internal/auth/http"
	authService "github.com/docg1701/iam-dashboard/internal/auth/service"
	"github.com/docg1701/iam-dashboard/internal/config"
	"github.com/docg1701/iam-dashboard/internal/metrics"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
	permissionHTTP "github.com/docg1701/iam-dashboard/internal/permission/http"
	permissionUseCase "github.com/docg1701/iam-dashboard/internal/permission/usecase"
)

// Routes bundles the handlers and middleware dependencies the router needs.
type Routes struct {
	Auth              *authHTTP.AuthHandler
	Permission        *permissionHTTP.PermissionHandler
	Audit             *auditHTTP.AuditHandler
	TokenService      authService.TokenService
	PermissionUseCase permissionUseCase.PermissionUseCase
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates the API server with all routes registered. meterProvider
// may be nil, in which case no HTTP metrics are recorded.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	meterProvider metric.MeterProvider,
	routes Routes,
) *Server {
	router := buildRouter(cfg, logger, meterProvider, routes)

	return &Server{
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the API server. The context gates the readiness endpoint:
// once cancelled, /ready reports 503 while in-flight requests drain.
func (s *Server) Start(ctx context.Context) error {
	s.router.GET("/ready", ReadinessHandler(ctx))

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func buildRouter(
	cfg *config.Config,
	logger *slog.Logger,
	meterProvider metric.MeterProvider,
	routes Routes,
) *gin.Engine {
	router := gin.New()
	router.Use(RecoveryMiddleware(logger))
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", HealthHandler)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	if cfg.RateLimitLoginEnabled {
		limiter := authHTTP.LoginRateLimitMiddleware(
			cfg.RateLimitLoginRequestsPerSec,
			cfg.RateLimitLoginBurst,
			logger,
		)
		auth.POST("/login", limiter, routes.Auth.LoginHandler)
		auth.POST("/refresh", limiter, routes.Auth.RefreshHandler)
	} else {
		auth.POST("/login", routes.Auth.LoginHandler)
		auth.POST("/refresh", routes.Auth.RefreshHandler)
	}
	auth.POST("/logout", routes.Auth.LogoutHandler)

	authenticated := v1.Group("")
	authenticated.Use(authHTTP.AuthenticationMiddleware(routes.TokenService, logger))

	authenticated.GET("/auth/me", routes.Auth.MeHandler)
	authenticated.POST("/auth/setup-2fa", routes.Auth.SetupTOTPHandler)
	authenticated.POST("/auth/enable-2fa", routes.Auth.EnableTOTPHandler)
	authenticated.POST("/auth/disable-2fa", routes.Auth.DisableTOTPHandler)

	authenticated.POST(
		"/users",
		permissionHTTP.RequireScope(routes.PermissionUseCase, permissionDomain.ScopeAdmin, permissionDomain.OperationCreate, logger),
		routes.Auth.CreateUserHandler,
	)

	authenticated.POST(
		"/permissions/grant",
		permissionHTTP.RequireScope(routes.PermissionUseCase, permissionDomain.ScopeAdmin, permissionDomain.OperationUpdate, logger),
		routes.Permission.GrantHandler,
	)
	authenticated.POST(
		"/permissions/revoke",
		permissionHTTP.RequireScope(routes.PermissionUseCase, permissionDomain.ScopeAdmin, permissionDomain.OperationDelete, logger),
		routes.Permission.RevokeHandler,
	)
	authenticated.GET(
		"/permissions/:user_id",
		permissionHTTP.RequireScope(routes.PermissionUseCase, permissionDomain.ScopeAdmin, permissionDomain.OperationRead, logger),
		routes.Permission.ListHandler,
	)

	authenticated.GET(
		"/audit",
		permissionHTTP.RequireScope(routes.PermissionUseCase, permissionDomain.ScopeAdmin, permissionDomain.OperationRead, logger),
		routes.Audit.ListHandler,
	)

	return router
}
