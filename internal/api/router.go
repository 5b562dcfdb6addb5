package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/wfa22/PrivacyGuard/docs"
	"github.com/wfa22/PrivacyGuard/internal/api/handler"
	"github.com/wfa22/PrivacyGuard/internal/api/middleware"
	"github.com/wfa22/PrivacyGuard/internal/core/domain"
	"github.com/wfa22/PrivacyGuard/internal/core/service"
	"github.com/wfa22/PrivacyGuard/internal/infrastructure/config"
	mongodb "github.com/wfa22/PrivacyGuard/internal/infrastructure/db/mongo"
	redisdb "github.com/wfa22/PrivacyGuard/internal/infrastructure/db/redis"
	"github.com/wfa22/PrivacyGuard/internal/pkg/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The audit sink is constructed and started by the caller so its worker
// lifecycle is bound to the process, not to the router.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit service.AuditSink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("privacyguard"))

	// --- Dependencies ---
	accounts := mongodb.NewAccountRepository(db)
	sessions := mongodb.NewSessionRepository(db)
	codec := token.NewCodec(cfg.JWTSecret)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.MaxLoginFailures)

	sessionService := service.NewSessionService(
		accounts, sessions, codec, throttle, audit, log,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)
	accountService := service.NewAccountService(accounts, sessions, audit, log)

	authHandler := handler.NewAuthHandler(sessionService)
	userHandler := handler.NewUserHandler(accountService)
	authMiddleware := middleware.Auth(codec, accounts)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)

	// --- Account administration ---
	users := e.Group("/users", authMiddleware)
	users.GET("", userHandler.List, middleware.RBAC(domain.RoleAdmin))
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id/role", userHandler.ChangeRole, middleware.RBAC(domain.RoleAdmin))
	users.DELETE("/:id", userHandler.Delete, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
