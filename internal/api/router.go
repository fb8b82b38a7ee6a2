package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/emsys/identity-service/internal/api/handler"
	"github.com/emsys/identity-service/internal/api/middleware"
	"github.com/emsys/identity-service/internal/core/domain"
	"github.com/emsys/identity-service/internal/core/service"
	"github.com/emsys/identity-service/internal/infrastructure/config"
	identitymongo "github.com/emsys/identity-service/internal/infrastructure/db/mongo"
	identityredis "github.com/emsys/identity-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	accountRepo := identitymongo.NewAccountRepository(db)
	roleRepo := identitymongo.NewRoleRepository(db)
	hasher := service.NewBcryptHasher(0)
	throttle := identityredis.NewLoginThrottle(rdb, cfg.LoginMaxFailures, cfg.LoginWindow)

	issuer, err := service.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TokenTTL)
	if err != nil {
		return nil, err
	}

	registrationService := service.NewRegistrationService(accountRepo, roleRepo, hasher, log)
	authService := service.NewAuthService(accountRepo, hasher, issuer, throttle, log)
	roleService := service.NewRoleAssignmentService(accountRepo, roleRepo, log)

	authHandler := handler.NewAuthHandler(registrationService, authService, roleService)
	authMiddleware := middleware.Auth(cfg.JWT.Secret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/assign-role", authHandler.AssignRole, authMiddleware, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
