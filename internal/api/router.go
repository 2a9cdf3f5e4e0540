package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/identity-systems/user-api/docs"
	"github.com/identity-systems/user-api/internal/api/handler"
	"github.com/identity-systems/user-api/internal/api/middleware"
	"github.com/identity-systems/user-api/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(userService ports.UserService, tokens ports.TokenValidator, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("userapi"))
	e.Use(middleware.Auth(tokens))

	userHandler := handler.NewUserHandler(userService)
	requireAuth := middleware.RequireAuth()

	// --- Anonymous routes ---
	e.POST("/users/register", userHandler.Register)
	e.POST("/users/register/admin", userHandler.RegisterAdmin)
	e.POST("/users/login", userHandler.Login)
	e.POST("/users", userHandler.Create)

	// --- Authenticated routes ---
	e.POST("/users/refresh-token", userHandler.RefreshToken, requireAuth)
	e.GET("/users/me", userHandler.Me, requireAuth)
	e.PUT("/users/:id/password", userHandler.ChangePassword, requireAuth)
	e.GET("/users/page", userHandler.ListPaged, requireAuth)
	e.GET("/users", userHandler.List, requireAuth)
	e.GET("/users/:id", userHandler.Get, requireAuth)
	e.PUT("/users/:id", userHandler.Update, requireAuth)
	e.DELETE("/users/:id", userHandler.Delete, requireAuth)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
