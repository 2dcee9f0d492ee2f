package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aeturnus/vitality-system/internal/api/handler"
	"github.com/aeturnus/vitality-system/internal/api/middleware"
	"github.com/aeturnus/vitality-system/internal/core/domain"
	"github.com/aeturnus/vitality-system/internal/core/ports"
	"github.com/aeturnus/vitality-system/internal/core/service"
	mongodb "github.com/aeturnus/vitality-system/internal/infrastructure/db/mongo"
	redisdb "github.com/aeturnus/vitality-system/internal/infrastructure/db/redis"
)

// RouterConfig carries the external dependencies the HTTP layer is wired
// from. The oracle and identifier are interfaces so the router can be built
// against stubs in tests.
type RouterConfig struct {
	MongoClient *mongo.Client
	MongoDB     *mongo.Database
	Redis       *redis.Client
	Oracle      ports.NutritionOracle
	Identifier  ports.FoodIdentifier
	JWTSecret   string
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("vitality"))

	// --- Repositories ---
	authRepo := mongodb.NewAuthRepository(cfg.MongoDB)
	playerRepo := mongodb.NewPlayerRepository(cfg.MongoDB)
	choiceRepo := mongodb.NewChoiceRepository(cfg.MongoClient, cfg.MongoDB)
	sessionStore := redisdb.NewSessionStore(cfg.Redis)

	// --- Services ---
	authService := service.NewAuthService(authRepo, playerRepo, cfg.JWTSecret, 24*time.Hour, cfg.Log)
	ledger := service.NewLedgerService(playerRepo, choiceRepo, cfg.Log)
	scanService := service.NewScanService(playerRepo, cfg.Oracle, cfg.Identifier, sessionStore, ledger, cfg.Log)
	playerService := service.NewPlayerService(playerRepo, choiceRepo, cfg.Log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	scanHandler := handler.NewScanHandler(scanService)
	playerHandler := handler.NewPlayerHandler(playerService)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(cfg.MongoDB, cfg.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(cfg.JWTSecret))

	v1.GET("/profile", playerHandler.GetProfile)
	v1.PUT("/profile", playerHandler.UpdateProfile)
	v1.POST("/scan", scanHandler.Start)
	v1.POST("/scan/image", scanHandler.StartImage)
	v1.POST("/choice", scanHandler.Commit)
	v1.GET("/choices", playerHandler.ListChoices)
	v1.GET("/report/weekly", playerHandler.WeeklyReport)

	// Admin-only player lookup.
	v1.GET("/players/:username", playerHandler.GetByUsername, middleware.RBAC(domain.RoleAdmin))

	return e
}
