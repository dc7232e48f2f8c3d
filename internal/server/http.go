package server

import (
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/event-mate/backend/internal/cache"
	"github.com/event-mate/backend/internal/config"
	"github.com/event-mate/backend/internal/database"
	"github.com/event-mate/backend/internal/domain/auth"
	"github.com/event-mate/backend/internal/domain/session"
	"github.com/event-mate/backend/internal/domain/user"
	"github.com/event-mate/backend/internal/microservice"
	"github.com/event-mate/backend/internal/migrations"
)

// StartAuth initializes and starts the auth service
func StartAuth(cfg *config.Config) error {
	initLogger(cfg.Logging.Level)

	app := newApp()

	if err := database.ConnectDB(cfg); err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return err
	}
	slog.Info("Database connected successfully")

	if err := migrations.RunAuthMigrations(database.DB); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return err
	}
	slog.Info("Migrations completed successfully")

	// the auth service signs and verifies, so both keys must be present
	// before we serve a single request
	keys, err := auth.LoadKeyMaterial(cfg.Auth.PrivateKeyPath, cfg.Auth.PublicKeyPath)
	if err != nil {
		slog.Error("Failed to load key material", "error", err)
		return err
	}
	codec := auth.NewTokenCodec(keys, cfg.Auth.Issuer)

	sessionRepo := session.NewRepository(database.DB)
	var sessions session.Service
	if cfg.Redis.Enabled {
		if err := cache.ConnectRedis(&cfg.Redis); err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			return err
		}
		revocations := cache.NewSessionRevocationCache(cache.RedisClient)
		sessions = session.NewServiceWithCache(sessionRepo, revocations, cfg.Auth.RefreshTTL(), cfg.Auth.MaxActiveTokens)
	} else {
		sessions = session.NewService(sessionRepo, cfg.Auth.RefreshTTL(), cfg.Auth.MaxActiveTokens)
	}

	identities := microservice.NewIdentityClient(&cfg.Services)
	authService := auth.NewService(&cfg.Auth, codec, auth.NewRepository(database.DB), sessions, identities)
	handler := auth.NewHandler(authService, cfg.Auth.RefreshTTL())

	SetupAuthRoutes(app, handler, &cfg.Services)

	return listen(app, cfg)
}

// StartUser initializes and starts the user service
func StartUser(cfg *config.Config) error {
	initLogger(cfg.Logging.Level)

	app := newApp()

	if err := database.ConnectDB(cfg); err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return err
	}
	slog.Info("Database connected successfully")

	if err := migrations.RunUserMigrations(database.DB); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return err
	}
	slog.Info("Migrations completed successfully")

	// this service only consumes the login guard, the signing key stays
	// with the auth service
	keys, err := auth.LoadVerificationKey(cfg.Auth.PublicKeyPath)
	if err != nil {
		slog.Error("Failed to load key material", "error", err)
		return err
	}
	codec := auth.NewTokenCodec(keys, cfg.Auth.Issuer)

	registrar := microservice.NewAuthClient(&cfg.Services)
	userService := user.NewService(user.NewRepository(database.DB), registrar)
	handler := user.NewHandler(userService)

	SetupUserRoutes(app, handler, codec, &cfg.Services)

	return listen(app, cfg)
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(fiberlogger.New())
	app.Use(cors.New())
	return app
}

func listen(app *fiber.App, cfg *config.Config) error {
	addr := cfg.Server.Address()
	slog.Info("Server starting", "address", addr, "app", cfg.App.Name)
	if err := app.Listen(addr); err != nil {
		slog.Error("Failed to start server", "error", err)
		return err
	}
	return nil
}

func initLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(handler))
}
