package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
	reglas "github.com/jhoicas/conteo-inventario/internal/domain/conteo"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/notify"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/conteo-inventario/internal/interfaces/http"
	"github.com/jhoicas/conteo-inventario/pkg/config"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Int("max_rounds", cfg.Count.MaxRounds).
		Str("tiebreak", cfg.Count.TieBreakPolicy).
		Msg("iniciando aplicación")

	ctx := context.Background()
	if cfg.DB.AutoMigrate {
		mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		if err := mg.Up(); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		_ = mg.Close()
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Notificaciones: siempre al log; además a Redis Pub/Sub si está configurado.
	notifiers := notify.Multi{notify.NewLogNotifier(log)}
	if cfg.Redis.Enabled() {
		redisNotifier, err := notify.NewRedisNotifier(cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, notificaciones solo por log")
		} else {
			defer redisNotifier.Close()
			notifiers = append(notifiers, redisNotifier)
		}
	}

	companyRepo := postgres.NewCompanyRepository(pool)
	deps := conteo.Deps{
		Tx:            postgres.NewTxRunner(pool),
		Companies:     companyRepo,
		Users:         postgres.NewUserRepository(pool),
		Products:      postgres.NewProductRepository(pool),
		Sectors:       postgres.NewSectorRepository(pool),
		Notifier:      notifiers,
		Policy:        reglas.Policy{MaxRounds: cfg.Count.MaxRounds, TieBreak: reglas.TieBreak(cfg.Count.TieBreakPolicy)},
		Log:           log.Component("conteo"),
		SubmitRetries: cfg.Count.SubmitRetries,
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Conteo de Inventario API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Events:    conteo.NewEventUseCase(deps),
		Sessions:  conteo.NewSessionUseCase(deps),
		Counts:    conteo.NewCountUseCase(deps),
		Recounts:  conteo.NewRecountUseCase(deps),
		Commits:   conteo.NewCommitUseCase(deps),
		Companies: companyRepo,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
