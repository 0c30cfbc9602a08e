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
	"github.com/jhoicas/Activos-api/internal/application/acta"
	"github.com/jhoicas/Activos-api/internal/application/auth"
	"github.com/jhoicas/Activos-api/internal/application/inventory"
	"github.com/jhoicas/Activos-api/internal/infrastructure/mail"
	"github.com/jhoicas/Activos-api/internal/infrastructure/outbox"
	infrapdf "github.com/jhoicas/Activos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Activos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Activos-api/internal/infrastructure/ws"
	httpRouter "github.com/jhoicas/Activos-api/internal/interfaces/http"
	"github.com/jhoicas/Activos-api/pkg/config"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Uploads.Dir).Msg("directorio de uploads")
	}

	userRepo := postgres.NewUserRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	movRepo := postgres.NewMovementRepository(pool)
	actaRepo := postgres.NewActaRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	hub := ws.NewHub(log.Zerolog())
	notifier := mail.NewGomailNotifier(cfg.SMTP, log.Zerolog())
	pdfGenerator := infrapdf.NewMarotoActaGenerator()

	itemUC := inventory.NewItemUseCase(txRunner, itemRepo, movRepo, hub)
	actaOrch := acta.NewOrchestrator(
		txRunner, itemRepo, actaRepo, tokenRepo, pdfGenerator,
		acta.FirmaConfig{
			BaseURL:    cfg.Firma.BaseURL,
			ConsumoTTL: cfg.Firma.ConsumoTTL(),
		},
		log,
	)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Despachador de notificaciones: corre hasta que main cancele su contexto.
	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	defer stopDispatcher()
	dispatcher := outbox.NewDispatcher(
		outboxRepo, actaRepo, itemRepo, notifier, hub, pdfGenerator, log.Zerolog(),
	)
	go dispatcher.Run(dispatcherCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Activos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.RegisterWebSocket(app, hub)
	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		ItemUC:     itemUC,
		ActaOrch:   actaOrch,
		JWTSecret:  cfg.JWT.Secret,
		UploadsDir: cfg.Uploads.Dir,
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

	stopDispatcher()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
