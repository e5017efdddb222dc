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

	"github.com/jhoicas/Multitienda-api/docs"
	"github.com/jhoicas/Multitienda-api/internal/application/auth"
	"github.com/jhoicas/Multitienda-api/internal/application/inventory"
	"github.com/jhoicas/Multitienda-api/internal/application/register"
	"github.com/jhoicas/Multitienda-api/internal/application/sales"
	"github.com/jhoicas/Multitienda-api/internal/domain/cashier"
	"github.com/jhoicas/Multitienda-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/Multitienda-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Multitienda-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/Multitienda-api/internal/interfaces/http"
	"github.com/jhoicas/Multitienda-api/pkg/config"
	"github.com/jhoicas/Multitienda-api/pkg/logger"
)

const version = "1.0.0"

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
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := log.WithContext(context.Background(), map[string]interface{}{"component": "bootstrap"})

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar OpenTelemetry")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	var stockCache inventory.StockCache = cache.NoopStockCache{}
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisStockCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, caché de stock deshabilitado")
			_ = rc.Close()
		} else {
			defer rc.Close()
			stockCache = rc
		}
	}

	ledger := inventory.NewLedger(stockCache)
	stockUC := inventory.NewStockUseCase(store.stock, store.products, store.stores, store.users, store.txRunner, ledger, stockCache)
	transferUC := inventory.NewTransferUseCase(store.txRunner, store.stores, store.products, store.users, store.transfers, ledger)
	saleUC := sales.NewSaleUseCase(store.txRunner, store.sales, store.stores, store.products, store.users, ledger)
	registerUC := register.NewRegisterUseCase(
		store.txRunner, store.registers, store.movements, store.sales, store.stores, store.users,
		cashier.Policy{IncludeMovements: cfg.Register.ExpectedIncludesMovements},
		infrapdf.NewClosingReportGenerator(),
	)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestContext(log))

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Version = version
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Multitienda API",
		}))
	}
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(docs.SwaggerInfo.ReadDoc())
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := store.ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": store.kind})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		StockUC:    stockUC,
		TransferUC: transferUC,
		SaleUC:     saleUC,
		RegisterUC: registerUC,
		JWTSecret:  cfg.JWT.Secret,
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
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}
