package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appanalytics "github.com/jhoicas/almoxtrack-api/internal/application/analytics"
	"github.com/jhoicas/almoxtrack-api/internal/application/auth"
	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/application/ports"
	"github.com/jhoicas/almoxtrack-api/internal/application/usecase"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
	"github.com/jhoicas/almoxtrack-api/internal/infrastructure/memory"
	"github.com/jhoicas/almoxtrack-api/internal/infrastructure/messaging"
	infrapdf "github.com/jhoicas/almoxtrack-api/internal/infrastructure/pdf"
	"github.com/jhoicas/almoxtrack-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almoxtrack-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/almoxtrack-api/internal/interfaces/http"
	"github.com/jhoicas/almoxtrack-api/pkg/config"
	"github.com/jhoicas/almoxtrack-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// stores repositorios y runner transaccional del driver elegido.
type stores struct {
	products  repository.ProductRepository
	movements repository.MovementRepository
	users     repository.UserRepository
	txRunner  inventory.TxRunner
	close     func()
}

func main() {
	ctx := context.Background()
	cfg, err := config.LoadWithSecrets(ctx)
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
		Str("store", cfg.DB.Driver).
		Msg("iniciando aplicación")

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	// Eventos de movimientos: opcionales, solo con RABBITMQ_URL.
	var publisher inventory.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		rp, err := messaging.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer rp.Close()
		publisher = rp
	}

	uploader, err := newUploader(ctx, cfg.Upload)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar carga de imágenes")
	}

	ledger := inventory.NewLedgerUseCase(st.txRunner, publisher, log.Component("ledger"))
	productUC := usecase.NewProductUseCase(st.products, ledger, st.txRunner, uploader, usecase.ProductOptionsFrom(cfg.Inventory))
	movementQry := inventory.NewMovementQueryUseCase(st.movements)
	termUC := inventory.NewResponsibilityTermUseCase(st.products, st.movements, infrapdf.NewMarotoTermGenerator(cfg.App.Name))
	dashboardUC := appanalytics.NewDashboardUseCase(st.products, st.movements)
	authUC := auth.NewAuthUseCase(st.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.DB.Driver == "memory" {
		created, err := authUC.EnsureAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador en memoria")
		}
		log.Info().Str("email", cfg.Seed.AdminEmail).Bool("created", created).Msg("administrador inicial")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    6 << 20,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	// Swagger UI en http://localhost:<port>/docs cuando existe el archivo generado
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "AlmoxTrack API",
		}))
	}

	if cfg.Upload.Driver == "local" {
		app.Static(cfg.Upload.PublicURL, cfg.Upload.Dir)
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(st.users),
		ProductUC:   productUC,
		Ledger:      ledger,
		MovementQry: movementQry,
		TermUC:      termUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log.Component("http"),
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

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.DB.Driver == "memory" {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &stores{
			products:  s.Products(),
			movements: s.Movements(),
			users:     s.Users(),
			txRunner:  s,
			close:     func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema de base de datos verificado")
	}
	return &stores{
		products:  postgres.NewProductRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		users:     postgres.NewUserRepository(pool),
		txRunner:  postgres.NewTxRunner(pool),
		close:     pool.Close,
	}, nil
}

func newUploader(ctx context.Context, cfg config.UploadConfig) (ports.ImageUploader, error) {
	if cfg.Driver == "s3" {
		u, err := storage.NewS3Uploader(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3URL)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	u, err := storage.NewLocalUploader(cfg.Dir, cfg.PublicURL)
	if err != nil {
		return nil, err
	}
	return u, nil
}
