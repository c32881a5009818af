package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/alumnidesk/internal/app/auth"
	appControllers "github.com/yigit/alumnidesk/internal/app/controllers"
	"github.com/yigit/alumnidesk/internal/app/jobs"
	appMigrations "github.com/yigit/alumnidesk/internal/app/migrations"
	appRepos "github.com/yigit/alumnidesk/internal/app/repositories"
	appRoutes "github.com/yigit/alumnidesk/internal/app/routes"
	appServices "github.com/yigit/alumnidesk/internal/app/services"
	"github.com/yigit/alumnidesk/internal/config"
	"github.com/yigit/alumnidesk/internal/db"
	"github.com/yigit/alumnidesk/internal/docstore"
	appMiddleware "github.com/yigit/alumnidesk/internal/middleware"
	pkgAuth "github.com/yigit/alumnidesk/internal/pkg/auth"
	"github.com/yigit/alumnidesk/internal/pkg/email"
	"github.com/yigit/alumnidesk/internal/pkg/events"
	"github.com/yigit/alumnidesk/internal/pkg/filestorage"
	"github.com/yigit/alumnidesk/internal/pkg/helpers"
	"github.com/yigit/alumnidesk/internal/pkg/kv"
	"github.com/yigit/alumnidesk/internal/pkg/logger"
	"github.com/yigit/alumnidesk/internal/pkg/metrics"
	"github.com/yigit/alumnidesk/internal/pkg/websocket"
	"github.com/yigit/alumnidesk/internal/seed"
)

// DefaultConfigPath is used when CONFIG_PATH is not set
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

const kvPrefix = "alumnidesk:"

// Infrastructure holds the backends shared by the API server and the CLI
type Infrastructure struct {
	Store     docstore.Store
	KV        kv.Store
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Runner    *jobs.Runner
	Repos     *appRepos.Repositories

	postgres *db.PostgresDB
	logger   zerolog.Logger
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	*Infrastructure

	Hub              *websocket.Hub
	FileStorage      *filestorage.LocalStorage
	JWTService       *pkgAuth.JWTService
	AuthzService     *appAuth.AuthorizationService
	AuthService      *appServices.AuthService
	IngestionService appServices.IngestionService
	RequestService   appServices.RequestService
	BackfillService  appServices.BackfillService
	DashboardService appServices.DashboardService
	AlumniService    appServices.AlumniService
	EventService     appServices.EventService
	RosterService    appServices.RosterService
	AuthMiddleware   *appMiddleware.AuthMiddleware
	WSHandler        *websocket.Handler
	Controllers      *appRoutes.Controllers
	Logger           zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// An empty path falls back to CONFIG_PATH and then DefaultConfigPath.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = config.GetEnv("CONFIG_PATH", DefaultConfigPath)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// OpenInfrastructure connects the document store, key-value store and event
// publisher selected by cfg. m may be nil, in which case an isolated
// registry is used.
func OpenInfrastructure(ctx context.Context, cfg *config.Config, m *metrics.Metrics, lgr zerolog.Logger) (*Infrastructure, error) {
	if m == nil {
		m = metrics.NewIsolated()
	}
	infra := &Infrastructure{Metrics: m, logger: lgr}

	if err := infra.openStore(ctx, cfg); err != nil {
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		store, err := kv.NewRedisStore(kv.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}, kvPrefix)
		if err != nil {
			_ = infra.Close(ctx)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		infra.KV = store
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Sessions stored in redis")
	} else {
		infra.KV = kv.NewMemoryStore()
		lgr.Warn().Msg("No redis configured, sessions are kept in memory")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		infra.Publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, lgr)
		lgr.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Domain events published to kafka")
	} else {
		infra.Publisher = events.NewLogPublisher(lgr)
	}

	infra.Runner = jobs.NewRunner(m, lgr)
	infra.Repos = appRepos.NewRepositories(infra.Store)
	return infra, nil
}

func (i *Infrastructure) openStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		i.logger.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(ctx, cfg)
		if err != nil {
			i.logger.Error().Err(err).Msg("Failed to connect to database")
			return err
		}
		if err := runMigrations(ctx, database, cfg.Database.MigrationsDir, i.logger); err != nil {
			database.Close()
			return err
		}
		i.postgres = database
		i.Store = docstore.NewPostgresStore(database.Pool)

	case config.DriverMongo:
		database, err := db.NewMongoDB(ctx, cfg)
		if err != nil {
			i.logger.Error().Err(err).Msg("Failed to connect to mongo")
			return err
		}
		i.Store = docstore.NewMongoStore(database)

	case config.DriverMemory:
		i.logger.Warn().Msg("Using the in-memory document store, data is lost on exit")
		i.Store = docstore.NewMemoryStore()

	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	i.logger.Info().Str("driver", cfg.Database.Driver).Msg("Document store ready")
	return nil
}

func runMigrations(ctx context.Context, database *db.PostgresDB, dir string, lgr zerolog.Logger) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		lgr.Error().Str("path", dir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", dir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, dir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// Close stops the job runner and releases every backend
func (i *Infrastructure) Close(ctx context.Context) error {
	var errs []error
	if i.Runner != nil {
		if err := i.Runner.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("job runner: %w", err))
		}
	}
	if i.Publisher != nil {
		if err := i.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event publisher: %w", err))
		}
	}
	if i.KV != nil {
		if err := i.KV.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kv store: %w", err))
		}
	}
	if i.Store != nil {
		if err := i.Store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("document store: %w", err))
		}
	}
	if i.postgres != nil {
		i.postgres.Close()
	}
	return errors.Join(errs...)
}

// BuildDependencies initializes services, middleware and controllers on top
// of infra
func BuildDependencies(ctx context.Context, cfg *config.Config, infra *Infrastructure, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Infrastructure: infra, Logger: lgr}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Hub = websocket.NewHub(lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 8*time.Hour),
		GuestTokenExp:  helpers.ParseDuration(cfg.JWT.GuestTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.Email.Host,
		Port:      cfg.Email.Port,
		Username:  cfg.Email.Username,
		Password:  cfg.Email.Password,
		FromName:  cfg.Email.FromName,
		FromEmail: cfg.Email.FromEmail,
		UseTLS:    cfg.Email.UseTLS,
		BaseURL:   cfg.Server.PublicBaseURL,
	}, lgr)

	deps.AuthzService = appAuth.NewAuthorizationService(infra.Repos.AdminRepository)
	deps.AuthService = appServices.NewAuthService(infra.Repos.AdminRepository, deps.JWTService, infra.KV, mailer, lgr)
	deps.IngestionService = appServices.NewIngestionService(appServices.IngestionDeps{
		Repos:     infra.Repos,
		Sessions:  infra.KV,
		Files:     deps.FileStorage,
		Runner:    infra.Runner,
		Notifier:  deps.Hub,
		Publisher: infra.Publisher,
		Metrics:   infra.Metrics,
	}, IngestionOptions(cfg), lgr)
	deps.WSHandler = websocket.NewHandler(deps.Hub, appServices.IngestionTopicAuthorizer(deps.IngestionService), lgr)
	deps.RequestService = appServices.NewRequestService(infra.Repos, infra.Publisher, infra.Metrics, lgr)
	deps.BackfillService = appServices.NewBackfillService(infra.Repos, infra.Runner, deps.Hub, infra.Publisher, infra.Metrics, lgr)
	deps.DashboardService = appServices.NewDashboardService(infra.Repos)
	deps.AlumniService = appServices.NewAlumniService(infra.Repos)
	deps.EventService = appServices.NewEventService(infra.Repos, lgr)
	deps.RosterService = appServices.NewRosterService(infra.Repos, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthService, deps.AuthzService)

	deps.Controllers = &appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.AuthService, lgr),
		Ingestion: appControllers.NewIngestionController(deps.IngestionService),
		Request:   appControllers.NewRequestController(deps.RequestService),
		Dashboard: appControllers.NewDashboardController(deps.DashboardService),
		Alumni:    appControllers.NewAlumniController(deps.AlumniService),
		Event:     appControllers.NewEventController(deps.EventService, deps.RosterService),
		Job:       appControllers.NewJobController(infra.Runner, deps.BackfillService),
	}

	if err := seed.CreateDefaultData(ctx, cfg, infra.Repos, lgr); err != nil {
		// startup continues; staff can still register through the API
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return deps, nil
}

// IngestionOptions maps the ingestion config section
func IngestionOptions(cfg *config.Config) appServices.IngestionOptions {
	return appServices.IngestionOptions{
		SessionTTL:     helpers.ParseDuration(cfg.Ingestion.SessionTTL, 2*time.Hour),
		SpeakerRatio:   cfg.Ingestion.SpeakerRatio,
		VolunteerRatio: cfg.Ingestion.VolunteerRatio,
		LinkedURLBase:  cfg.Ingestion.LinkedURLBase,
		MaxUploadBytes: cfg.Ingestion.MaxUploadBytes,
	}
}

// NewMetrics registers the collectors on the default prometheus registry
func NewMetrics() *metrics.Metrics {
	return metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Metrics(deps.Metrics),
		appMiddleware.ErrorHandler(),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.WSHandler, deps.Metrics)

	return router, nil
}
