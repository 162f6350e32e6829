// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	router "yieldledger/internal/api"
	"yieldledger/internal/api/handler"
	"yieldledger/internal/audit"
	"yieldledger/internal/config"
	"yieldledger/internal/metrics"
	"yieldledger/internal/repository"
	"yieldledger/internal/repository/postgres"
	"yieldledger/internal/service"
	"yieldledger/internal/settings"
	"yieldledger/internal/util"
	"yieldledger/migrations"
	"yieldledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config  *config.AppConfig
	Logger  *slog.Logger
	DB      *sqlx.DB
	Metrics *metrics.Metrics

	// Repositories
	UserRepository        repository.UserRepository
	TransactionRepository repository.TransactionRepository
	InvestmentRepository  repository.InvestmentRepository
	DepositRepository     repository.DepositRepository
	WithdrawalRepository  repository.WithdrawalRepository
	ReferralRepository    repository.ReferralRepository
	SettingsRepository    repository.SettingsRepository
	StatsRepository       repository.StatsRepository

	// Services
	Settings    settings.Provider
	AuditSink   audit.Sink
	Journal     service.Journal
	Ledger      service.Ledger
	Referrals   service.ReferralService
	Investments service.InvestmentService
	Distributor service.ProfitDistributor
	Deposits    service.DepositService
	Withdrawals service.WithdrawalService
	Users       service.UserService
	Stats       service.StatsService

	// HTTP API
	HTTPHandler http.Handler

	redis    *redis.Client
	amqpSink *audit.AMQPSink
	amqpConn *amqp.Connection
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{Logger: util.GetLogger()}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if cfg.RunMigrations {
		if err := db.RunMigrations(app.DB, migrations.Files); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		app.Logger.Info("Database migrations applied.")
	}

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.InvestmentRepository = postgres.NewInvestmentRepository()
	app.DepositRepository = postgres.NewDepositRepository()
	app.WithdrawalRepository = postgres.NewWithdrawalRepository()
	app.ReferralRepository = postgres.NewReferralRepository()
	app.SettingsRepository = postgres.NewSettingsRepository()
	app.StatsRepository = postgres.NewStatsRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Metrics, settings and audit
	app.Metrics = metrics.Registry(cfg.MetricsNamespace)

	var provider settings.Provider = settings.NewDBProvider(app.SettingsRepository, app.DB, app.Logger, app.Metrics)
	if cfg.Redis.Addr != "" {
		app.redis = settings.NewRedisClient(cfg.Redis)
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.Logger.Warn("Settings cache unreachable, reading settings from the database", "addr", cfg.Redis.Addr, "error", err)
		}
		provider = settings.NewCached(app.redis, provider, cfg.SettingsTTL, app.Logger, app.Metrics)
	}
	app.Settings = provider

	sinks := audit.MultiSink{audit.NewLogSink(app.Logger)}
	if cfg.AMQPURL != "" {
		sink, conn, err := audit.DialAMQP(cfg.AMQPURL, cfg.AuditQueue, cfg.AuditBuffer, app.Logger, app.Metrics)
		if err != nil {
			return fmt.Errorf("failed to connect to audit queue: %w", err)
		}
		app.amqpSink, app.amqpConn = sink, conn
		sinks = append(sinks, sink)
	}
	app.AuditSink = sinks

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	uow := db.NewUnitOfWork(app.DB, db.BeginTx, db.CommitTx, db.RollbackTx)

	app.Journal = service.NewJournal(uow, app.DB, app.TransactionRepository, app.Metrics, app.Logger)
	app.Ledger = service.NewLedger(uow, app.DB, app.UserRepository, app.TransactionRepository, app.Journal, app.AuditSink, app.Metrics, app.Logger)
	app.Referrals = service.NewReferralService(uow, app.DB, app.UserRepository, app.ReferralRepository, app.Ledger, app.Settings, app.AuditSink, app.Metrics, app.Logger)
	app.Investments = service.NewInvestmentService(uow, app.DB, app.InvestmentRepository, app.Ledger, app.Referrals, app.Settings, app.AuditSink, app.Metrics, app.Logger)
	app.Distributor = service.NewProfitDistributor(uow, app.DB, app.InvestmentRepository, app.Investments, app.Ledger, app.Settings, app.AuditSink, app.Metrics, app.Logger, cfg.DistributionBatch)
	app.Deposits = service.NewDepositService(uow, app.DB, app.DepositRepository, app.Ledger, app.Journal, nil, app.AuditSink, app.Metrics, app.Logger, cfg.DepositExpiry)
	app.Withdrawals = service.NewWithdrawalService(uow, app.DB, app.WithdrawalRepository, app.Ledger, app.Journal, app.Settings, app.AuditSink, app.Metrics, app.Logger)
	app.Users = service.NewUserService(uow, app.DB, app.UserRepository, app.Referrals, app.Ledger, app.Settings, app.AuditSink, app.Logger)
	app.Stats = service.NewStatsService(app.DB, app.StatsRepository, app.Ledger)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	app.HTTPHandler = router.NewRouter(router.Handlers{
		Users:       handler.NewUserHandler(app.Users, app.Journal, app.Referrals, app.Logger),
		Investments: handler.NewInvestmentHandler(app.Investments, app.Logger),
		Payments:    handler.NewPaymentHandler(app.Deposits, app.Withdrawals, app.Logger),
		Admin:       handler.NewAdminHandler(app.Distributor, app.Deposits, app.Stats, app.Logger),
	}, app.Metrics, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.amqpSink != nil {
		if err := app.amqpSink.Close(); err != nil {
			app.Logger.Error("Failed to drain audit queue", "error", err)
		}
	}
	if app.amqpConn != nil {
		if err := app.amqpConn.Close(); err != nil {
			app.Logger.Error("Failed to close audit queue connection", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.Logger.Error("Failed to close settings cache", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
