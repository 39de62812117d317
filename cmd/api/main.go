package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/dolaglobo/mmf-api/internal/adapter/handler"
	"github.com/dolaglobo/mmf-api/internal/adapter/middleware"
	"github.com/dolaglobo/mmf-api/internal/adapter/storage"
	"github.com/dolaglobo/mmf-api/internal/core/admins"
	"github.com/dolaglobo/mmf-api/internal/core/approval"
	"github.com/dolaglobo/mmf-api/internal/core/audit"
	"github.com/dolaglobo/mmf-api/internal/core/config"
	"github.com/dolaglobo/mmf-api/internal/core/interest"
	"github.com/dolaglobo/mmf-api/internal/core/ledger"
	"github.com/dolaglobo/mmf-api/internal/core/statement"
	"github.com/dolaglobo/mmf-api/internal/core/wallet"
	"github.com/dolaglobo/mmf-api/internal/core/worker"
)

func main() {
	// 1. Load Config
	cfg := config.LoadConfig()

	// 2. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 3. Connect to Database
	dbPool, err := storage.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("❌ Database connection failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := storage.Migrate(ctx, dbPool); err != nil {
		cancel()
		slog.Error("❌ Migrations failed", "error", err)
		os.Exit(1)
	}
	cancel()

	// 4. Setup Repo & Services
	repo := storage.NewRepository(dbPool)

	walletSvc := wallet.NewService(repo, cfg.MinAmount, cfg.PaybillNumber, cfg.AnnualRate)
	ledgerSvc := ledger.NewService(repo)
	auditSvc := audit.NewService(repo)
	interestEngine := interest.NewEngine(repo, auditSvc, cfg.AnnualRate)
	gateway := approval.NewGateway(repo, cfg.WebhookURL)
	statementSvc := statement.NewService(repo, cfg.WebhookURL)
	adminSvc := admins.NewService(repo)

	handlers := &handler.Handlers{
		Auth:        &handler.AuthHandler{Wallet: walletSvc, Secret: cfg.JWTSecret},
		Account:     &handler.AccountHandler{Wallet: walletSvc},
		MobileMoney: &handler.MobileMoneyHandler{Wallet: walletSvc},
		Statement:   &handler.StatementHandler{Statements: statementSvc},
		Approval:    &handler.ApprovalHandler{Gateway: gateway},
		Interest:    &handler.InterestHandler{Engine: interestEngine},
		Admin: &handler.AdminHandler{
			Admins:       adminSvc,
			Ledger:       ledgerSvc,
			Transactions: repo,
			Secret:       cfg.JWTSecret,
		},
		Audit: &handler.AuditHandler{Audit: auditSvc},

		Secret:        cfg.JWTSecret,
		AdminLoader:   adminSvc,
		RequestGuards: []fiber.Handler{middleware.Idempotency(dbPool)},
	}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	// 6. Routes
	handlers.Register(app)

	// 7. Start Worker
	worker.StartNotificationWorker(dbPool)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("🚀 Server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("🛑 Shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	dbPool.Close()
	slog.Info("✅ Database connection closed")
	slog.Info("👋 Server exited successfully")
}
