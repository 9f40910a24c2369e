package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	fileledger "github.com/giftflow/giftflow-api/internal/adapters/file/ledgerstore"
	"github.com/giftflow/giftflow-api/internal/adapters/httpapi"
	memledger "github.com/giftflow/giftflow-api/internal/adapters/memory/ledgerstore"
	"github.com/giftflow/giftflow-api/internal/adapters/postgres"
	pgledger "github.com/giftflow/giftflow-api/internal/adapters/postgres/ledgerstore"
	sqliteledger "github.com/giftflow/giftflow-api/internal/adapters/sqlite/ledgerstore"
	"github.com/giftflow/giftflow-api/internal/app/admin"
	"github.com/giftflow/giftflow-api/internal/app/gifts"
	"github.com/giftflow/giftflow-api/internal/app/ledgerview"
	"github.com/giftflow/giftflow-api/internal/app/reimbursements"
	"github.com/giftflow/giftflow-api/internal/domain"
	platformclock "github.com/giftflow/giftflow-api/internal/platform/clock"
	"github.com/giftflow/giftflow-api/internal/platform/config"
	"github.com/giftflow/giftflow-api/internal/platform/logging"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logging.New("info").Fatalf("invalid config: %v", err)
	}
	log := logging.New(cfg.LogLevel)

	var (
		store   ledgerstore.Store
		cleanup func()
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		cleanup = pool.Close
		store = pgledger.NewStore(pool)
	case config.StorageSQLite:
		s, err := sqliteledger.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("sqlite: %v", err)
		}
		cleanup = func() { _ = s.Close() }
		store = s
	case config.StorageFile:
		store = fileledger.NewStore(cfg.DataFile)
	default:
		store = memledger.NewStore()
	}
	if cleanup != nil {
		defer cleanup()
	}

	ledger := ledgerstore.NewHandle(store)
	clk := platformclock.NewSystemClock()

	api := httpapi.NewServer(
		gifts.NewService(ledger, clk),
		reimbursements.NewService(ledger),
		ledgerview.NewService(ledger, clk),
		admin.NewService(ledger, clk),
		log,
	)

	var authMW func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case config.AuthModeDev:
		log.Warn("AUTH_MODE=dev: credentials are not checked")
		authMW = httpapi.NewDevAuthMiddleware(ledger, domain.MemberID(cfg.DevMemberID), log)
	default:
		authMW = httpapi.NewAuthMiddleware(ledger, log)
	}

	metrics := httpapi.NewMetrics(prometheus.DefaultRegisterer)
	handler := httpapi.NewRouter(api, authMW, metrics, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("api listening on :%s (storage=%s auth=%s)", cfg.Port, cfg.Storage, cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
