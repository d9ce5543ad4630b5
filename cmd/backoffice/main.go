package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	backoffice "github.com/goliatone/go-backoffice"
	"github.com/goliatone/go-backoffice/internal/logging/gologger"
	"github.com/uptrace/bun"
)

func main() {
	cfg := configFromEnv()

	provider, err := gologger.NewProvider(gologger.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Focus:     cfg.Logging.Focus,
	})
	if err != nil {
		log.Fatalf("initialise logging: %v", err)
	}
	logger := provider.GetLogger("backoffice")

	module, err := backoffice.New(cfg, backoffice.WithLoggerProvider(provider))
	if err != nil {
		log.Fatalf("initialise backoffice: %v", err)
	}
	defer module.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := applyMigrations(ctx, module.DB(), cfg.Storage.Driver); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	mux := http.NewServeMux()
	if err := module.RegisterRoutes(mux); err != nil {
		log.Fatalf("register routes: %v", err)
	}

	addr := envOr("BACKOFFICE_ADDR", ":8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin API listening", "addr", addr, "base_path", cfg.BasePath)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}
}

func configFromEnv() backoffice.Config {
	cfg := backoffice.DefaultConfig()

	cfg.Storage.Driver = envOr("BACKOFFICE_DB_DRIVER", cfg.Storage.Driver)
	cfg.Storage.DSN = envOr("BACKOFFICE_DB_DSN", cfg.Storage.DSN)
	cfg.Auth.SigningKey = os.Getenv("BACKOFFICE_SIGNING_KEY")
	cfg.Auth.Issuer = envOr("BACKOFFICE_ISSUER", cfg.Auth.Issuer)
	cfg.Logging.Level = envOr("BACKOFFICE_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = envOr("BACKOFFICE_LOG_FORMAT", cfg.Logging.Format)

	if addr := os.Getenv("BACKOFFICE_REDIS_ADDR"); addr != "" {
		cfg.Cache.Enabled = true
		cfg.Cache.RedisAddr = addr
		cfg.Cache.Password = os.Getenv("BACKOFFICE_REDIS_PASSWORD")
	}

	return cfg
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// applyMigrations runs the embedded up migrations in lexical order. The files
// carry Postgres types; SQLite accepts them through its loose type affinity,
// except jsonb casts which get stripped.
func applyMigrations(ctx context.Context, db *bun.DB, driver string) error {
	migrations := backoffice.GetMigrationsFS()

	entries, err := fs.ReadDir(migrations, "data/sql/migrations")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := fs.ReadFile(migrations, "data/sql/migrations/"+name)
		if err != nil {
			return err
		}
		statement := string(raw)
		if driver == "sqlite" {
			statement = strings.ReplaceAll(statement, "::jsonb", "")
		}
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}
