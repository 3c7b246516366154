package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hippocampus-app/hippocampus/internal/common"
)

// Open builds a Store for the configured driver and applies the schema.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "postgres", "":
		return openPostgres(ctx, cfg, logger)
	case "sqlite":
		return openSQLite(ctx, cfg.DSN, logger)
	default:
		return nil, common.NewAppError("CONFIG_ERROR",
			fmt.Sprintf("unsupported database driver %q", cfg.Driver), common.ErrInvalidInput)
	}
}

func openPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (Store, error) {
	logger.Info("db.connect", "driver", "postgres")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("db.connect.failed", "error", err)
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "hippocampus"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("db.connect.failed", "error", err)
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := &PostgresStore{pool: pool, logger: logger}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("db.connect.ok", "driver", "postgres")
	return store, nil
}

// HealthCheck pings the pool to catch DSN or network issues early.
func HealthCheck(ctx context.Context, s Store, timeout time.Duration, logger *slog.Logger) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	type pinger interface {
		Ping(ctx context.Context) error
	}
	if p, ok := s.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			logger.Error("db.ping.failed", "error", err)
			return err
		}
	}
	logger.Debug("db.ping.ok")
	return nil
}
