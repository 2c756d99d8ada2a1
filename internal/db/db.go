package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cv-portfolio/internal/config"
)

// ErrDatabaseNotConfigured se devuelve cuando DATABASE_URL esta vacio.
var ErrDatabaseNotConfigured = errors.New("database url not configured")

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, ErrDatabaseNotConfigured
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Los analisis son pocos y pesados; no hace falta un pool grande.
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

// EnsureSchema crea las tablas de resultados si no existen.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS cv_analyses (
			id          UUID PRIMARY KEY,
			model_id    TEXT NOT NULL,
			confidence  DOUBLE PRECISION NOT NULL,
			result      JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS portfolios (
			id            UUID PRIMARY KEY,
			analysis_id   UUID NULL REFERENCES cv_analyses(id) ON DELETE SET NULL,
			quality_score DOUBLE PRECISION NOT NULL,
			content       JSONB NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		);
	`
	_, err := pool.Exec(ctx, ddl)
	return err
}
