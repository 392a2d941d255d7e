package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/viper"
)

// uniqueViolation is the SQLSTATE of unique constraint violations.
const uniqueViolation = "23505"

// Querier is implemented by both the pool and a transaction,
// so repositories work the same inside and outside a unit of work.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Client represents a Postgres client.
type Client struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying connection pool.
func (p *Client) Pool() *pgxpool.Pool {
	return p.pool
}

// Close closes the database connection for graceful shutdown.
func (p *Client) Close() {
	p.pool.Close()
}

// MustNewClient creates a new Postgres client and applies migrations.
// Connection settings are read from <envPrefix>_PG_HOST, _PG_PORT, _PG_USER, _PG_PASSWORD and _PG_DB.
func MustNewClient(envPrefix string) *Client {
	port := os.Getenv(envPrefix + "_PG_PORT")
	if port == "" {
		port = "5432"
	}
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv(envPrefix+"_PG_HOST"),
		port,
		os.Getenv(envPrefix+"_PG_USER"),
		os.Getenv(envPrefix+"_PG_PASSWORD"),
		os.Getenv(envPrefix+"_PG_DB"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		panic(err)
	}
	if maxConns := viper.GetInt32("postgres.max_conns"); maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		panic(err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		panic(err)
	}

	// Run migrations using goose with stdlib adapter
	if err := goose.SetDialect("postgres"); err != nil {
		panic(err)
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := goose.Up(db, viper.GetString("postgres.migrations_path")); err != nil &&
		!errors.Is(err, goose.ErrNoNextVersion) {
		panic(err)
	}

	return &Client{
		pool: pool,
	}
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
