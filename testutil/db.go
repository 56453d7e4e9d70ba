// Package testutil holds the Postgres helpers shared by the snapshot store
// tests. Everything here reads TEST_DATABASE_URL and skips when it is unset.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // "pgx" driver for database/sql

	"github.com/lbc24/quest-calendar/migrations"
)

const dsnEnv = "TEST_DATABASE_URL"

// NewPool connects to the test database. The pool is closed on cleanup.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewTx begins a transaction that is rolled back on cleanup, so dataset
// snapshots saved by one test never leak into the next. The snapshot table
// starts empty inside the transaction.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	ctx := context.Background()

	tx, err := NewPool(t).Begin(ctx)
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(ctx) })

	if _, err := tx.Exec(ctx, `DELETE FROM dataset_snapshots`); err != nil {
		t.Fatalf("testutil.NewTx: clear snapshots: %v", err)
	}
	return tx
}

// NewSQLDB opens the test database through database/sql, which goose needs.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := openSQL(dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// MigrateForMain brings the test database schema up to date. It is meant
// for TestMain, where there is no *testing.T, and does nothing when
// TEST_DATABASE_URL is unset.
func MigrateForMain(ctx context.Context) error {
	url := os.Getenv(dsnEnv)
	if url == "" {
		return nil
	}
	db, err := openSQL(url)
	if err != nil {
		return fmt.Errorf("testutil.MigrateForMain: %w", err)
	}
	defer db.Close()

	if _, err := migrations.Up(ctx, db); err != nil {
		return fmt.Errorf("testutil.MigrateForMain: %w", err)
	}
	return nil
}

func openSQL(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

func dsn(t *testing.T) string {
	t.Helper()
	url := os.Getenv(dsnEnv)
	if url == "" {
		t.Skip(dsnEnv + " not set; skipping Postgres test")
	}
	return url
}
