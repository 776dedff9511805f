package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// migrationLockID es la key de pg_advisory_lock compartida por todas las réplicas.
const migrationLockID int64 = 0x696e74726f // "intro"

// migrationLockWait acota la espera por el lock de otra réplica.
const migrationLockWait = 30 * time.Second

// lockConn es la parte de *pgxpool.Conn que usa el advisory lock.
type lockConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RunMigrations aplica los *_up.sql de fsys que aún no figuran en
// schema_migrations. Toma un advisory lock para que dos réplicas no migren a la vez.
// Devuelve cuántos scripts se aplicaron.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) (int, error) {
	files, err := upFiles(fsys)
	if err != nil {
		return 0, err
	}

	// lock, scripts y unlock en la MISMA conexión: el lock es de sesión
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var applied int
	err = withMigrationLock(ctx, conn, migrationLockWait, func(ctx context.Context) error {
		n, err := applyMigrations(ctx, conn, fsys, files)
		applied = n
		return err
	})
	return applied, err
}

// withMigrationLock toma el advisory lock en conn, ejecuta fn y lo libera en
// la misma conexión.
func withMigrationLock(ctx context.Context, conn lockConn, wait time.Duration, fn func(ctx context.Context) error) error {
	log := logger.From(ctx).With(logger.Component("store.pg"), logger.Op("withMigrationLock"))

	lctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	var got bool
	if err := conn.QueryRow(lctx, "SELECT pg_try_advisory_lock($1)", migrationLockID).Scan(&got); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	if !got {
		log.Info("migration lock held by another replica, waiting")
		if _, err := conn.Exec(lctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
	}
	defer func() {
		if _, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			log.Warn("failed to release migration lock", logger.Err(err))
		}
	}()

	return fn(ctx)
}

// applyMigrations corre cada script pendiente junto con su fila en
// schema_migrations dentro de una transacción.
func applyMigrations(ctx context.Context, conn *pgxpool.Conn, fsys fs.FS, files []string) (int, error) {
	log := logger.From(ctx).With(logger.Component("store.pg"), logger.Op("RunMigrations"))

	if _, err := conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name       TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied int
	for _, name := range files {
		var exists bool
		if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&exists); err != nil {
			return applied, err
		}
		if exists {
			continue
		}
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, err
		}
		if err := applyOne(ctx, conn, name, string(b)); err != nil {
			return applied, err
		}
		log.Info("migration applied", logger.Key(name))
		applied++
	}
	return applied, nil
}

func applyOne(ctx context.Context, conn *pgxpool.Conn, name, script string) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, script); err != nil {
		return fmt.Errorf("exec %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

func upFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), "_up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
