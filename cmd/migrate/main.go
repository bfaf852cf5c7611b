package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/trigo/internal/adapters/postgres"
	"github.com/samirrijal/trigo/internal/pkg/config"
)

const migrationsDir = "migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down> [steps]")
	}

	cfg, err := config.Load("trigo-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if _, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		log.Fatalf("create schema_migrations: %v", err)
	}

	switch os.Args[1] {
	case "up":
		err = up(ctx, db)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if _, err := fmt.Sscan(os.Args[2], &steps); err != nil || steps < 1 {
				log.Fatalf("steps must be a positive integer, got %q", os.Args[2])
			}
		}
		err = down(ctx, db, steps)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatal(err)
	}
}

// versions lists migration versions (the file name before .up.sql) in order.
func versions() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, strings.TrimSuffix(filepath.Base(f), ".up.sql"))
	}
	sort.Strings(out)
	return out, nil
}

func applied(ctx context.Context, db *postgres.DB) (map[string]bool, error) {
	rows, err := db.Pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	vs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(vs))
	for _, v := range vs {
		out[v] = true
	}
	return out, nil
}

func up(ctx context.Context, db *postgres.DB) error {
	all, err := versions()
	if err != nil {
		return err
	}
	done, err := applied(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}

	n := 0
	for _, v := range all {
		if done[v] {
			continue
		}
		if err := run(ctx, db, v, "up", `INSERT INTO schema_migrations (version) VALUES ($1)`); err != nil {
			return err
		}
		fmt.Printf("UP    %s\n", v)
		n++
	}
	log.Printf("%d migrations applied", n)
	return nil
}

func down(ctx context.Context, db *postgres.DB, steps int) error {
	all, err := versions()
	if err != nil {
		return err
	}
	done, err := applied(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}

	for i := len(all) - 1; i >= 0 && steps > 0; i-- {
		v := all[i]
		if !done[v] {
			continue
		}
		if err := run(ctx, db, v, "down", `DELETE FROM schema_migrations WHERE version = $1`); err != nil {
			return err
		}
		fmt.Printf("DOWN  %s\n", v)
		steps--
	}
	return nil
}

// run executes one migration file and records it in the same transaction.
func run(ctx context.Context, db *postgres.DB, version, direction, record string) error {
	path := filepath.Join(migrationsDir, version+"."+direction+".sql")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(data)); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	if _, err := tx.Exec(ctx, record, version); err != nil {
		return fmt.Errorf("record %s: %w", version, err)
	}
	return tx.Commit(ctx)
}
