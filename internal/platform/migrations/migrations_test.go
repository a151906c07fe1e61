package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/lib/pq"
)

func TestApplyExecutesAllMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS groups").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS posts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS comments").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS follows").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sessions").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Apply(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(".*").WillReturnError(sql.ErrConnDone)

	err = Apply(context.Background(), db)
	if err == nil || !strings.Contains(err.Error(), "000002_create_groups.up.sql") {
		t.Fatalf("expected failure naming the groups migration, got %v", err)
	}
}

func TestEveryUpHasDown(t *testing.T) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		t.Fatalf("read embedded dir: %v", err)
	}
	seen := map[string]int{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			seen[strings.TrimSuffix(name, ".up.sql")]++
		case strings.HasSuffix(name, ".down.sql"):
			seen[strings.TrimSuffix(name, ".down.sql")]++
		default:
			t.Fatalf("unexpected file %s", name)
		}
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 migrations, got %d", len(seen))
	}
	for version, n := range seen {
		if n != 2 {
			t.Fatalf("migration %s missing up or down", version)
		}
	}
}

func TestUpAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres migration test")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("up: %v", err)
	}
	if err := Up(db); err != nil {
		t.Fatalf("second up should be a no-op: %v", err)
	}
	v, dirty, err := Version(db)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 6 || dirty {
		t.Fatalf("expected clean version 6, got %d dirty=%v", v, dirty)
	}
}
