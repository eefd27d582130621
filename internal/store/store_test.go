package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

type recordingExecer struct {
	statements []string
	failOn     string
}

func (r *recordingExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if r.failOn != "" && strings.Contains(sql, r.failOn) {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	r.statements = append(r.statements, sql)
	return pgconn.CommandTag{}, nil
}

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestMigrateRunsUpFilesInOrder(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"0002_tags.up.sql":     "second",
		"0001_movies.up.sql":   "first",
		"0001_movies.down.sql": "drop",
	})
	exec := &recordingExecer{}

	n, err := Migrate(context.Background(), exec, dir)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if n != 2 {
		t.Fatalf("applied = %d, want 2", n)
	}
	if strings.Join(exec.statements, ",") != "first,second" {
		t.Fatalf("statements = %v", exec.statements)
	}
}

func TestMigrateErrors(t *testing.T) {
	if _, err := Migrate(context.Background(), &recordingExecer{}, t.TempDir()); err == nil {
		t.Fatalf("empty directory should fail")
	}

	dir := writeMigrations(t, map[string]string{
		"0001_a.up.sql": "ok",
		"0002_b.up.sql": "broken",
	})
	n, err := Migrate(context.Background(), &recordingExecer{failOn: "broken"}, dir)
	if err == nil || !strings.Contains(err.Error(), "0002_b.up.sql") {
		t.Fatalf("error = %v, want it to name the failing file", err)
	}
	if n != 1 {
		t.Fatalf("applied before failure = %d, want 1", n)
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var s *Store
	s.Close()
	if s.Stats() != nil {
		t.Fatalf("nil store should have no stats")
	}
	if err := s.HealthCheck(context.Background()); err == nil {
		t.Fatalf("nil store health check should fail")
	}
	if _, err := s.ApplyMigrations(context.Background(), "db/migrations"); err == nil {
		t.Fatalf("nil store migrations should fail")
	}
}
