package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	sharedOnce    sync.Once
	sharedInitErr error
	sharedPool    *pgxpool.Pool
	sharedDBURL   string
)

const sharedContainerName = "skillstage-storage-db"

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedPool != nil {
		sharedPool.Close()
	}
	os.Exit(code)
}

// setupPostgres returns a pool against a shared disposable Postgres with the
// schema applied and all tables truncated. Skips when Docker is unavailable.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		// testcontainers panics (rather than returning an error) when no
		// Docker endpoint exists at all; fold that into the skip path.
		defer func() {
			if r := recover(); r != nil {
				sharedInitErr = fmt.Errorf("docker unavailable: %v", r)
			}
		}()

		// Disable ryuk so shared-container reuse survives between packages.
		_ = os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

		container, err := postgres.Run(
			ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("skillstage"),
			postgres.WithUsername("skillstage"),
			postgres.WithPassword("skillstage_dev"),
			testcontainers.WithReuseByName(sharedContainerName),
		)
		if err != nil {
			sharedInitErr = err
			return
		}

		dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedDBURL = dbURL

		migrationsPath := filepath.Join(projectRoot(), DefaultMigrationsPath)
		if err := migrateWithRetry(dbURL, migrationsPath, 10*time.Second); err != nil {
			sharedInitErr = err
			return
		}

		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedPool = pool
	})

	if sharedInitErr != nil {
		t.Skipf("postgres container unavailable: %v", sharedInitErr)
	}

	resetDatabase(t, sharedPool)
	return sharedPool
}

func resetDatabase(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, `TRUNCATE modules, events, users CASCADE`); err != nil {
		t.Fatalf("reset database: %v", err)
	}
}

func migrateWithRetry(dbURL, migrationsPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var err error
	for {
		err = MigrateUp(dbURL, migrationsPath)
		if err == nil || time.Now().After(deadline) {
			return err
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func projectRoot() string {
	_, file, _, _ := runtime.Caller(0)
	// internal/storage/postgres -> repo root
	return filepath.Join(filepath.Dir(file), "..", "..", "..")
}
