// Package testing holds shared helpers for roomstat tests: a throwaway
// PostgreSQL database per test and in-memory fakes of the store interfaces.
package testing

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/roomstat/internal/db"
	"github.com/vvka-141/roomstat/internal/db/manager"
	"github.com/vvka-141/roomstat/internal/testinfra"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// ConnEnvVar points tests at an existing server instead of a container.
const ConnEnvVar = "ROOMSTAT_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartPostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the maintenance connection string.
// Priority: ROOMSTAT_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(ConnEnvVar); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", ConnEnvVar, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// TestDatabase is an empty database created for one test.
type TestDatabase struct {
	Name        string
	Config      *roomstat.ConnectionConfig
	Pool        *pgxpool.Pool
	Conn        roomstat.DBConnection
	Maintenance roomstat.DBConnection
}

// NewTestDatabase creates a uniquely named database and drops it when the
// test finishes. Skips when no server is available.
func NewTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	connString := RequireDatabase(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	maintenanceCfg, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", ConnEnvVar, err)
	}

	maintenancePool, err := db.NewStandardConnector(maintenanceCfg).Connect(ctx)
	if err != nil {
		t.Fatalf("Failed to connect to maintenance database: %v", err)
	}
	maintenance := db.NewPoolAdapter(maintenancePool)

	name := "roomstat_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	mgr := manager.New()
	if err := mgr.Create(ctx, maintenance, name); err != nil {
		maintenancePool.Close()
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	targetCfg := maintenanceCfg.WithDatabase(name)
	pool, err := db.NewStandardConnector(targetCfg).Connect(ctx)
	if err != nil {
		maintenancePool.Close()
		t.Fatalf("Failed to connect to test database %s: %v", name, err)
	}

	t.Cleanup(func() {
		pool.Close()
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := mgr.Drop(cleanupCtx, maintenance, name); err != nil {
			t.Logf("Warning: Failed to drop database %s: %v", name, err)
		}
		maintenancePool.Close()
	})

	return &TestDatabase{
		Name:        name,
		Config:      targetCfg,
		Pool:        pool,
		Conn:        db.NewPoolAdapter(pool),
		Maintenance: maintenance,
	}
}

// CountRows returns SELECT count(*) for a table of the test database.
func (d *TestDatabase) CountRows(t *testing.T, table string) int64 {
	t.Helper()

	var n int64
	if err := d.Pool.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
