package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/repository/dao"
)

// OpenTestDB spins up a throwaway postgres container and returns a migrated
// connection. Tests calling it are skipped when no docker daemon is
// reachable, so the unit suite still runs everywhere.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("skipping integration test, docker unavailable: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("skipping integration test, docker unavailable: %v", err)
	}

	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_USER=test",
		"POSTGRES_PASSWORD=test",
		"POSTGRES_DB=test",
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if purgeErr := pool.Purge(resource); purgeErr != nil {
			t.Logf("failed to purge postgres container: %v", purgeErr)
		}
	})

	dsn := fmt.Sprintf("host=localhost port=%v user=test password=test dbname=test sslmode=disable",
		resource.GetPort("5432/tcp"))

	var db *gorm.DB
	pool.MaxWait = 60 * time.Second
	if err = pool.Retry(func() error {
		var openErr error
		db, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if openErr != nil {
			return openErr
		}

		sqlDB, openErr := db.DB()
		if openErr != nil {
			return openErr
		}

		return sqlDB.Ping()
	}); err != nil {
		t.Fatalf("failed to connect to postgres container: %v", err)
	}

	if err = dao.InitTables(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}
