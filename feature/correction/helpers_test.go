package correction

import (
	"fmt"
	"strings"
	"testing"

	"db-corrector/core/database"
	"db-corrector/core/reconcile"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupDatabase creates a shared in-memory SQLite database that stays alive for the test.
func setupDatabase(t *testing.T, name string, statements ...string) (database.Config, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), name)
	cfg := database.Config{Driver: database.DriverSQLite, Name: dsn}

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}
	return cfg, db
}

// setupService builds a service over a reference with users 1..2 and a target missing user 2.
func setupService(t *testing.T, mutate func(*Options)) (*Service, *gorm.DB) {
	t.Helper()
	refCfg, _ := setupDatabase(t, "ref",
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO users (id, name) VALUES (1, 'a'), (2, 'b')")
	targetCfg, target := setupDatabase(t, "target",
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO users (id, name) VALUES (1, 'x')")

	opts := Options{
		Reference:    refCfg,
		Target:       targetCfg,
		Tables:       []reconcile.TableSpec{{Table: "users", KeyColumn: "id"}},
		AllowRuns:    true,
		Bucket:       "test-bucket",
		ReportPrefix: "reports",
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewService(opts, zap.NewNop()), target
}

func userNames(t *testing.T, db *gorm.DB) map[int64]string {
	t.Helper()
	var rows []struct {
		ID   int64
		Name string
	}
	require.NoError(t, db.Table("users").Order("id").Find(&rows).Error)
	names := make(map[int64]string, len(rows))
	for _, r := range rows {
		names[r.ID] = r.Name
	}
	return names
}
