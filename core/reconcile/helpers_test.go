package reconcile

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"db-corrector/core/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory SQLite database and runs the given statements.
func setupTestDB(t *testing.T, name string, statements ...string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), name)
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}
	return db
}

type userRow struct {
	ID   int64
	Name string
}

func readUsers(t *testing.T, db *gorm.DB, table string) []userRow {
	t.Helper()
	var rows []userRow
	require.NoError(t, db.Table(table).Order("id").Find(&rows).Error)
	return rows
}

// recordingSink keeps every event for assertions.
type recordingSink struct {
	mu          sync.Mutex
	connections []ConnectionEvent
	actions     []ActionEvent
	tables      []TableEvent
}

func (s *recordingSink) Connection(e ConnectionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections = append(s.connections, e)
}

func (s *recordingSink) Action(e ActionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, e)
}

func (s *recordingSink) TableDone(e TableEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = append(s.tables, e)
}

func (s *recordingSink) connectionStates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.connections {
		out = append(out, e.Role+":"+string(e.State))
	}
	return out
}
