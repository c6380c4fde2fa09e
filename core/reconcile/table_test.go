package reconcile

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const usersDDL = "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)"

var usersSpec = TableSpec{Table: "users", KeyColumn: "id"}

func TestTableReconciler_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("Insert into empty target", func(t *testing.T) {
		ref := setupTestDB(t, "ref", usersDDL, "INSERT INTO users VALUES (1, 'a')")
		target := setupTestDB(t, "target", usersDDL)

		res := NewTableReconciler(nil, false).Reconcile(ctx, ref, target, usersSpec)
		require.NoError(t, res.Err)
		assert.Equal(t, 1, res.Inserted)
		assert.Equal(t, 0, res.Updated)
		assert.Equal(t, []userRow{{1, "a"}}, readUsers(t, target, "users"))
	})

	t.Run("Update mismatched row", func(t *testing.T) {
		ref := setupTestDB(t, "ref", usersDDL, "INSERT INTO users VALUES (1, 'a')")
		target := setupTestDB(t, "target", usersDDL, "INSERT INTO users VALUES (1, 'b')")

		res := NewTableReconciler(nil, false).Reconcile(ctx, ref, target, usersSpec)
		require.NoError(t, res.Err)
		assert.Equal(t, 0, res.Inserted)
		assert.Equal(t, 1, res.Updated)
		assert.Equal(t, []userRow{{1, "a"}}, readUsers(t, target, "users"))
	})

	t.Run("Equal rows are unchanged", func(t *testing.T) {
		ref := setupTestDB(t, "ref", usersDDL, "INSERT INTO users VALUES (1, 'a')")
		target := setupTestDB(t, "target", usersDDL, "INSERT INTO users VALUES (1, 'a')")

		res := NewTableReconciler(nil, false).Reconcile(ctx, ref, target, usersSpec)
		require.NoError(t, res.Err)
		assert.Equal(t, 0, res.Inserted+res.Updated)
		assert.Equal(t, 1, res.Unchanged)
	})

	t.Run("Target-only rows persist", func(t *testing.T) {
		ref := setupTestDB(t, "ref", usersDDL, "INSERT INTO users VALUES (1, 'a')")
		target := setupTestDB(t, "target", usersDDL,
			"INSERT INTO users VALUES (1, 'a')",
			"INSERT INTO users VALUES (2, 'x')",
		)

		res := NewTableReconciler(nil, false).Reconcile(ctx, ref, target, usersSpec)
		require.NoError(t, res.Err)
		assert.Equal(t, 0, res.Inserted+res.Updated)
		assert.Equal(t, 1, res.TargetOnly)
		assert.Equal(t, []userRow{{1, "a"}, {2, "x"}}, readUsers(t, target, "users"))
	})
}

func TestTableReconciler_Idempotent(t *testing.T) {
	ctx := context.Background()
	ref := setupTestDB(t, "ref", usersDDL,
		"INSERT INTO users VALUES (1, 'a')",
		"INSERT INTO users VALUES (2, 'b')",
		"INSERT INTO users VALUES (3, 'c')",
	)
	target := setupTestDB(t, "target", usersDDL,
		"INSERT INTO users VALUES (2, 'old')",
		"INSERT INTO users VALUES (7, 'mine')",
	)
	tr := NewTableReconciler(nil, false)

	first := tr.Reconcile(ctx, ref, target, usersSpec)
	require.NoError(t, first.Err)
	assert.Equal(t, 2, first.Inserted)
	assert.Equal(t, 1, first.Updated)

	second := tr.Reconcile(ctx, ref, target, usersSpec)
	require.NoError(t, second.Err)
	assert.Equal(t, 0, second.Inserted+second.Updated)
	assert.Equal(t, 3, second.Unchanged)

	assert.Equal(t, []userRow{{1, "a"}, {2, "b"}, {3, "c"}, {7, "mine"}}, readUsers(t, target, "users"))
}

func TestTableReconciler_RollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	ref := setupTestDB(t, "ref", usersDDL,
		"INSERT INTO users VALUES (1, 'a')",
		"INSERT INTO users VALUES (2, 'much too long')",
		"INSERT INTO users VALUES (3, 'c')",
	)
	target := setupTestDB(t, "target",
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT CHECK (length(name) <= 3))",
		"INSERT INTO users VALUES (3, 'old')",
	)
	sink := &recordingSink{}

	res := NewTableReconciler(sink, false).Reconcile(ctx, ref, target, usersSpec)

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, ErrWrite))
	var re *ReconciliationError
	require.True(t, errors.As(res.Err, &re))
	assert.Equal(t, "users", re.Table)

	// Row 1 was inserted before the failure; the rollback must have removed it.
	assert.Equal(t, []userRow{{3, "old"}}, readUsers(t, target, "users"))
	assert.Zero(t, res.Inserted)
	assert.Zero(t, res.Updated)
	assert.Empty(t, sink.actions, "no action events for rolled back writes")
	require.Len(t, sink.tables, 1)
	assert.Error(t, sink.tables[0].Result.Err)
}

func TestTableReconciler_DryRun(t *testing.T) {
	ctx := context.Background()
	ref := setupTestDB(t, "ref", usersDDL,
		"INSERT INTO users VALUES (1, 'a')",
		"INSERT INTO users VALUES (2, 'b')",
	)
	target := setupTestDB(t, "target", usersDDL, "INSERT INTO users VALUES (2, 'x')")
	sink := &recordingSink{}

	res := NewTableReconciler(sink, true).Reconcile(ctx, ref, target, usersSpec)
	require.NoError(t, res.Err)
	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Actions, 2)
	assert.Equal(t, ActionInsert, res.Actions[0].Kind)
	assert.Equal(t, ActionUpdate, res.Actions[1].Kind)

	assert.Equal(t, []userRow{{2, "x"}}, readUsers(t, target, "users"))
	require.Len(t, sink.actions, 2)
	assert.True(t, sink.actions[0].DryRun)
}

func TestTableReconciler_EmitsActionEvents(t *testing.T) {
	ctx := context.Background()
	ref := setupTestDB(t, "ref", usersDDL,
		"INSERT INTO users VALUES (1, 'a')",
		"INSERT INTO users VALUES (2, 'b')",
	)
	target := setupTestDB(t, "target", usersDDL, "INSERT INTO users VALUES (2, 'x')")
	sink := &recordingSink{}

	res := NewTableReconciler(sink, false).Reconcile(ctx, ref, target, usersSpec)
	require.NoError(t, res.Err)

	require.Len(t, sink.actions, 2)
	assert.Equal(t, "users", sink.actions[0].Table)
	assert.Equal(t, ActionInsert, sink.actions[0].Kind)
	assert.Equal(t, "1", sink.actions[0].Key.String())
	assert.Equal(t, "{id=1, name=a}", sink.actions[0].Row.String())
	assert.Equal(t, ActionUpdate, sink.actions[1].Kind)
	assert.Equal(t, "{id=2, name=b}", sink.actions[1].Row.String())
}

func TestTableReconciler_ReadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing key column", func(t *testing.T) {
		ref := setupTestDB(t, "ref", usersDDL)
		target := setupTestDB(t, "target", usersDDL)

		res := NewTableReconciler(nil, false).Reconcile(ctx, ref, target, TableSpec{Table: "users", KeyColumn: "uid"})
		assert.True(t, errors.Is(res.Err, ErrSchema))
		assert.Contains(t, res.Err.Error(), "reconcile table users")
	})

	t.Run("Missing target table", func(t *testing.T) {
		ref := setupTestDB(t, "ref", usersDDL, "INSERT INTO users VALUES (1, 'a')")
		target := setupTestDB(t, "target")

		res := NewTableReconciler(nil, false).Reconcile(ctx, ref, target, usersSpec)
		assert.True(t, errors.Is(res.Err, ErrSchema))
		assert.Contains(t, res.Err.Error(), "target")
	})

	t.Run("Duplicate keys in target", func(t *testing.T) {
		ref := setupTestDB(t, "ref", "CREATE TABLE tags (code TEXT, label TEXT)", "INSERT INTO tags VALUES ('a', 'A')")
		target := setupTestDB(t, "target", "CREATE TABLE tags (code TEXT, label TEXT)",
			"INSERT INTO tags VALUES ('a', 'x')",
			"INSERT INTO tags VALUES ('a', 'y')",
		)

		res := NewTableReconciler(nil, false).Reconcile(ctx, ref, target, TableSpec{Table: "tags", KeyColumn: "code"})
		assert.True(t, errors.Is(res.Err, ErrDuplicateKey))
	})

	t.Run("Nil target", func(t *testing.T) {
		ref := setupTestDB(t, "ref", usersDDL)
		res := NewTableReconciler(nil, false).Reconcile(ctx, ref, nil, usersSpec)
		assert.True(t, errors.Is(res.Err, ErrConnection))
	})
}

// TestTableReconciler_MySQLStatements checks the SQL issued against a MySQL target
// and that a rejected update rolls the transaction back.
func TestTableReconciler_MySQLStatements(t *testing.T) {
	ctx := context.Background()
	ref := setupTestDB(t, "ref", usersDDL,
		"INSERT INTO users VALUES (1, 'a')",
		"INSERT INTO users VALUES (2, 'b')",
	)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	target, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.COLUMNS")).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"field", "type", "key"}).
			AddRow("id", "int(11)", "PRI").
			AddRow("name", "varchar(20)", ""))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id`,`name` FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(2), "x"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users` (`id`,`name`) VALUES (?,?)")).
		WithArgs(int64(1), "a").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `users` SET `id`=?,`name`=? WHERE `id` = ?")).
		WithArgs(int64(2), "b", int64(2)).
		WillReturnError(errors.New("lock wait timeout exceeded"))
	mock.ExpectRollback()

	res := NewTableReconciler(nil, false).Reconcile(ctx, ref, target, usersSpec)

	assert.True(t, errors.Is(res.Err, ErrWrite))
	assert.Contains(t, res.Err.Error(), "lock wait timeout exceeded")
	assert.NoError(t, mock.ExpectationsWereMet())
}
