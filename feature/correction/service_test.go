package correction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"db-corrector/core/database"
	"db-corrector/core/reconcile"
	"db-corrector/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestService_Run(t *testing.T) {
	svc, target := setupService(t, nil)

	rep, err := svc.Run(context.Background(), false, zap.NewNop())
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.False(t, rep.DryRun)
	assert.Equal(t, 1, rep.Summary.Succeeded)
	assert.Equal(t, 1, rep.Summary.Inserted)
	assert.Equal(t, 1, rep.Summary.Updated)
	assert.Equal(t, map[int64]string{1: "a", 2: "b"}, userNames(t, target))
}

func TestService_Run_DryRun(t *testing.T) {
	svc, target := setupService(t, nil)

	rep, err := svc.Run(context.Background(), true, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, rep.DryRun)
	assert.Equal(t, 1, rep.Summary.Inserted)
	assert.Equal(t, map[int64]string{1: "x"}, userNames(t, target))
}

func TestService_Run_Disabled(t *testing.T) {
	svc, _ := setupService(t, func(o *Options) { o.AllowRuns = false })

	_, err := svc.Run(context.Background(), false, zap.NewNop())
	assert.ErrorIs(t, err, ErrRunsDisabled)
}

func TestService_Run_InProgress(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	svc, _ := setupService(t, func(o *Options) {
		o.Connector = func(ctx context.Context, cfg database.Config) (*gorm.DB, error) {
			close(entered)
			<-release
			return nil, errors.New("stopped")
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), false, zap.NewNop())
		done <- err
	}()

	<-entered
	_, err := svc.Run(context.Background(), false, zap.NewNop())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, reconcile.ErrConnection)
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not finish")
	}
}

func TestService_Run_ConnectionFailure(t *testing.T) {
	svc, _ := setupService(t, func(o *Options) {
		o.Reference = database.Config{Driver: database.DriverSQLite}
	})

	_, err := svc.Run(context.Background(), false, zap.NewNop())
	assert.ErrorIs(t, err, reconcile.ErrConnection)
}

func TestService_Run_PublishesReport(t *testing.T) {
	mockClient := new(mocks.Client)
	svc, _ := setupService(t, func(o *Options) { o.Storage = mockClient })

	isReport := mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "reports/") && strings.HasSuffix(name, ".json")
	})
	mockClient.On("PutObject", mock.Anything, "test-bucket", isReport, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil).Once()

	rep, err := svc.Run(context.Background(), false, zap.NewNop())
	require.NoError(t, err)
	mockClient.AssertExpectations(t)
	mockClient.AssertCalled(t, "PutObject", mock.Anything, "test-bucket", "reports/"+rep.RunID+".json",
		mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Run_PublishFailureKeepsReport(t *testing.T) {
	mockClient := new(mocks.Client)
	svc, target := setupService(t, func(o *Options) { o.Storage = mockClient })

	mockClient.On("PutObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("unreachable"))

	rep, err := svc.Run(context.Background(), false, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, rep.HasFailures())
	assert.Equal(t, map[int64]string{1: "a", 2: "b"}, userNames(t, target))
}

func TestService_Schema(t *testing.T) {
	refCfg, _ := setupDatabase(t, "ref",
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, email TEXT)")
	targetCfg, _ := setupDatabase(t, "target",
		"CREATE TABLE users (uid INTEGER PRIMARY KEY, name TEXT)")

	svc := NewService(Options{
		Reference: refCfg,
		Target:    targetCfg,
		Tables: []reconcile.TableSpec{
			{Table: "users", KeyColumn: "id"},
			{Table: "ghost", KeyColumn: "id"},
		},
	}, zap.NewNop())

	schema, err := svc.Schema(context.Background())
	require.NoError(t, err)
	require.Len(t, schema, 2)

	users := schema[0]
	assert.Equal(t, "users", users.Table)
	assert.True(t, users.KeyInReference)
	assert.False(t, users.KeyInTarget)
	assert.Equal(t, []string{"id", "email"}, users.MissingInTarget)
	assert.Len(t, users.Reference, 3)
	assert.Len(t, users.Target, 2)

	ghost := schema[1]
	assert.False(t, ghost.KeyInReference)
	assert.False(t, ghost.KeyInTarget)
	assert.Empty(t, ghost.MissingInTarget)
}

func TestService_Schema_ConnectionFailure(t *testing.T) {
	svc, _ := setupService(t, func(o *Options) {
		o.Target = database.Config{Driver: "oracle"}
	})

	_, err := svc.Schema(context.Background())
	assert.ErrorIs(t, err, reconcile.ErrConnection)
}

func TestService_Reports_StorageDisabled(t *testing.T) {
	svc, _ := setupService(t, nil)

	_, err := svc.Reports(context.Background())
	assert.ErrorIs(t, err, ErrStorageDisabled)

	_, err = svc.Report(context.Background(), "run-1")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}
