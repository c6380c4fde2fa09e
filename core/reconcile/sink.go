package reconcile

import (
	"go.uber.org/zap"
)

// ConnectionState is a lifecycle transition of a database connection.
type ConnectionState string

const (
	ConnectionOpened ConnectionState = "opened"
	ConnectionFailed ConnectionState = "failed"
	ConnectionClosed ConnectionState = "closed"
)

// Database roles within a run.
const (
	RoleReference = "reference"
	RoleTarget    = "target"
)

// ConnectionEvent describes one connection lifecycle transition.
type ConnectionEvent struct {
	Role  string
	Label string
	State ConnectionState
	Err   error
}

// ActionEvent describes one action applied to the target.
type ActionEvent struct {
	Table  string
	Kind   ActionKind
	Key    Value
	Row    Row
	DryRun bool
}

// TableEvent describes the end of one table's reconciliation.
type TableEvent struct {
	Result TableResult
}

// Sink receives the observable events of a run.
// Implementations must be safe for concurrent use when Parallelism > 1.
type Sink interface {
	Connection(ConnectionEvent)
	Action(ActionEvent)
	TableDone(TableEvent)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Connection(ConnectionEvent) {}
func (NopSink) Action(ActionEvent)         {}
func (NopSink) TableDone(TableEvent)       {}

// LogSink writes events as structured zap records.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a sink logging through l.
func NewLogSink(l *zap.Logger) *LogSink {
	return &LogSink{logger: l}
}

func (s *LogSink) Connection(e ConnectionEvent) {
	fields := []zap.Field{
		zap.String("role", e.Role),
		zap.String("database", e.Label),
		zap.String("state", string(e.State)),
	}
	if e.Err != nil {
		s.logger.Error("Database connection failed", append(fields, zap.Error(e.Err))...)
		return
	}
	s.logger.Info("Database connection "+string(e.State), fields...)
}

func (s *LogSink) Action(e ActionEvent) {
	msg := "Row inserted"
	if e.Kind == ActionUpdate {
		msg = "Row updated"
	}
	if e.DryRun {
		msg = "Planned " + string(e.Kind)
	}
	s.logger.Info(msg,
		zap.String("table", e.Table),
		zap.String("action", string(e.Kind)),
		zap.Stringer("key", e.Key),
		zap.Stringer("row", e.Row),
	)
}

func (s *LogSink) TableDone(e TableEvent) {
	r := e.Result
	fields := []zap.Field{
		zap.String("table", r.Table),
		zap.Int("inserted", r.Inserted),
		zap.Int("updated", r.Updated),
		zap.Int("unchanged", r.Unchanged),
		zap.Int("target_only", r.TargetOnly),
		zap.Duration("duration", r.Duration),
		zap.Bool("dry_run", r.DryRun),
	}
	if r.Err != nil {
		s.logger.Error("Table reconciliation failed", append(fields, zap.Error(r.Err))...)
		return
	}
	s.logger.Info("Table reconciliation finished", fields...)
}
