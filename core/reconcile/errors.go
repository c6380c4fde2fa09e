package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection reports a database connection that cannot be established or used.
	ErrConnection = errors.New("connection error")
	// ErrSchema reports a missing or malformed table or key column.
	ErrSchema = errors.New("schema error")
	// ErrDuplicateKey reports two snapshot rows sharing one key value.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrWrite reports an insert or update rejected by the target.
	ErrWrite = errors.New("write error")
	// ErrSkipped marks tables left unprocessed after a fail-fast abort.
	ErrSkipped = errors.New("skipped")
)

// ReconciliationError attaches the table name to a failure.
type ReconciliationError struct {
	Table string
	Err   error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconcile table %s: %v", e.Table, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

func tableError(table string, err error) error {
	var re *ReconciliationError
	if errors.As(err, &re) && re.Table == table {
		return err
	}
	return &ReconciliationError{Table: table, Err: err}
}
