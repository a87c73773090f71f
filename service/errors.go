package service

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced at the command boundary. Each carries an
// actionable hint for the operator.
var (
	ErrConfigMissing = errors.New("no tunnel config found; run `ptpanel edit` first")
	ErrConfigInvalid = errors.New("tunnel config is invalid")
	ErrNotInstalled  = errors.New("pingtunnel is not installed; run `ptpanel install` first")
	ErrNotConfirmed  = errors.New("uninstall is destructive; re-run with --yes to confirm")
)

// SupervisorError wraps any failure reported by the process supervisor,
// keeping the operation that failed visible to the operator.
type SupervisorError struct {
	Op  string
	Err error
}

func (e *SupervisorError) Error() string {
	return fmt.Sprintf("supervisor %s failed: %v", e.Op, e.Err)
}

func (e *SupervisorError) Unwrap() error {
	return e.Err
}

func supErr(op string, err error) error {
	return &SupervisorError{Op: op, Err: err}
}
