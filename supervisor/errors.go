package supervisor

import "github.com/pkg/errors"

// Typed sentinel errors the host API returns. Adapter/device failures are
// fatal to a Supervisor; readback and drain timeouts are recoverable
// diagnostics (the next call may be retried); a re-root invariant
// violation is fatal (it means the shared tree's reachability bookkeeping
// has been corrupted).
var (
	ErrAdapterUnavailable = errors.New("supervisor: no compute adapter satisfies the requested backend/limits")
	ErrDeviceLost         = errors.New("supervisor: device lost mid-dispatch")
	ErrReadbackTimeout    = errors.New("supervisor: stats readback exceeded its configured timeout")
	ErrDrainTimeout       = errors.New("supervisor: re-root drain exceeded its configured timeout")
	ErrRerootInvariant    = errors.New("supervisor: re-root invariant violated (chosen child is not live under the current root)")
	ErrNotInitialized     = errors.New("supervisor: InitTree must be called before this operation")
	ErrBatchTooSmall      = errors.New("supervisor: requested iteration count is below MinBatchIterations")
)

func errf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// ConfigError marks an error as a misconfiguration rather than a runtime
// failure, so callers (e.g. cmd/mctsctl) can map it to a distinct exit
// code instead of treating it like an adapter/readback failure.
type ConfigError struct {
	err error
}

func (e *ConfigError) Error() string { return e.err.Error() }
func (e *ConfigError) Unwrap() error { return e.err }

// NewConfigError wraps err as a ConfigError. Exported so callers outside
// this package (the CLI's own flag validation) can report misconfiguration
// through the same channel as Config.Validate.
func NewConfigError(err error) error {
	if err == nil {
		return nil
	}
	return &ConfigError{err: err}
}
