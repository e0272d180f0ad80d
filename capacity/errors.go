// ABOUTME: Domain errors for capacity computations
// ABOUTME: Every degenerate input is a named error; the engine never emits NaN or Inf

package capacity

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyHostSet is returned when a snapshot contains no hosts.
	ErrEmptyHostSet = errors.New("snapshot contains no hosts")

	// ErrEmptyVMSet is returned when a cluster report is requested for a
	// snapshot with no virtual machines. Per-host reports do not need VM
	// averages and tolerate an empty VM set.
	ErrEmptyVMSet = errors.New("snapshot contains no virtual machines")

	// ErrZeroCores is returned when a ratio would divide by zero cores.
	ErrZeroCores = errors.New("no physical cores to divide by")

	// ErrZeroMemory is returned when a ratio would divide by a zero
	// memory figure.
	ErrZeroMemory = errors.New("no memory capacity to divide by")

	// ErrInvalidFailoverCount is returned for failover counts below 1.
	ErrInvalidFailoverCount = errors.New("failover host count must be at least 1")
)

// InsufficientHostsError reports a failover simulation that would remove
// every host, or more hosts than the snapshot holds.
type InsufficientHostsError struct {
	Requested int
	Available int
}

func (e *InsufficientHostsError) Error() string {
	return fmt.Sprintf("cannot simulate losing %d of %d hosts", e.Requested, e.Available)
}
