package acpi

import (
	"errors"
	"sync/atomic"
)

var (
	ErrShortTable     = errors.New("acpi: table shorter than description header")
	ErrTruncatedTable = errors.New("acpi: table shorter than its declared length")
)

// ErrorCounter counts table errors. It is safe for concurrent use so tables
// can be decoded in parallel against one counter.
type ErrorCounter struct {
	n atomic.Uint64
}

// Increment adds one error and returns the new total.
func (c *ErrorCounter) Increment() uint64 {
	return c.n.Add(1)
}

// Add adds n errors, for folding a per-table counter into a shared one.
func (c *ErrorCounter) Add(n uint64) uint64 {
	return c.n.Add(n)
}

func (c *ErrorCounter) Count() uint64 {
	return c.n.Load()
}

func (c *ErrorCounter) Reset() {
	c.n.Store(0)
}

// Errors is the process-wide counter every table parser reports into.
var Errors = &ErrorCounter{}
