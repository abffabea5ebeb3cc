package rhct

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidNodeLength = errors.New("rhct: invalid node length")
	ErrTableTruncated    = errors.New("rhct: buffer shorter than table length")
)

// LengthError describes a node whose length breaks the table structure.
type LengthError struct {
	Length      int
	Offset      int
	TableLength int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("rhct: invalid node length %d at offset %d (table length %d)",
		e.Length, e.Offset, e.TableLength)
}

func (e *LengthError) Unwrap() error {
	return ErrInvalidNodeLength
}

// Overflow reports whether the node was rejected for running past the end of
// the table rather than for having a zero length.
func (e *LengthError) Overflow() bool {
	return e.Length != 0
}

// validNodeLength is the structural check applied to every node. A zero
// length is rejected so every step of the walk makes progress.
func validNodeLength(length, offset, tableLength int) bool {
	return length > 0 && offset+length <= tableLength
}

// validateNodeLength counts and logs a failed check. Every failure is fatal to
// the table, so the caller stops walking when this returns an error.
func (d *Decoder) validateNodeLength(length, offset, tableLength int) error {
	if validNodeLength(length, offset, tableLength) {
		return nil
	}
	d.errors().Increment()
	d.logger().Error("Invalid RHCT node length",
		"length", length,
		"offset", offset,
		"table_length", tableLength)
	return &LengthError{Length: length, Offset: offset, TableLength: tableLength}
}
