package acpi

import (
	"fmt"
	"os"
)

// DefaultTableDir is where Linux exposes the firmware's ACPI tables.
const DefaultTableDir = "/sys/firmware/acpi/tables"

// Table is one raw ACPI table read from disk.
type Table struct {
	Path   string
	Header DescriptionHeader
	Data   []byte // exactly Header.Length bytes
}

// ReadTable loads a binary ACPI table, as written by `acpidump -b` or exposed
// under DefaultTableDir. Bytes past the declared length are dropped.
func ReadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return NewTable(path, data)
}

// NewTable wraps an in-memory table image.
func NewTable(path string, data []byte) (*Table, error) {
	hdr, err := ParseDescriptionHeader(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if uint64(hdr.Length) > uint64(len(data)) {
		return nil, fmt.Errorf("%s: %w: declared %d, have %d", path, ErrTruncatedTable, hdr.Length, len(data))
	}
	return &Table{Path: path, Header: hdr, Data: data[:hdr.Length]}, nil
}

// ChecksumOK reports whether the table's bytes sum to zero.
func (t *Table) ChecksumOK() bool {
	return Checksum(t.Data) == 0
}
