package acpi

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func headerBytes(sig string, length uint32) []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:4], sig)
	binary.LittleEndian.PutUint32(b[4:8], length)
	b[8] = 1
	copy(b[10:16], "OEMID ")
	copy(b[16:24], "TABLEID\x00")
	binary.LittleEndian.PutUint32(b[24:28], 0x20240101)
	copy(b[28:32], "TEST")
	binary.LittleEndian.PutUint32(b[32:36], 7)
	return b
}

func fixChecksum(b []byte) {
	b[9] = 0
	b[9] = uint8(0) - Checksum(b)
}

func TestParseDescriptionHeader(t *testing.T) {
	hdr, err := ParseDescriptionHeader(headerBytes("RHCT", 56))
	if err != nil {
		t.Fatalf("parse header: %v", err)
	}
	want := DescriptionHeader{
		Signature:       "RHCT",
		Length:          56,
		Revision:        1,
		OEMID:           "OEMID",
		OEMTableID:      "TABLEID",
		OEMRevision:     0x20240101,
		CreatorID:       "TEST",
		CreatorRevision: 7,
	}
	if hdr != want {
		t.Fatalf("header = %+v, want %+v", hdr, want)
	}
}

func TestParseDescriptionHeaderShort(t *testing.T) {
	_, err := ParseDescriptionHeader(make([]byte, HeaderSize-1))
	if !errors.Is(err, ErrShortTable) {
		t.Fatalf("expected ErrShortTable, got %v", err)
	}
}

func TestReadTable(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "acpi-table-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	full := append(headerBytes("RHCT", 40), 1, 2, 3, 4)
	fixChecksum(full)
	// Trailing bytes past the declared length are dropped.
	withTrailer := append(append([]byte{}, full...), 0xFF, 0xFF)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
		wantLen int
	}{
		{name: "exact", data: full, wantLen: 40},
		{name: "trailing bytes", data: withTrailer, wantLen: 40},
		{name: "truncated", data: full[:38], wantErr: ErrTruncatedTable},
		{name: "short header", data: full[:10], wantErr: ErrShortTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name+".dat")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}
			tbl, err := ReadTable(path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadTable: %v", err)
			}
			if len(tbl.Data) != tt.wantLen {
				t.Errorf("len(Data) = %d, want %d", len(tbl.Data), tt.wantLen)
			}
			if !tbl.ChecksumOK() {
				t.Errorf("checksum should be valid")
			}
		})
	}
}

func TestReadTableMissingFile(t *testing.T) {
	if _, err := ReadTable(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestErrorCounter(t *testing.T) {
	var c ErrorCounter
	if c.Increment() != 1 || c.Increment() != 2 {
		t.Fatalf("Increment did not return running total")
	}
	if c.Count() != 2 {
		t.Fatalf("Count = %d, want 2", c.Count())
	}
	if c.Add(3) != 5 {
		t.Fatalf("Add did not return running total")
	}
	c.Reset()
	if c.Count() != 0 {
		t.Fatalf("Count after Reset = %d", c.Count())
	}
}
