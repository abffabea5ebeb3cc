package report

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"

	"rhctview/internal/acpi"
	"rhctview/internal/rhct"
)

// sampleTable returns an RHCT with an ISA string node and an MMU node, and a
// valid checksum.
func sampleTable() []byte {
	b := make([]byte, rhct.TableHeaderSize)
	copy(b[0:4], "RHCT")
	b[8] = 1
	copy(b[10:16], "OEMID ")
	binary.LittleEndian.PutUint64(b[40:48], 10000000)
	binary.LittleEndian.PutUint32(b[48:52], 2)
	binary.LittleEndian.PutUint32(b[52:56], rhct.TableHeaderSize)

	// ISA string node, "rv64gc" plus terminator.
	b = append(b, 0, 0, 15, 0, 1, 0, 7, 0)
	b = append(b, "rv64gc\x00"...)
	// MMU node, Sv39.
	b = append(b, 2, 0, 8, 0, 1, 0, 0, 0)

	binary.LittleEndian.PutUint32(b[4:8], uint32(len(b)))
	b[9] = -acpi.Checksum(b)
	return b
}

func decode(t *testing.T, data []byte, trace bool) Input {
	t.Helper()
	var rec acpi.Recorder
	var counter acpi.ErrorCounter
	d := &rhct.Decoder{Trace: trace, Tracer: &rec, Logger: log.New(&bytes.Buffer{}), Errors: &counter}
	tbl, err := d.Decode(data, uint32(len(data)), data[8])
	return Input{
		Path:     "/sys/firmware/acpi/tables/RHCT",
		Data:     data,
		Table:    tbl,
		Sections: rec.Sections(),
		Errors:   counter.Count(),
		Err:      err,
	}
}

func TestNew(t *testing.T) {
	r := New(decode(t, sampleTable(), true))

	if _, err := ksuid.Parse(r.ID); err != nil {
		t.Errorf("ID %q is not a ksuid: %v", r.ID, err)
	}
	if len(r.Digest) != 64 {
		t.Errorf("digest %q is not a sha256 hex digest", r.Digest)
	}
	if !r.Header.ChecksumOK || r.Header.Signature != "RHCT" || r.Header.NodeCount != 2 {
		t.Errorf("header = %+v", r.Header)
	}
	if len(r.Header.Fields) != 13 {
		t.Errorf("got %d header fields, want 13", len(r.Header.Fields))
	}
	if len(r.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(r.Nodes))
	}

	isa := r.Nodes[0]
	if isa.Name != "ISA String Node" || isa.Offset != 56 || len(isa.Fields) != 5 {
		t.Errorf("isa node = %+v", isa)
	}
	if last := isa.Fields[4]; last.Name != "ISA String" || last.Value != "rv64gc" {
		t.Errorf("isa string field = %+v", last)
	}
	if r.Nodes[1].Fields[4].Value != "0 (Sv39)" {
		t.Errorf("mmu type field = %+v", r.Nodes[1].Fields[4])
	}
	if r.Errors != 0 || r.Error != "" {
		t.Errorf("errors = %d %q, want none", r.Errors, r.Error)
	}
}

func TestNewIDsAreUnique(t *testing.T) {
	in := decode(t, sampleTable(), false)
	if New(in).ID == New(in).ID {
		t.Fatal("two reports share an ID")
	}
}

func TestNewWithoutTrace(t *testing.T) {
	r := New(decode(t, sampleTable(), false))
	if len(r.Header.Fields) != 0 {
		t.Errorf("header fields without a trace: %d", len(r.Header.Fields))
	}
	for _, n := range r.Nodes {
		if len(n.Fields) != 0 {
			t.Errorf("node fields without a trace: %+v", n)
		}
	}
	if body, ok := r.Nodes[0].Body.(*rhct.IsaString); !ok || body.Value != "rv64gc" {
		t.Errorf("isa body = %+v", r.Nodes[0].Body)
	}
}

func TestNewAbortedDecode(t *testing.T) {
	data := sampleTable()
	// Zero the MMU node length.
	binary.LittleEndian.PutUint16(data[73:75], 0)

	r := New(decode(t, data, true))
	if r.Errors != 1 {
		t.Errorf("errors = %d, want 1", r.Errors)
	}
	if !strings.Contains(r.Error, "invalid node length 0") {
		t.Errorf("error = %q", r.Error)
	}
	if len(r.Nodes) != 1 || len(r.Nodes[0].Fields) != 5 {
		t.Errorf("nodes = %+v", r.Nodes)
	}
	if r.Header.ChecksumOK {
		t.Error("checksum still reported valid after editing the table")
	}
}

func TestNewTruncated(t *testing.T) {
	data := sampleTable()
	r := New(Input{Path: "x", Data: data[:40], Err: rhct.ErrTableTruncated, Errors: 1})
	if r.Error == "" || len(r.Nodes) != 0 || r.Header.Signature != "" {
		t.Errorf("report = %+v", r)
	}
}

func TestJSON(t *testing.T) {
	r := New(decode(t, sampleTable(), true))
	data, err := r.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"id", "path", "digest", "header", "nodes", "errors"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := decoded["error"]; ok {
		t.Error("error key present for a clean decode")
	}
	if !bytes.Contains(data, []byte(`"isa_string": "rv64gc"`)) {
		t.Errorf("isa body missing from JSON:\n%s", data)
	}
}

func TestMarkdown(t *testing.T) {
	md := New(decode(t, sampleTable(), true)).Markdown()
	for _, want := range []string{
		"# RHCT",
		"## Header",
		"| Signature | 0 | `RHCT` |",
		"### 0. ISA String Node at 0x38",
		"| ISA String | 8 | `rv64gc` |",
		"### 1. MMU Node at 0x47",
		"**Table Statistics:** 0 Error(s)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Checksum mismatch") || strings.Contains(md, "Decode stopped") {
		t.Errorf("unexpected warnings in markdown:\n%s", md)
	}
}

func TestMarkdownAborted(t *testing.T) {
	data := sampleTable()
	binary.LittleEndian.PutUint16(data[73:75], 0)
	md := New(decode(t, data, false)).Markdown()
	for _, want := range []string{
		"> Checksum mismatch",
		"> **Decode stopped:**",
		"| Type | 0 | `0x0` |",
		"**Table Statistics:** 1 Error(s)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownEscapesTableCells(t *testing.T) {
	r := &Report{
		Path: "rhct.dat",
		Header: Header{Fields: []Field{
			{Name: "OEM_ID", Offset: 10, Value: "A|B`C"},
		}},
	}
	md := r.Markdown()
	if want := "| OEM\\_ID | 10 | `A\\|B'C` |"; !strings.Contains(md, want) {
		t.Errorf("markdown missing %q:\n%s", want, md)
	}
}
