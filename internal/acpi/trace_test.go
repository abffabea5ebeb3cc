package acpi

import (
	"bytes"
	"strings"
	"testing"
)

func TestTextTracerLayout(t *testing.T) {
	var buf bytes.Buffer
	tr := &TextTracer{W: &buf}

	tr.Trace(Line{Indent: 0, Name: "RHCT", Section: true})
	tr.Trace(Line{Indent: 2, Name: "Signature", Offset: 0, Width: 4, Value: "RHCT"})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "RHCT" {
		t.Errorf("section line = %q", lines[0])
	}
	want := "  " + "Signature" + strings.Repeat(" ", FieldColumnWidth-2-len("Signature")) + " : RHCT"
	if lines[1] != want {
		t.Errorf("field line = %q, want %q", lines[1], want)
	}
}

func TestTextTracerOffsets(t *testing.T) {
	var buf bytes.Buffer
	tr := &TextTracer{W: &buf, ShowOffsets: true}
	tr.Trace(Line{Indent: 4, Name: "ISA Length", Offset: 6, Width: 2, Value: "3"})

	if !strings.HasPrefix(buf.String(), "    [0006:2] ISA Length") {
		t.Fatalf("unexpected line %q", buf.String())
	}
}

func TestRecorderSections(t *testing.T) {
	var rec Recorder
	rec.Trace(Line{Name: "orphan", Value: "1"})
	rec.Trace(Line{Name: "RHCT", Section: true})
	rec.Trace(Line{Indent: 2, Name: "Signature", Value: "RHCT"})
	rec.Trace(Line{Indent: 2, Name: "MMU Node", Section: true})
	rec.Trace(Line{Indent: 4, Name: "MMU Type", Value: "1 (Sv48)"})
	rec.Trace(Line{Indent: 2, Name: "Unknown Node", Section: true})

	sections := rec.Sections()
	if len(sections) != 4 {
		t.Fatalf("got %d sections: %+v", len(sections), sections)
	}
	if sections[0].Name != "" || len(sections[0].Lines) != 1 {
		t.Errorf("orphan section = %+v", sections[0])
	}
	if sections[2].Name != "MMU Node" || sections[2].Indent != 2 || len(sections[2].Lines) != 1 {
		t.Errorf("mmu section = %+v", sections[2])
	}
	if len(sections[3].Lines) != 0 {
		t.Errorf("empty section has lines: %+v", sections[3])
	}

	rec.Reset()
	if len(rec.Lines()) != 0 {
		t.Fatalf("Reset left lines behind")
	}
}

func TestTeeSkipsNil(t *testing.T) {
	var a, b Recorder
	tr := Tee(&a, nil, &b)
	tr.Trace(Line{Name: "x"})
	if len(a.Lines()) != 1 || len(b.Lines()) != 1 {
		t.Fatalf("tee did not forward to both recorders")
	}
}
