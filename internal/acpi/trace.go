package acpi

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
)

// FieldColumnWidth is the width of the name column in text traces, the same
// column acpiview lines values up on.
const FieldColumnWidth = 36

// Line is one trace line: either a section heading or a decoded field.
type Line struct {
	Indent  int
	Name    string
	Offset  int // relative to the start of the structure being parsed
	Width   int // field width in bytes; for sections, the bytes available
	Value   string
	Section bool
}

// Tracer receives trace lines in field order.
type Tracer interface {
	Trace(l Line)
}

// TextTracer writes trace lines to W in acpiview's column layout.
type TextTracer struct {
	W           io.Writer
	ShowOffsets bool // prefix field lines with [offset:width]
	Styled      bool // colorize with lipgloss
}

var (
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	offsetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (t *TextTracer) Trace(l Line) {
	fmt.Fprintln(t.W, FormatLine(l, t.ShowOffsets, t.Styled))
}

// FormatLine renders a single trace line without a trailing newline.
func FormatLine(l Line, showOffsets, styled bool) string {
	indent := strings.Repeat(" ", l.Indent)
	if l.Section {
		name := l.Name
		if styled {
			name = sectionStyle.Render(name)
		}
		return indent + name
	}

	pad := FieldColumnWidth - l.Indent
	if pad < len(l.Name) {
		pad = len(l.Name)
	}
	name := fmt.Sprintf("%-*s", pad, l.Name)
	value := l.Value
	prefix := ""
	if showOffsets {
		prefix = fmt.Sprintf("[%04X:%d] ", l.Offset, l.Width)
	}
	if styled {
		name = nameStyle.Render(name)
		value = valueStyle.Render(value)
		if prefix != "" {
			prefix = offsetStyle.Render(prefix)
		}
	}
	return indent + prefix + name + " : " + value
}

// Section groups the lines traced under one section heading.
type Section struct {
	Name   string
	Indent int
	Lines  []Line // field lines only
}

// Recorder keeps every traced line for later rendering.
type Recorder struct {
	lines []Line
}

func (r *Recorder) Trace(l Line) {
	r.lines = append(r.lines, l)
}

// Lines returns the recorded lines in order.
func (r *Recorder) Lines() []Line {
	out := make([]Line, len(r.lines))
	copy(out, r.lines)
	return out
}

// Sections groups recorded lines by section heading. Field lines traced before
// any heading land in a section with an empty name.
func (r *Recorder) Sections() []Section {
	var sections []Section
	for _, l := range r.lines {
		if l.Section {
			sections = append(sections, Section{Name: l.Name, Indent: l.Indent})
			continue
		}
		if len(sections) == 0 {
			sections = append(sections, Section{})
		}
		last := &sections[len(sections)-1]
		last.Lines = append(last.Lines, l)
	}
	return sections
}

// Reset drops all recorded lines.
func (r *Recorder) Reset() {
	r.lines = r.lines[:0]
}

type tee []Tracer

func (t tee) Trace(l Line) {
	for _, tr := range t {
		tr.Trace(l)
	}
}

// Tee returns a Tracer that forwards every line to each non-nil tracer.
func Tee(tracers ...Tracer) Tracer {
	var out tee
	for _, tr := range tracers {
		if tr != nil {
			out = append(out, tr)
		}
	}
	return out
}
