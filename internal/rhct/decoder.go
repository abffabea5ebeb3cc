package rhct

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"rhctview/internal/acpi"
)

// Indexes of the RHCT fields that follow the description header.
const (
	headerReserved = acpi.HeaderCreatorRevision + 1 + iota
	headerTimeBaseFrequency
	headerNodeCount
	headerNodeOffset
)

var tableHeaderFields = append(acpi.HeaderFields(),
	acpi.Field{Name: "Reserved", Length: 4, Offset: 36, Format: acpi.Hex},
	acpi.Field{Name: "Time Base Frequency", Length: 8, Offset: 40, Format: acpi.Decimal},
	acpi.Field{Name: "RHCT Node Number", Length: 4, Offset: 48, Format: acpi.Decimal},
	acpi.Field{Name: "RHCT Node Offset", Length: 4, Offset: 52, Format: acpi.Hex},
)

// Decoder decodes RHCT tables. The zero value decodes silently, logs through
// the default charmbracelet logger and counts errors in acpi.Errors.
//
// A Decoder keeps no state between calls; it is safe to reuse, and safe for
// concurrent use if Tracer is.
type Decoder struct {
	Trace  bool
	Tracer acpi.Tracer
	Logger *log.Logger
	Errors *acpi.ErrorCounter
}

// Parse decodes buf with a default Decoder, tracing to stdout when trace is set.
func Parse(trace bool, buf []byte, length uint32, revision uint8) (*Table, error) {
	d := &Decoder{Trace: trace, Tracer: &acpi.TextTracer{W: os.Stdout}}
	return d.Decode(buf, length, revision)
}

// Decode decodes the first length bytes of buf.
//
// The returned Table holds every node decoded before the walk stopped. The
// error is a *LengthError when a node broke the table structure; in that case
// the error counter was incremented exactly once and the remaining bytes were
// not examined.
func (d *Decoder) Decode(buf []byte, length uint32, revision uint8) (*Table, error) {
	if uint64(len(buf)) < uint64(length) {
		d.errors().Increment()
		d.logger().Error("RHCT buffer shorter than table length",
			"buffer_length", len(buf),
			"table_length", length)
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrTableTruncated, len(buf), length)
	}
	buf = buf[:length]

	t := &Table{Revision: revision}
	offset := d.decodeTableHeader(buf, &t.Header)
	err := d.walk(buf, offset, t)
	return t, err
}

// decodeTableHeader fills hdr and returns the number of header bytes read,
// which is where the node walk starts. The header's own node offset field is
// not consulted.
func (d *Decoder) decodeTableHeader(buf []byte, hdr *TableHeader) int {
	dec := d.parser().Parse(d.Trace, 0, "RHCT", buf, tableHeaderFields)
	*hdr = TableHeader{
		DescriptionHeader: acpi.DecodeHeader(dec),
		Reserved:          dec.Uint32(headerReserved),
		TimeBaseFrequency: dec.Uint64(headerTimeBaseFrequency),
		NodeCount:         dec.Uint32(headerNodeCount),
		NodeOffset:        dec.Uint32(headerNodeOffset),
	}
	return dec.Consumed
}

// walk decodes nodes from offset until the end of buf or the first node that
// fails validation.
func (d *Decoder) walk(buf []byte, offset int, t *Table) error {
	tableLength := len(buf)
	for offset < tableLength {
		remaining := buf[offset:]
		hdr := decodeNodeHeader(remaining)
		if err := d.validateNodeLength(int(hdr.Length), offset, tableLength); err != nil {
			t.Consumed = offset
			return err
		}

		v := nodeView{data: remaining[:hdr.Length], tail: remaining}
		t.Nodes = append(t.Nodes, Node{
			Offset:     offset,
			NodeHeader: hdr,
			Body:       d.dispatch(hdr.Type, v),
		})

		// Advance by the declared length only.
		offset += int(hdr.Length)
	}
	t.Consumed = offset
	return nil
}

func (d *Decoder) parser() *acpi.Parser {
	return &acpi.Parser{Tracer: d.Tracer}
}

func (d *Decoder) parseNode(name string, buf []byte, fields []acpi.Field) acpi.Decoded {
	return d.parser().Parse(d.Trace, nodeIndent, name, buf, fields)
}

func (d *Decoder) traceLine(l acpi.Line) {
	if d.Trace && d.Tracer != nil {
		d.Tracer.Trace(l)
	}
}

func (d *Decoder) errors() *acpi.ErrorCounter {
	if d.Errors != nil {
		return d.Errors
	}
	return acpi.Errors
}

func (d *Decoder) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}
