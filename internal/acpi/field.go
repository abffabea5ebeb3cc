package acpi

import (
	"encoding/binary"
)

var binaryOrder = binary.LittleEndian

// Field describes one fixed-width field of an ACPI structure.
type Field struct {
	Name   string
	Length int
	Offset int
	Format Formatter // nil selects a default based on Length
}

// Decoded holds the raw field values produced by Parser.Parse, indexed the
// same way as the field slice that was parsed.
type Decoded struct {
	// Consumed is the number of bytes covered by fields that fit the buffer.
	Consumed int
	values   [][]byte
}

// Has reports whether field i was inside the buffer.
func (d Decoded) Has(i int) bool {
	return i >= 0 && i < len(d.values) && d.values[i] != nil
}

// Bytes returns a copy of field i, or nil if it was missing.
func (d Decoded) Bytes(i int) []byte {
	if !d.Has(i) {
		return nil
	}
	out := make([]byte, len(d.values[i]))
	copy(out, d.values[i])
	return out
}

func (d Decoded) Uint8(i int) uint8 {
	if !d.Has(i) || len(d.values[i]) < 1 {
		return 0
	}
	return d.values[i][0]
}

func (d Decoded) Uint16(i int) uint16 {
	if !d.Has(i) || len(d.values[i]) < 2 {
		return 0
	}
	return binaryOrder.Uint16(d.values[i])
}

func (d Decoded) Uint32(i int) uint32 {
	if !d.Has(i) || len(d.values[i]) < 4 {
		return 0
	}
	return binaryOrder.Uint32(d.values[i])
}

func (d Decoded) Uint64(i int) uint64 {
	if !d.Has(i) || len(d.values[i]) < 8 {
		return 0
	}
	return binaryOrder.Uint64(d.values[i])
}

// Parser decodes field tables and forwards trace lines to Tracer.
type Parser struct {
	Tracer Tracer
}

// Parse decodes fields from buf. The caller bounds buf to the bytes it is
// allowed to read. When trace is set, a section line for name (if not empty)
// is emitted at indent, followed by one line per field at indent+2.
func (p *Parser) Parse(trace bool, indent int, name string, buf []byte, fields []Field) Decoded {
	tracer := p.tracer()
	trace = trace && tracer != nil

	if trace && name != "" {
		tracer.Trace(Line{Indent: indent, Name: name, Width: len(buf), Section: true})
	}

	d := Decoded{values: make([][]byte, len(fields))}
	for i, f := range fields {
		if f.Offset < 0 || f.Length <= 0 || f.Offset+f.Length > len(buf) {
			// Outside the buffer: leave missing and keep going, later fields
			// can still be shorter.
			continue
		}
		v := buf[f.Offset : f.Offset+f.Length]
		d.values[i] = v
		d.Consumed += f.Length

		if trace {
			format := f.Format
			if format == nil {
				format = defaultFormat(f.Length)
			}
			tracer.Trace(Line{
				Indent: indent + 2,
				Name:   f.Name,
				Offset: f.Offset,
				Width:  f.Length,
				Value:  format(v),
			})
		}
	}
	return d
}

func (p *Parser) tracer() Tracer {
	if p == nil {
		return nil
	}
	return p.Tracer
}
