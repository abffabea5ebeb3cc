package rhct

import (
	"strconv"

	"rhctview/internal/acpi"
)

// Node sections are traced at this depth, their fields two deeper.
const nodeIndent = 2

// Byte offset of the ISA string within an ISA string node.
const isaStringOffset = 8

// Field indexes shared by every node field table.
const (
	fieldType = iota
	fieldLength
	fieldRevision
	firstNodeField
)

func nodeFields(extra ...acpi.Field) []acpi.Field {
	fields := []acpi.Field{
		{Name: "Type", Length: 2, Offset: 0, Format: acpi.Hex},
		{Name: "Length", Length: 2, Offset: 2, Format: acpi.Decimal},
		{Name: "Revision", Length: 2, Offset: 4, Format: acpi.Decimal},
	}
	return append(fields, extra...)
}

var (
	nodeHeaderFields = nodeFields()

	isaStringFields = nodeFields(
		acpi.Field{Name: "ISA Length", Length: 2, Offset: 6, Format: acpi.Decimal},
	)

	cmoExtensionFields = nodeFields(
		acpi.Field{Name: "Reserved", Length: 1, Offset: 6, Format: acpi.Hex},
		acpi.Field{Name: "CBOM Block Size", Length: 1, Offset: 7, Format: acpi.Decimal},
		acpi.Field{Name: "CBOP Block Size", Length: 1, Offset: 8, Format: acpi.Decimal},
		acpi.Field{Name: "CBOZ Block Size", Length: 1, Offset: 9, Format: acpi.Decimal},
	)

	mmuFields = nodeFields(
		acpi.Field{Name: "Reserved", Length: 1, Offset: 6, Format: acpi.Hex},
		acpi.Field{Name: "MMU Type", Length: 1, Offset: 7, Format: acpi.Named(mmuNames)},
	)

	hartInfoFields = nodeFields(
		acpi.Field{Name: "Number of Offsets", Length: 2, Offset: 6, Format: acpi.Decimal},
		acpi.Field{Name: "ACPI Processor UID", Length: 4, Offset: 8, Format: acpi.Decimal},
	)
)

// Offset of the first entry of a hart info node's offset array.
const hartOffsetsStart = 12

// nodeView is what a node decoder gets to read.
type nodeView struct {
	data []byte // the node's own Length bytes
	tail []byte // from the node start to the end of the table
}

type nodeDecoder func(d *Decoder, v nodeView) NodeBody

// nodeDecoders maps a node type to its decoder. Types missing here go
// through decodeUnknown.
var nodeDecoders = map[NodeType]nodeDecoder{
	IsaStringNode:    decodeIsaString,
	CmoExtensionNode: decodeCmoExtension,
	MmuNode:          decodeMmu,
	HartInfoNode:     decodeHartInfo,
}

func (d *Decoder) dispatch(t NodeType, v nodeView) NodeBody {
	decode, ok := nodeDecoders[t]
	if !ok {
		decode = decodeUnknown
	}
	return decode(d, v)
}

// decodeNodeHeader reads the common node prefix without tracing. Fields past
// the end of buf read as zero.
func decodeNodeHeader(buf []byte) NodeHeader {
	var p acpi.Parser
	dec := p.Parse(false, 0, "", buf, nodeHeaderFields)
	return NodeHeader{
		Type:     NodeType(dec.Uint16(fieldType)),
		Length:   dec.Uint16(fieldLength),
		Revision: dec.Uint16(fieldRevision),
	}
}

func decodeIsaString(d *Decoder, v nodeView) NodeBody {
	dec := d.parseNode(IsaStringNode.String(), v.data, isaStringFields)
	n := &IsaString{Length: dec.Uint16(firstNodeField)}
	if n.Length == 0 {
		return n
	}

	// The string is bounded by its own length field and the table end, not
	// by the node length.
	end := isaStringOffset + int(n.Length)
	if end > len(v.tail) {
		end = len(v.tail)
	}
	width := 0
	if end > isaStringOffset {
		width = end - isaStringOffset
		n.Value = acpi.PrintableString(v.tail[isaStringOffset:end])
	}
	// Width is what was actually read, which is less than n.Length when
	// the string was cut at the table end.
	d.traceLine(acpi.Line{
		Indent: nodeIndent + 2,
		Name:   "ISA String",
		Offset: isaStringOffset,
		Width:  width,
		Value:  n.Value,
	})
	return n
}

func decodeCmoExtension(d *Decoder, v nodeView) NodeBody {
	dec := d.parseNode(CmoExtensionNode.String(), v.data, cmoExtensionFields)
	return &CmoExtension{
		Reserved:      dec.Uint8(firstNodeField),
		CbomBlockSize: dec.Uint8(firstNodeField + 1),
		CbopBlockSize: dec.Uint8(firstNodeField + 2),
		CbozBlockSize: dec.Uint8(firstNodeField + 3),
	}
}

func decodeMmu(d *Decoder, v nodeView) NodeBody {
	dec := d.parseNode(MmuNode.String(), v.data, mmuFields)
	return &Mmu{
		Reserved: dec.Uint8(firstNodeField),
		Type:     MmuType(dec.Uint8(firstNodeField + 1)),
	}
}

func decodeHartInfo(d *Decoder, v nodeView) NodeBody {
	dec := d.parseNode(HartInfoNode.String(), v.data, hartInfoFields)
	n := &HartInfo{
		OffsetsNumber:    dec.Uint16(firstNodeField),
		AcpiProcessorUID: dec.Uint32(firstNodeField + 1),
	}

	var fields []acpi.Field
	for i := 0; i < int(n.OffsetsNumber); i++ {
		off := hartOffsetsStart + 4*i
		if off+4 > len(v.data) {
			break
		}
		fields = append(fields, acpi.Field{
			Name:   "Offsets[" + strconv.Itoa(i) + "]",
			Length: 4,
			Offset: off,
			Format: acpi.Hex,
		})
	}
	if len(fields) == 0 {
		return n
	}
	// No section name: the offsets trace under the hart info heading.
	offsets := d.parseNode("", v.data, fields)
	for i := range fields {
		n.Offsets = append(n.Offsets, offsets.Uint32(i))
	}
	return n
}

// decodeUnknown traces only the common header, over the rest of the table.
func decodeUnknown(d *Decoder, v nodeView) NodeBody {
	d.parseNode("Unknown Node", v.tail, nodeHeaderFields)
	raw := make([]byte, len(v.data))
	copy(raw, v.data)
	return &Unknown{Raw: raw}
}
