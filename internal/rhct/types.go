// Package rhct decodes the RISC-V Hart Capabilities Table (RHCT).
//
// The table is the standard ACPI description header, four RHCT fields and a
// stream of variable-length nodes. Each node starts with a type, a length and
// a revision; the length alone drives the walk from one node to the next. A
// node whose length is zero or runs past the end of the table aborts the
// whole decode and is counted as one error in acpi.Errors.
package rhct

import (
	"strconv"

	"rhctview/internal/acpi"
)

// TableHeaderSize is the size of the fixed RHCT header, description header
// included. The node walk starts right after it.
const TableHeaderSize = 56

// NodeType is the tag at the start of every node.
type NodeType uint16

const (
	IsaStringNode    NodeType = 0
	CmoExtensionNode NodeType = 1
	MmuNode          NodeType = 2
	HartInfoNode     NodeType = 0xFFFF
)

var nodeNames = map[NodeType]string{
	IsaStringNode:    "ISA String Node",
	CmoExtensionNode: "CMO Extension Node",
	MmuNode:          "MMU Node",
	HartInfoNode:     "Hart Info Node",
}

func (t NodeType) String() string {
	if name, ok := nodeNames[t]; ok {
		return name
	}
	return "Unknown Node"
}

// Known reports whether t has a dedicated decoder.
func (t NodeType) Known() bool {
	_, ok := nodeDecoders[t]
	return ok
}

// MmuType is the address translation mode advertised by an MMU node.
type MmuType uint8

const (
	Sv39 MmuType = 0
	Sv48 MmuType = 1
	Sv57 MmuType = 2
)

var mmuNames = map[uint64]string{
	uint64(Sv39): "Sv39",
	uint64(Sv48): "Sv48",
	uint64(Sv57): "Sv57",
}

func (m MmuType) String() string {
	if name, ok := mmuNames[uint64(m)]; ok {
		return name
	}
	return "MmuType(" + strconv.Itoa(int(m)) + ")"
}

// Table is a decoded RHCT.
type Table struct {
	Header   TableHeader
	Revision uint8 // revision the caller passed in
	Nodes    []Node
	// Consumed is the offset the walk stopped at. It equals the table length
	// for a well-formed table.
	Consumed int
}

// TableHeader is the fixed header at the start of the table.
type TableHeader struct {
	acpi.DescriptionHeader
	Reserved          uint32
	TimeBaseFrequency uint64
	NodeCount         uint32
	NodeOffset        uint32
}

// NodeHeader is the prefix shared by every node.
type NodeHeader struct {
	Type     NodeType
	Length   uint16 // whole node, header included
	Revision uint16
}

// Node is one decoded node and the table offset it was found at.
type Node struct {
	Offset int
	NodeHeader
	Body NodeBody
}

// NodeBody is the type-specific part of a node: one of *IsaString,
// *CmoExtension, *Mmu, *HartInfo or *Unknown.
type NodeBody interface {
	isNodeBody()
}

// IsaString carries the hart's ISA string, e.g. "rv64imafdc_zicbom".
type IsaString struct {
	Length uint16 `json:"isa_length"` // terminator included
	Value  string `json:"isa_string"`
}

// CmoExtension carries cache block sizes as log2 of the size in bytes.
type CmoExtension struct {
	Reserved      uint8 `json:"reserved"`
	CbomBlockSize uint8 `json:"cbom_block_size"`
	CbopBlockSize uint8 `json:"cbop_block_size"`
	CbozBlockSize uint8 `json:"cboz_block_size"`
}

type Mmu struct {
	Reserved uint8   `json:"reserved"`
	Type     MmuType `json:"mmu_type"`
}

// HartInfo ties an ACPI processor UID to the nodes that describe it.
type HartInfo struct {
	OffsetsNumber    uint16 `json:"offsets_number"`
	AcpiProcessorUID uint32 `json:"acpi_processor_uid"`
	// Offsets are the table offsets of the hart's other nodes. Entries that
	// do not fit in the node are left out.
	Offsets []uint32 `json:"offsets,omitempty"`
}

// Unknown is a node with a type that has no decoder.
type Unknown struct {
	Raw []byte `json:"raw"`
}

func (*IsaString) isNodeBody()    {}
func (*CmoExtension) isNodeBody() {}
func (*Mmu) isNodeBody()          {}
func (*HartInfo) isNodeBody()     {}
func (*Unknown) isNodeBody()      {}
