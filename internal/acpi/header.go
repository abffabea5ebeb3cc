package acpi

import (
	"strings"
)

// HeaderSize is the size of the standard ACPI description header.
const HeaderSize = 36

// DescriptionHeader is the header shared by every ACPI system description table.
type DescriptionHeader struct {
	Signature       string
	Length          uint32
	Revision        uint8
	Checksum        uint8
	OEMID           string
	OEMTableID      string
	OEMRevision     uint32
	CreatorID       string
	CreatorRevision uint32
}

// Indexes into HeaderFields.
const (
	HeaderSignature = iota
	HeaderLength
	HeaderRevision
	HeaderChecksum
	HeaderOEMID
	HeaderOEMTableID
	HeaderOEMRevision
	HeaderCreatorID
	HeaderCreatorRevision
)

// HeaderFields returns the field table of the description header. Table
// parsers append their own fields after it.
func HeaderFields() []Field {
	return []Field{
		{Name: "Signature", Length: 4, Offset: 0, Format: Chars},
		{Name: "Length", Length: 4, Offset: 4, Format: Decimal},
		{Name: "Revision", Length: 1, Offset: 8, Format: Decimal},
		{Name: "Checksum", Length: 1, Offset: 9, Format: Hex},
		{Name: "Oem ID", Length: 6, Offset: 10, Format: Chars},
		{Name: "Oem Table ID", Length: 8, Offset: 16, Format: Chars},
		{Name: "Oem Revision", Length: 4, Offset: 24, Format: Hex},
		{Name: "Creator ID", Length: 4, Offset: 28, Format: Chars},
		{Name: "Creator Revision", Length: 4, Offset: 32, Format: Hex},
	}
}

// DecodeHeader builds a DescriptionHeader from the first fields of d, which
// must have been parsed with HeaderFields at its start. Missing fields are zero.
func DecodeHeader(d Decoded) DescriptionHeader {
	return DescriptionHeader{
		Signature:       trimChars(d.Bytes(HeaderSignature)),
		Length:          d.Uint32(HeaderLength),
		Revision:        d.Uint8(HeaderRevision),
		Checksum:        d.Uint8(HeaderChecksum),
		OEMID:           trimChars(d.Bytes(HeaderOEMID)),
		OEMTableID:      trimChars(d.Bytes(HeaderOEMTableID)),
		OEMRevision:     d.Uint32(HeaderOEMRevision),
		CreatorID:       trimChars(d.Bytes(HeaderCreatorID)),
		CreatorRevision: d.Uint32(HeaderCreatorRevision),
	}
}

// ParseDescriptionHeader decodes the description header at the start of b
// without tracing or validation.
func ParseDescriptionHeader(b []byte) (DescriptionHeader, error) {
	if len(b) < HeaderSize {
		return DescriptionHeader{}, ErrShortTable
	}
	var p Parser
	return DecodeHeader(p.Parse(false, 0, "", b[:HeaderSize], HeaderFields())), nil
}

func trimChars(b []byte) string {
	return strings.TrimRight(string(b), "\x00 ")
}

// Checksum returns the 8-bit sum of b. A table with a valid checksum sums to 0.
func Checksum(b []byte) uint8 {
	var sum uint8
	for _, c := range b {
		sum += c
	}
	return sum
}
