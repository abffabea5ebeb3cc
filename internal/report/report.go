// Package report turns a decoded RHCT and its trace into JSON and markdown
// reports.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/ksuid"

	"rhctview/internal/acpi"
	"rhctview/internal/rhct"
)

// Report is the JSON output of a decode.
type Report struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Digest string `json:"digest"`
	Header Header `json:"header"`
	Nodes  []Node `json:"nodes"`
	// Errors is the number of errors counted for this table, checksum
	// included.
	Errors uint64 `json:"errors"`
	// Error is set when the walk stopped early.
	Error string `json:"error,omitempty"`
}

type Header struct {
	Signature         string  `json:"signature"`
	Length            uint32  `json:"length"`
	Revision          uint8   `json:"revision"`
	Checksum          uint8   `json:"checksum"`
	ChecksumOK        bool    `json:"checksum_ok"`
	OEMID             string  `json:"oem_id"`
	OEMTableID        string  `json:"oem_table_id"`
	OEMRevision       uint32  `json:"oem_revision"`
	CreatorID         string  `json:"creator_id"`
	CreatorRevision   uint32  `json:"creator_revision"`
	TimeBaseFrequency uint64  `json:"time_base_frequency"`
	NodeCount         uint32  `json:"node_count"`
	NodeOffset        uint32  `json:"node_offset"`
	Fields            []Field `json:"fields,omitempty"`
}

type Node struct {
	Offset   int           `json:"offset"`
	Type     uint16        `json:"type"`
	Name     string        `json:"name"`
	Length   uint16        `json:"length"`
	Revision uint16        `json:"revision"`
	Body     rhct.NodeBody `json:"body,omitempty"`
	Fields   []Field       `json:"fields,omitempty"`
}

// Field is one traced field, offset relative to its structure.
type Field struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Width  int    `json:"width"`
	Value  string `json:"value"`
}

// Input is everything a report is built from.
type Input struct {
	Path  string
	Data  []byte // the table bytes, for the digest and checksum
	Table *rhct.Table
	// Sections is the recorded trace of the decode: the header section
	// followed by one section per node. It may be empty.
	Sections []acpi.Section
	Errors   uint64
	Err      error
}

// New builds a report with a fresh ID.
func New(in Input) *Report {
	sum := sha256.Sum256(in.Data)
	r := &Report{
		ID:     ksuid.New().String(),
		Path:   in.Path,
		Digest: hex.EncodeToString(sum[:]),
		Errors: in.Errors,
		Nodes:  []Node{},
	}
	if in.Err != nil {
		r.Error = in.Err.Error()
	}
	if in.Table == nil {
		return r
	}

	h := in.Table.Header
	r.Header = Header{
		Signature:         h.Signature,
		Length:            h.Length,
		Revision:          h.Revision,
		Checksum:          h.Checksum,
		ChecksumOK:        acpi.Checksum(in.Data) == 0,
		OEMID:             h.OEMID,
		OEMTableID:        h.OEMTableID,
		OEMRevision:       h.OEMRevision,
		CreatorID:         h.CreatorID,
		CreatorRevision:   h.CreatorRevision,
		TimeBaseFrequency: h.TimeBaseFrequency,
		NodeCount:         h.NodeCount,
		NodeOffset:        h.NodeOffset,
	}

	// Sections only line up with nodes when the whole decode was traced.
	sections := in.Sections
	aligned := len(sections) == len(in.Table.Nodes)+1
	if aligned {
		r.Header.Fields = fields(sections[0])
	}
	for i, n := range in.Table.Nodes {
		node := Node{
			Offset:   n.Offset,
			Type:     uint16(n.Type),
			Name:     n.Type.String(),
			Length:   n.Length,
			Revision: n.Revision,
			Body:     n.Body,
		}
		if aligned {
			node.Fields = fields(sections[i+1])
		}
		r.Nodes = append(r.Nodes, node)
	}
	return r
}

func fields(s acpi.Section) []Field {
	out := make([]Field, 0, len(s.Lines))
	for _, l := range s.Lines {
		out = append(out, Field{Name: l.Name, Offset: l.Offset, Width: l.Width, Value: l.Value})
	}
	return out
}

// JSON returns the indented JSON encoding of r.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// Markdown returns r as a markdown document.
func (r *Report) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# RHCT\n\n")
	fmt.Fprintf(&sb, "```\n; %s\n; sha256 %s\n; report %s\n```\n\n", r.Path, r.Digest, r.ID)

	sb.WriteString("## Header\n\n")
	if len(r.Header.Fields) > 0 {
		writeFieldTable(&sb, r.Header.Fields)
	} else {
		writeFieldTable(&sb, []Field{
			{Name: "Signature", Value: r.Header.Signature},
			{Name: "Length", Value: fmt.Sprint(r.Header.Length)},
			{Name: "Revision", Value: fmt.Sprint(r.Header.Revision)},
			{Name: "Time Base Frequency", Value: fmt.Sprint(r.Header.TimeBaseFrequency)},
			{Name: "RHCT Node Number", Value: fmt.Sprint(r.Header.NodeCount)},
		})
	}
	if !r.Header.ChecksumOK {
		sb.WriteString("\n> Checksum mismatch\n")
	}

	sb.WriteString("\n## Nodes\n")
	if len(r.Nodes) == 0 {
		sb.WriteString("\nNo nodes decoded.\n")
	}
	for i, n := range r.Nodes {
		fmt.Fprintf(&sb, "\n### %d. %s at 0x%X\n\n", i, n.Name, n.Offset)
		if len(n.Fields) > 0 {
			writeFieldTable(&sb, n.Fields)
			continue
		}
		writeFieldTable(&sb, []Field{
			{Name: "Type", Value: fmt.Sprintf("0x%x", n.Type)},
			{Name: "Length", Value: fmt.Sprint(n.Length)},
			{Name: "Revision", Value: fmt.Sprint(n.Revision)},
		})
	}

	if r.Error != "" {
		fmt.Fprintf(&sb, "\n> **Decode stopped:** %s\n", escapeMarkdown(r.Error))
	}
	fmt.Fprintf(&sb, "\n**Table Statistics:** %d Error(s)\n", r.Errors)
	return sb.String()
}

func writeFieldTable(sb *strings.Builder, fields []Field) {
	sb.WriteString("| Field | Offset | Value |\n|---|---|---|\n")
	for _, f := range fields {
		fmt.Fprintf(sb, "| %s | %d | `%s` |\n", escapeMarkdown(f.Name), f.Offset, codeCellEscaper.Replace(f.Value))
	}
}

// A pipe splits a table row even inside a code span unless escaped.
var codeCellEscaper = strings.NewReplacer("`", "'", "|", "\\|")

var markdownEscaper = strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
