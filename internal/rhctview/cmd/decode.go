package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"rhctview/internal/acpi"
	"rhctview/internal/metrics"
	"rhctview/internal/report"
	"rhctview/internal/rhct"
)

const rhctSignature = "RHCT"

type decodeOptions struct {
	VerifyChecksum bool
	// Tracer receives the trace as it is produced, in addition to the
	// recorder every decode keeps.
	Tracer acpi.Tracer
}

// decodeResult is one table read, checked and decoded.
type decodeResult struct {
	Raw      *acpi.Table
	Table    *rhct.Table
	Sections []acpi.Section
	Errors   uint64 // errors counted for this table
	Err      error  // why the walk stopped early, if it did
	Elapsed  time.Duration
}

func decodeFile(path string, opts decodeOptions, logger *log.Logger) (*decodeResult, error) {
	raw, err := acpi.ReadTable(path)
	if err != nil {
		return nil, err
	}
	return decodeRaw(raw, opts, logger), nil
}

// decodeRaw checks the signature and checksum the way acpiview does before
// handing the table to the RHCT decoder. Errors are counted per table, then
// added to acpi.Errors.
func decodeRaw(raw *acpi.Table, opts decodeOptions, logger *log.Logger) *decodeResult {
	var counter acpi.ErrorCounter
	defer func() { acpi.Errors.Add(counter.Count()) }()

	logger = logger.With("path", raw.Path)
	if raw.Header.Signature != rhctSignature {
		logger.Warn("Unexpected table signature", "signature", raw.Header.Signature, "want", rhctSignature)
	}
	if opts.VerifyChecksum && !raw.ChecksumOK() {
		counter.Increment()
		logger.Error("Table checksum mismatch",
			"checksum", fmt.Sprintf("0x%02X", raw.Header.Checksum),
			"sum", fmt.Sprintf("0x%02X", acpi.Checksum(raw.Data)))
	}

	var rec acpi.Recorder
	d := &rhct.Decoder{
		Trace:  true,
		Tracer: acpi.Tee(&rec, opts.Tracer),
		Logger: logger,
		Errors: &counter,
	}

	start := time.Now()
	tbl, err := d.Decode(raw.Data, raw.Header.Length, raw.Header.Revision)
	elapsed := time.Since(start)

	if tbl != nil {
		logger.Debug("Decoded RHCT", "nodes", len(tbl.Nodes), "consumed", tbl.Consumed, "elapsed", elapsed)
	}

	return &decodeResult{
		Raw:      raw,
		Table:    tbl,
		Sections: rec.Sections(),
		Errors:   counter.Count(),
		Err:      err,
		Elapsed:  elapsed,
	}
}

func (r *decodeResult) report() *report.Report {
	return report.New(report.Input{
		Path:     r.Raw.Path,
		Data:     r.Raw.Data,
		Table:    r.Table,
		Sections: r.Sections,
		Errors:   r.Errors,
		Err:      r.Err,
	})
}

// writeMetrics records results and writes them to path.
func writeMetrics(path string, results ...*decodeResult) error {
	m := metrics.New()
	for _, r := range results {
		m.ObserveDecode(r.Raw.Path, r.Table, r.Err, r.Elapsed)
		m.AddErrors(r.Errors)
	}
	return m.WriteTextfile(path)
}
