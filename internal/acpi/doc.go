// Package acpi holds the table-independent pieces shared by every ACPI table
// parser: the field decode primitive, value formatters, trace output, the
// process-wide error counter, the standard description header and raw table
// loading.
//
// A table parser describes a structure as a slice of [Field] values and hands
// the bytes to [Parser.Parse]. Parse never reads past the buffer it is given;
// fields that do not fit are reported missing and read as zero.
package acpi
