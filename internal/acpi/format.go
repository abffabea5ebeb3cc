package acpi

import (
	"strconv"
	"strings"
)

// Formatter renders the raw bytes of a field for trace output.
type Formatter func(b []byte) string

func readUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binaryOrder.Uint16(b))
	case 4:
		return uint64(binaryOrder.Uint32(b))
	case 8:
		return binaryOrder.Uint64(b)
	}
	// Odd widths are little-endian too; anything past 8 bytes is ignored.
	n := len(b)
	if n > 8 {
		n = 8
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// Decimal formats an integer field in base 10 (acpiview "%d").
func Decimal(b []byte) string {
	return strconv.FormatUint(readUint(b), 10)
}

// Hex formats an integer field as 0x-prefixed lower-case hex (acpiview "0x%x").
func Hex(b []byte) string {
	return "0x" + strconv.FormatUint(readUint(b), 16)
}

// Chars formats a fixed-width ASCII field such as a signature or OEM ID.
// Unprintable bytes are shown as '.'.
func Chars(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			sb.WriteByte('.')
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

const hexDigits = "0123456789ABCDEF"

// HexBytes formats raw bytes as space separated hex pairs.
func HexBytes(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
	return sb.String()
}

// Named formats an integer field as its decimal value followed by a name
// from names, when one exists.
func Named(names map[uint64]string) Formatter {
	return func(b []byte) string {
		v := readUint(b)
		s := strconv.FormatUint(v, 10)
		if name, ok := names[v]; ok {
			s += " (" + name + ")"
		}
		return s
	}
}

func defaultFormat(width int) Formatter {
	switch width {
	case 1, 2, 4, 8:
		return Decimal
	default:
		return HexBytes
	}
}

// PrintableString returns the printable prefix of b: it stops at the first NUL
// byte and escapes anything outside printable ASCII as \xNN.
func PrintableString(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c == 0 {
			break
		}
		if c < 0x20 || c > 0x7e {
			sb.WriteString(`\x`)
			sb.WriteByte(hexDigits[c>>4])
			sb.WriteByte(hexDigits[c&0x0f])
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
