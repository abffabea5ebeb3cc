// Package colorize highlights report output with chroma.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// NoColorEnv disables highlighting when set to any non-empty value.
const NoColorEnv = "RHCTVIEW_NO_COLOR"

// Enabled reports whether highlighting is on.
func Enabled() bool {
	return os.Getenv(NoColorEnv) == ""
}

// getStyle returns the report style with fallbacks
func getStyle() *chroma.Style {
	candidates := []string{"rhct-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Highlight colors code with the lexer registered for language. Unknown
// languages and disabled colors return code unchanged.
func Highlight(code, language string) (string, error) {
	if !Enabled() {
		return code, nil
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return code, nil
	}

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// ColorizeJSON highlights a JSON document, falling back to plain text.
func ColorizeJSON(code string) string {
	out, err := Highlight(code, "json")
	if err != nil {
		return code
	}
	return out
}

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
