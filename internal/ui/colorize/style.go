package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// RHCTDark highlights JSON reports in the TUI's palette.
var RHCTDark = styles.Register(chroma.MustNewStyle("rhct-dark", chroma.StyleEntries{
	chroma.Text:       "#D4D4D4",
	chroma.Background: "bg:#1e1e1e",

	chroma.NameTag:     "#9CDCFE", // object keys
	chroma.Name:        "#9CDCFE",
	chroma.Keyword:     "#569CD6", // true, false, null
	chroma.String:      "#EACD53",
	chroma.Number:      "#FF5F87",
	chroma.Operator:    "#D4D4D4",
	chroma.Punctuation: "#858585",
}))
