package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"rhctview/internal/acpi"
	"rhctview/internal/config"
	"rhctview/internal/rhctview/styles"
	"rhctview/internal/ui/colorize"
)

// runText prints the acpiview-style trace followed by the table statistics.
func runText(w io.Writer, cfg config.Config, styled bool, logger *log.Logger) (*decodeResult, error) {
	tracer := &acpi.TextTracer{
		W:           w,
		ShowOffsets: cfg.ShowOffsets,
		Styled:      styled,
	}
	res, err := decodeFile(cfg.TablePath, decodeOptions{
		VerifyChecksum: cfg.VerifyChecksum,
		Tracer:         tracer,
	}, logger)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "\nTable Statistics: %d Error(s)\n", res.Errors)
	return res, nil
}

func runJSON(w io.Writer, cfg config.Config, colored bool, logger *log.Logger) (*decodeResult, error) {
	res, err := decodeFile(cfg.TablePath, decodeOptions{VerifyChecksum: cfg.VerifyChecksum}, logger)
	if err != nil {
		return nil, err
	}

	data, err := res.report().JSON()
	if err != nil {
		return nil, err
	}
	out := string(data)
	if colored {
		out = colorize.ColorizeJSON(out)
	}
	fmt.Fprintln(w, out)
	return res, nil
}

// runMarkdown prints the markdown report, rendered by glamour when width is
// positive and raw otherwise.
func runMarkdown(w io.Writer, cfg config.Config, width int, logger *log.Logger) (*decodeResult, error) {
	res, err := decodeFile(cfg.TablePath, decodeOptions{VerifyChecksum: cfg.VerifyChecksum}, logger)
	if err != nil {
		return nil, err
	}

	md := res.report().Markdown()
	if width > 0 {
		md = styles.RenderMarkdown(md, width)
	}
	fmt.Fprintln(w, md)
	return res, nil
}
