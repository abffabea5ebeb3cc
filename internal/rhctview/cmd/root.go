package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"rhctview/internal/config"
	"rhctview/internal/logging"
	rlog "rhctview/internal/rhctview/log"
	"rhctview/internal/ui/colorize"
)

// ErrTableErrors is returned in strict mode when any table error was counted.
var ErrTableErrors = errors.New("table errors reported")

// stdoutIsTerminal is swapped out by tests.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(os.Stdout.Fd())
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rhctview [table]",
		Short: "Decode the RISC-V Hart Capabilities Table",
		Long: `Rhctview decodes an ACPI RHCT (RISC-V Hart Capabilities Table) and shows
every field the way acpiview does. Without arguments it reads the table the
running firmware exposes under /sys/firmware/acpi/tables.`,
		Example: `
# Browse the running system's table
rhctview

# Trace a table dumped with acpidump -b
rhctview --no-tui rhct.dat

# JSON report for regression testing
rhctview --json rhct.dat
  `,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	cmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	cmd.PersistentFlags().String("config", "", "Config file (default ~/.config/rhctview/config.yaml)")

	cmd.Flags().BoolP("help", "h", false, "Help")
	cmd.Flags().BoolP("no-tui", "n", false, "Print the field trace without the TUI")
	cmd.Flags().BoolP("json", "j", false, "Output a JSON report")
	cmd.Flags().BoolP("markdown", "m", false, "Output a markdown report")
	cmd.Flags().BoolP("offsets", "o", false, "Prefix traced fields with [offset:width]")
	cmd.Flags().Bool("strict", false, "Exit with an error when any table error was counted")
	cmd.Flags().Bool("no-checksum", false, "Skip the table checksum check")
	cmd.Flags().String("metrics-file", "", "Write Prometheus textfile metrics to this path")

	cmd.AddCommand(newCheckCmd(), newSchemaCmd())
	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	debug, _ := cmd.Flags().GetBool("debug")

	lg := newLogger(cmd, cfg, debug)
	defer lg.Close()
	rlog.Setup(lg.Logger, debug)

	noColor := cfg.NoColor || !colorize.Enabled()
	terminal := stdoutIsTerminal()
	out := cmd.OutOrStdout()

	var res *decodeResult
	switch cfg.Output {
	case config.OutputJSON:
		res, err = runJSON(out, cfg, terminal && !noColor, lg.Logger)
	case config.OutputMarkdown:
		width := 0
		if terminal {
			width = terminalWidth()
		}
		res, err = runMarkdown(out, cfg, width, lg.Logger)
	case config.OutputText:
		res, err = runText(out, cfg, terminal && !noColor, lg.Logger)
	default:
		return runTUI(cmd.Context(), cfg, lg.GetLevel())
	}
	if err != nil {
		return err
	}
	return finish(cfg, res)
}

// finish writes metrics and applies strict mode.
func finish(cfg config.Config, results ...*decodeResult) error {
	if cfg.MetricsFile != "" {
		if err := writeMetrics(cfg.MetricsFile, results...); err != nil {
			return err
		}
	}
	if !cfg.Strict {
		return nil
	}
	var total uint64
	for _, r := range results {
		total += r.Errors
	}
	if total > 0 {
		return fmt.Errorf("%w: %d error(s)", ErrTableErrors, total)
	}
	return nil
}

func runTUI(ctx context.Context, cfg config.Config, level charmlog.Level) error {
	program := tea.NewProgram(
		NewModel(cfg, level),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if err != nil {
		slog.Error("TUI run error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	m, ok := final.(model)
	if !ok {
		return nil
	}
	if m.result == nil {
		return m.err
	}
	return finish(cfg, m.result)
}

// resolveConfig loads the config file and applies flags and arguments on top.
func resolveConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return cfg, err
	}

	if len(args) > 0 {
		cfg.TablePath = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("offsets") {
		cfg.ShowOffsets, _ = flags.GetBool("offsets")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if noChecksum, _ := flags.GetBool("no-checksum"); noChecksum {
		cfg.VerifyChecksum = false
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile, _ = flags.GetString("metrics-file")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}

	jsonOutput, _ := flags.GetBool("json")
	markdown, _ := flags.GetBool("markdown")
	noTUI, _ := flags.GetBool("no-tui")
	switch {
	case jsonOutput && markdown:
		return cfg, errors.New("--json and --markdown are mutually exclusive")
	case jsonOutput:
		cfg.Output = config.OutputJSON
	case markdown:
		cfg.Output = config.OutputMarkdown
	case noTUI:
		cfg.Output = config.OutputText
	}

	// The TUI needs a terminal.
	if cfg.Output == config.OutputTUI && !stdoutIsTerminal() {
		cfg.Output = config.OutputText
	}
	return cfg, cfg.Validate()
}

// newLogger builds the diagnostic logger. The env level wins over the config
// level; --debug wins over both.
func newLogger(cmd *cobra.Command, cfg config.Config, debug bool) *logging.LoggerCloser {
	var lg *logging.LoggerCloser
	if os.Getenv(logging.EnvToFile) == "1" {
		lg = logging.NewLogger()
	} else {
		lg = logging.NewLoggerWithWriter(cmd.ErrOrStderr())
	}
	if os.Getenv(logging.EnvLevel) == "" {
		lg.SetLevel(logging.ParseLevel(cfg.LogLevel))
	}
	if debug {
		lg.SetLevel(charmlog.DebugLevel)
	}
	return lg
}

func terminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

func Execute() {
	// Bypass fang when output is being piped or a machine-readable mode was
	// asked for, so its styling never reaches the output.
	plain := !stdoutIsTerminal()
	for _, arg := range os.Args[1:] {
		if arg == "--json" || arg == "-j" || arg == "--no-tui" || arg == "-n" {
			plain = true
			break
		}
	}

	var err error
	if plain {
		err = rootCmd.Execute()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	} else {
		err = fang.Execute(
			context.Background(),
			rootCmd,
			fang.WithNotifySignal(os.Interrupt),
		)
	}
	if err != nil {
		os.Exit(1)
	}
}
