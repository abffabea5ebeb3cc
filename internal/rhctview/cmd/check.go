package cmd

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	rlog "rhctview/internal/rhctview/log"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [table...]",
		Short: "Validate one or more tables without printing the trace",
		Long: `Check decodes each table in parallel and prints one summary line per
table. Without arguments it checks the configured table. It exits with an
error when any table reported an error.`,
		Example: `
# Validate a directory of dumped tables
rhctview check dumps/*.dat

# Also write Prometheus textfile metrics
rhctview check --metrics-file /var/lib/node_exporter/rhct.prom rhct.dat
  `,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE:         runCheck,
	}

	cmd.Flags().Bool("no-checksum", false, "Skip the table checksum check")
	cmd.Flags().String("metrics-file", "", "Write Prometheus textfile metrics to this path")
	cmd.Flags().IntP("jobs", "J", 4, "Tables decoded at once")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	cfg.Strict = true
	if len(args) == 0 {
		args = []string{cfg.TablePath}
	}
	debug, _ := cmd.Flags().GetBool("debug")
	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs < 1 {
		jobs = 1
	}

	lg := newLogger(cmd, cfg, debug)
	defer lg.Close()
	rlog.Setup(lg.Logger, debug)

	results := make([]*decodeResult, len(args))
	var (
		mu       sync.Mutex
		failures []error
	)

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range args {
		g.Go(func() error {
			defer rlog.RecoverPanic("check "+path, nil)

			res, err := decodeFile(path, decodeOptions{VerifyChecksum: cfg.VerifyChecksum}, lg.Logger)
			if err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := cmd.OutOrStdout()
	var (
		decoded []*decodeResult
		total   uint64
	)
	for i, res := range results {
		if res == nil {
			fmt.Fprintf(out, "%s: unreadable\n", args[i])
			continue
		}
		decoded = append(decoded, res)
		total += res.Errors
		fmt.Fprintf(out, "%s: %s\n", args[i], checkSummary(res))
	}
	fmt.Fprintf(out, "Total: %d Error(s)\n", total)

	for _, err := range failures {
		lg.Error("Failed to read table", "error", err)
	}
	if err := finish(cfg, decoded...); err != nil {
		return err
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d table(s) could not be read", len(failures))
	}
	return nil
}

func checkSummary(res *decodeResult) string {
	nodes := 0
	if res.Table != nil {
		nodes = len(res.Table.Nodes)
	}
	s := fmt.Sprintf("%d node(s), %d error(s)", nodes, res.Errors)
	if res.Err != nil {
		s += ": " + res.Err.Error()
	}
	return s
}
