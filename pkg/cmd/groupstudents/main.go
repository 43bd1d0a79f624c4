package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/peer-grouping/pkg/config"
	"github.com/gilchrisn/peer-grouping/pkg/ingest"
	"github.com/gilchrisn/peer-grouping/pkg/pipeline"
	"github.com/gilchrisn/peer-grouping/pkg/report"
	"github.com/gilchrisn/peer-grouping/pkg/validation"
)

type options struct {
	configFile   string
	logLevel     string
	maxGroupSize int
	tieBreak     string
	format       string
	output       string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "groupstudents",
		Short:        "Form small work groups from students' peer requests",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	group := &cobra.Command{
		Use:   "group <responses.csv>",
		Short: "Group students and list the requests that could not be met",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroup(cmd, opts, args[0])
		},
	}
	group.Flags().IntVar(&opts.maxGroupSize, "max-group-size", 0, "largest allowed group (default from config, 4)")
	group.Flags().StringVar(&opts.tieBreak, "tie-break", "", "order of equal-tier edges: lexicographic or input")
	group.Flags().StringVar(&opts.format, "format", "", "output format: "+strings.Join(report.Formats, ", "))
	group.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")

	validate := &cobra.Command{
		Use:   "validate <responses.csv>",
		Short: "Print response statistics, popular students and likely name typos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
	}

	root.AddCommand(group, validate)
	return root
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.NewConfig()
	if opts.configFile != "" {
		if err := cfg.LoadFromFile(opts.configFile); err != nil {
			return nil, err
		}
	}
	if opts.logLevel != "" {
		cfg.Set("logging.level", opts.logLevel)
	}
	if cmd.Flags().Changed("max-group-size") {
		cfg.Set("grouping.max_group_size", opts.maxGroupSize)
	}
	if opts.tieBreak != "" {
		cfg.Set("grouping.tie_break", opts.tieBreak)
	}
	if opts.format != "" {
		cfg.Set("output.format", opts.format)
	}
	return cfg, nil
}

func readResponses(cfg *config.Config, logger zerolog.Logger, path string) (*ingest.Result, error) {
	responses, err := ingest.ReadFile(path, cfg.Columns())
	if err != nil {
		return nil, err
	}
	for _, col := range responses.MissingColumns {
		logger.Warn().Str("column", col).Msg("Requested-name column not found, treating as empty")
	}
	logger.Info().Str("file", path).Int("responses", len(responses.Submissions)).Msg("Responses loaded")
	return responses, nil
}

func runGroup(cmd *cobra.Command, opts *options, path string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	logger := cfg.CreateLogger()

	responses, err := readResponses(cfg, logger, path)
	if err != nil {
		return err
	}

	result, err := p.Run(cmd.Context(), responses.Submissions)
	if err != nil {
		return err
	}

	writer, err := report.NewWriter(cfg.OutputFormat())
	if err != nil {
		return err
	}

	if opts.output == "" {
		if err := writer.Write(cmd.OutOrStdout(), result.Document()); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}

	if err := writeReportFile(opts.output, writer, result.Document()); err != nil {
		return err
	}
	logger.Info().Str("file", opts.output).Msg("Report written")
	return nil
}

func writeReportFile(path string, writer report.Writer, doc *report.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writer.Write(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func runValidate(cmd *cobra.Command, opts *options, path string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	logger := cfg.CreateLogger()

	responses, err := readResponses(cfg, logger, path)
	if err != nil {
		return err
	}

	graph, _, diag := p.Build(responses.Submissions)
	printDiagnostics(cmd.OutOrStdout(), graph.Registry.Names(), diag)
	return nil
}

func printDiagnostics(w io.Writer, names []string, diag *validation.Report) {
	name := func(i int) string {
		if i >= 0 && i < len(names) {
			return names[i]
		}
		return fmt.Sprintf("#%d", i)
	}

	fmt.Fprintf(w, "%d elements in list\n", diag.Rows)
	fmt.Fprintf(w, "total students in preferences: %d\n", diag.Mentions)
	fmt.Fprintf(w, "Unique students across preferences: %d\n", diag.UniqueStudents)
	if diag.RowErrors > 0 {
		fmt.Fprintf(w, "Rows with unparseable names: %d\n", diag.RowErrors)
	}

	fmt.Fprintln(w, "Most popular kids:")
	for _, p := range diag.Popular {
		fmt.Fprintf(w, "  %-30s %d\n", p.Name, p.Count)
	}

	fmt.Fprintf(w, "%d Potential typos\n", len(diag.PotentialTypos))
	for _, typo := range diag.PotentialTypos {
		fmt.Fprintf(w, " %s <----->  %s\n", typo.A, typo.B)
	}

	if len(diag.NonResponders) > 0 {
		fmt.Fprintf(w, "%d students were named but did not respond:\n", len(diag.NonResponders))
		for _, id := range diag.NonResponders {
			fmt.Fprintf(w, "  %s\n", name(int(id)))
		}
	}
	if len(diag.Isolated) > 0 {
		fmt.Fprintf(w, "%d students have no links to anyone:\n", len(diag.Isolated))
		for _, id := range diag.Isolated {
			fmt.Fprintf(w, "  %s\n", name(int(id)))
		}
	}
	fmt.Fprintf(w, "Connected components: %d\n", diag.Components)
}
