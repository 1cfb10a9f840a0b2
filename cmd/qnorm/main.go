package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/qnorm/internal/client"
	"github.com/tensorplex-labs/qnorm/internal/config"
	"github.com/tensorplex-labs/qnorm/internal/quantile"
	"github.com/tensorplex-labs/qnorm/internal/tabular"
	"github.com/tensorplex-labs/qnorm/internal/utils/logger"
	"github.com/tensorplex-labs/qnorm/pkg/qnorm"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "qnorm",
		Short: "Quantile-normalize numeric matrices",
		Long: `qnorm forces every column of a delimited numeric matrix onto the same
distribution: each value is replaced by the mean of the same-rank values across
all columns, keeping every column's original ordering.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.InitWithLevel(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error); defaults from ENVIRONMENT")

	root.AddCommand(newNormalizeCmd(), newRemoteCmd(), &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qnorm v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
		},
	})

	return root
}

type formatFlags struct {
	delimiter string
	precision int
	round     int
}

func (f *formatFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.delimiter, "delimiter", "d", ",", "field delimiter (single character or \"tab\")")
	cmd.Flags().IntVar(&f.precision, "precision", tabular.ShortestPrecision, "decimals written per value (-1 = shortest exact)")
	cmd.Flags().IntVar(&f.round, "round", quantile.NoRounding, "round normalized values to this many decimals (-1 = off)")
}

// resolve layers explicitly set flags over the environment configuration.
func (f *formatFlags) resolve(cmd *cobra.Command) (*config.AppConfig, rune, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, 0, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("delimiter") {
		cfg.DelimiterValue = f.delimiter
	}
	if cmd.Flags().Changed("precision") {
		cfg.FloatPrecision = f.precision
	}
	if cmd.Flags().Changed("round") {
		cfg.RoundingPrecision = f.round
	}

	delimiter, err := cfg.Delimiter()
	if err != nil {
		return nil, 0, err
	}
	return cfg, delimiter, nil
}

func newNormalizeCmd() *cobra.Command {
	var (
		format       formatFlags
		output       string
		tieTolerance float64
		plot         bool
		report       bool
	)

	cmd := &cobra.Command{
		Use:   "normalize <input>",
		Short: "Quantile-normalize a matrix file",
		Long: `Reads a delimited matrix (header row, identifier column first), quantile-normalizes
it and writes the result to --output, or to stdout when no output is given.
Files ending in .zst are read and written zstd-compressed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, delimiter, err := format.resolve(cmd)
			if err != nil {
				return err
			}

			params := cfg.NormalizerParams()
			if cmd.Flags().Changed("tie-tolerance") {
				params.TieTolerance = tieTolerance
			}
			normalizer := quantile.NewNormalizer(quantile.WithNormalizerParams(params))

			m, err := qnorm.Normalize(args[0], output,
				qnorm.WithDelimiter(delimiter),
				qnorm.WithPrecision(cfg.FloatPrecision),
				qnorm.WithNormalizer(normalizer),
			)
			var persistErr *qnorm.PersistError
			if err != nil && !errors.As(err, &persistErr) {
				return err
			}

			// a matrix that could not be persisted still goes to stdout
			if output == "" || persistErr != nil {
				if err := tabular.Encode(cmd.OutOrStdout(), m, tabular.Options{Delimiter: delimiter, Precision: cfg.FloatPrecision}); err != nil {
					return fmt.Errorf("write stdout: %w", err)
				}
			}
			if report {
				printReport(cmd.ErrOrStderr(), m)
			}
			if plot {
				means, err := quantile.QuantileMeansOf(m)
				if err != nil {
					return err
				}
				quantile.PlotQuantileMeans(cmd.ErrOrStderr(), means, "Normalized quantiles")
			}

			// the result was shown, but the requested file is missing
			return err
		},
	}

	format.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	cmd.Flags().Float64Var(&tieTolerance, "tie-tolerance", 0, "values closer than this share a rank (defaults to QNORM_TIE_TOLERANCE)")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot the normalized quantile distribution to stderr")
	cmd.Flags().BoolVar(&report, "report", false, "print per-column statistics to stderr")

	return cmd
}

func newRemoteCmd() *cobra.Command {
	var (
		format    formatFlags
		output    string
		serverURL string
	)

	cmd := &cobra.Command{
		Use:   "remote <input>",
		Short: "Normalize a matrix file on a qnorm server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, delimiter, err := format.resolve(cmd)
			if err != nil {
				return err
			}
			opts := tabular.Options{Delimiter: delimiter, Precision: cfg.FloatPrecision}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			clientCfg, err := client.LoadConfig(ctx)
			if err != nil {
				return err
			}
			if serverURL != "" {
				clientCfg.ServerURL = serverURL
			}

			in, err := tabular.ReadFile(args[0], opts)
			if err != nil {
				return err
			}

			out, err := client.NewClient(clientCfg).Normalize(ctx, in)
			if err != nil {
				return err
			}
			log.Info().Str("server", clientCfg.ServerURL).Msg("matrix normalized remotely")

			if output == "" {
				return tabular.Encode(cmd.OutOrStdout(), out, opts)
			}
			return tabular.WriteFile(output, out, opts)
		},
	}

	format.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	cmd.Flags().StringVar(&serverURL, "server", "", "server URL (defaults to QNORM_SERVER_URL)")

	return cmd
}

func printReport(w io.Writer, m *quantile.Matrix) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "column\tmin\tmax\tmean\tstddev")
	for _, s := range quantile.Summarize(m) {
		fmt.Fprintf(tw, "%s\t%.6g\t%.6g\t%.6g\t%.6g\n", s.Column, s.Min, s.Max, s.Mean, s.StdDev)
	}
	_ = tw.Flush()
}
