// Command unpack compiles plain text JSON schemas and flattens NDJSON
// content accordingly. Given only a data file it prints the inferred
// schema instead, as a head start for writing one by hand.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carnarez/polars-unpack/core/schema"
	"github.com/carnarez/polars-unpack/runtime/frame"
	"github.com/carnarez/polars-unpack/runtime/infer"
	"github.com/carnarez/polars-unpack/runtime/parser"
	"github.com/carnarez/polars-unpack/runtime/planner"
)

const (
	exitInvalidArguments = 1
	exitIOError          = 2
	exitParseError       = 3
	exitPlanError        = 4
)

func main() {
	var (
		strategy  string
		separator string
		debug     bool
	)

	root := &cobra.Command{
		Use:           "unpack",
		Short:         "Flatten nested JSON content according to a plain text schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&strategy, "strategy", "eager", "rename strategy: eager or deferred")
	root.PersistentFlags().StringVar(&separator, "separator", ".", "json path separator")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "dump compiled schema and plan")

	root.AddCommand(
		inferCommand(),
		planCommand(&strategy, &separator, &debug),
		runCommand(&strategy, &separator, &debug),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// codedError tags an error with the process exit code it maps to.
// Subcommands return these instead of exiting so deferred cleanup and
// cobra's error path still run.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	return &codedError{code: code, err: err}
}

// exitCode maps an error chain to the process exit code.
func exitCode(err error) int {
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	return exitInvalidArguments
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func inferCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "infer <data.ndjson>",
		Short: "Print the schema inferred from NDJSON content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return withExitCode(exitIOError, err)
			}
			t, err := infer.Infer(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), infer.Render(t))
			return nil
		},
	}
}

func planCommand(strategy, separator *string, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <schema>",
		Short: "Compile a schema and print its decomposition plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, plan, err := compile(args[0], *strategy, *separator, *debug)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), plan)
			return nil
		},
	}
}

func runCommand(strategy, separator *string, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "run <schema> <data.ndjson>",
		Short: "Compile a schema and flatten NDJSON content with it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(*debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			compiled, plan, err := compile(args[0], *strategy, *separator, *debug)
			if err != nil {
				return err
			}
			logger.Info("schema compiled",
				zap.Int("columns", len(compiled.Columns)),
				zap.Int("steps", len(plan.Steps)),
				zap.String("strategy", plan.Strategy.String()),
			)

			data, err := os.ReadFile(args[1])
			if err != nil {
				return withExitCode(exitIOError, err)
			}
			df, err := frame.FromNDJSON(data)
			if err != nil {
				return err
			}
			flat, err := df.Apply(plan)
			if err != nil {
				logger.Error("plan execution failed", zap.Error(err))
				return withExitCode(exitPlanError, err)
			}
			logger.Info("content unpacked",
				zap.Int("rows", flat.Height()),
				zap.Int("columns", flat.Width()),
			)

			fmt.Fprint(cmd.OutOrStdout(), flat)
			return nil
		},
	}
}

// compile reads, compiles and plans a schema file.
func compile(path, strategy, separator string, debug bool) (*schema.CompiledSchema, *planner.Plan, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, withExitCode(exitIOError, err)
	}

	compiled, err := parser.Parse(string(source), parser.WithSeparator(separator))
	if err != nil {
		return nil, nil, withExitCode(exitParseError, err)
	}
	if debug {
		fmt.Fprint(os.Stderr, spew.Sdump(compiled))
	}

	cfg := planner.Config{Strategy: planner.RenameEager}
	switch strategy {
	case "eager":
	case "deferred":
		cfg.Strategy = planner.RenameDeferred
	default:
		return nil, nil, fmt.Errorf("unknown strategy %q, use eager or deferred", strategy)
	}

	plan, err := planner.Build(compiled, cfg)
	if err != nil {
		return nil, nil, err
	}
	return compiled, plan, nil
}
