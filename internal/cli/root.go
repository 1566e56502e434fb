// Package cli implements the hrctl command line tool.
package cli

import (
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

type globalOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "hrctl",
		Short:         "hrctl: chat with the HR assistant and inspect its records",
		Long:          "hrctl runs the HR assistant locally: chat with confirmation prompts, list the employee directory, read the archived audit history and serve the rule-based slot extractor over gRPC.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			_ = godotenv.Load()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at info level to stderr")

	rootCmd.AddCommand(
		newChatCmd(opts),
		newEmployeesCmd(),
		newTeamsCmd(),
		newHistoryCmd(),
		newExtractorCmd(opts),
	)

	return rootCmd
}

func (o *globalOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
