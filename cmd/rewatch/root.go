package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/rewatch"
	"github.com/aretw0/rewatch/internal/cli"
	"github.com/aretw0/rewatch/internal/config"
	"github.com/aretw0/rewatch/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := cli.DefaultWatchOptions()
	var configPath string

	cmd := &cobra.Command{
		Use:   "rewatch [flags] FILENAME COMMAND...",
		Short: "Re-run a command chain whenever a file changes",
		Long: `rewatch watches FILENAME and runs COMMAND every time it is written.

COMMAND may chain several commands with ';' (always continue), '&&' (continue
on success) and '||' (continue on failure). Quote the operators so your shell
passes them through. Every '{}' in an argument is replaced with the path of
the changed file unless --verbatim is set. rewatch exits once FILENAME is removed.`,
		Example: `  rewatch main.go go vet {} '&&' go test ./...
  rewatch --async --init notes.md pandoc {} -o notes.html`,
		Version:       strings.TrimSpace(rewatch.Version),
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := config.Load(configPath, !cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			opts.ApplyConfig(file, cmd.Flags().Changed)
			opts.Target = args[0]
			opts.Command = args[1:]

			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			return cli.RunWatch(sigCtx, opts, tui.NewStdConsole())
		},
	}

	// Everything after FILENAME belongs to the command, flags included.
	cmd.Flags().SetInterspersed(false)

	f := cmd.Flags()
	f.BoolVar(&opts.Verbatim, "verbatim", false, "Do not replace {} with the changed file's path")
	f.BoolVar(&opts.RunOnStart, "do-while", false, "Run the command once before waiting for changes")
	f.BoolVar(&opts.RunOnStart, "init", false, "Alias for --do-while")
	f.BoolVar(&opts.Async, "async", false, "Run each rebuild in the background without waiting for the previous one")
	f.DurationVar(&opts.Debounce, "debounce", opts.Debounce, "Coalesce writes arriving within this window")
	f.StringVar(&configPath, "config", config.DefaultPath, "Settings file (YAML or JSON)")
	f.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve /metrics, /healthz and /history on this address")
	f.StringVar(&opts.HistoryRedis, "history-redis", "", "Keep run history in Redis (redis://host:port/db)")
	f.IntVar(&opts.HistorySize, "history-size", opts.HistorySize, "Number of runs kept in history")
	f.BoolVar(&opts.Debug, "debug", false, "Enable debug logging to stderr")
	f.StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Debug log format: text or json")

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
