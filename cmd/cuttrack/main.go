//go:build linux

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ja7ad/cuttrack/pkg/logging"
	"github.com/ja7ad/cuttrack/pkg/pipeline"
)

func main() {
	var toStderr bool

	root := &cobra.Command{
		Use:   "cuttrack",
		Short: "CPU usage tracker",
		Long: `cuttrack samples /proc/stat on a fixed cadence and prints a live,
per-core CPU usage percentage to the terminal until it receives SIGTERM.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(toStderr)
		},
	}
	root.Flags().BoolVar(&toStderr, "stderr", false, "log to stderr instead of a logs/cut-*.log file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(toStderr bool) error {
	logger, closer, err := logging.NewFromConfig(!toStderr)
	if err != nil {
		return fmt.Errorf("open log sink: %w", err)
	}

	logger.Info("startup", "cgroup", detectCgroupKind())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	rt := pipeline.NewRuntime(logger, closer, os.Stdout)
	return rt.Run(ctx)
}
