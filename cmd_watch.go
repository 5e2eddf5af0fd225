package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fd0/wmconf/internal/tree"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags]",
	Short: "Reload the configuration on changes",
	Long: `
The watch command keeps running and parses the configuration again whenever one
of its files changes. Configurations which include command output are also
checked periodically. After every reload which changed the tree, it is printed
again. Stop with Ctrl-C.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return WatchConfig()
	},
}

var watchInterval time.Duration

func init() {
	RootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 5*time.Second, "also check for changes in this interval, 0 disables polling")
	watchCmd.Flags().BoolVarP(&ignoreDiagnostics, "ignore-diagnostics", "I", false, "do not report the number of problems after a reload")
}

// WatchConfig prints the configuration and reprints it after changes.
func WatchConfig() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watchChildren(ctx)
	printEntries(0, cfg)

	V("watching %d file(s)\n", len(ld.Files()))

	return ld.Watch(ctx, watchInterval, func(root *tree.Entry) {
		log.Info("configuration changed", zap.String("path", ld.Path()))

		printText("\n")
		printEntries(0, root)

		if !ignoreDiagnostics {
			if err := checkDiagnostics(false); err != nil {
				log.Warn(err.Error())
			}
		}
	})
}
