package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

func newApp() *cobra.Command {
	rootCmd := newRootCmd()

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newRefsCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newApp().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
