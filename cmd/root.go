package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/krau/SaveLink-Bot/cmd/fetch"
	"github.com/krau/SaveLink-Bot/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "savelink-bot",
	Short:        "Telegram bot that downloads links and uploads them back to the chat",
	SilenceUsage: true,
	RunE:         Run,
}

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.AddCommand(versionCmd)
	fetch.Register(rootCmd)
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
