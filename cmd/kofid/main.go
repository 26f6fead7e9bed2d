package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kofid <command>",
	Short: "Ko-fi webhook relay for Discord",
	Long: `kofid receives Ko-fi donation and subscription webhooks, posts
notifications to Discord, and keeps a rolling supporter ledger in a GitHub
Gist or PostgreSQL document.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
