package main

import (
	"os"

	"catalogcrawl/cmd/crawl"
	"catalogcrawl/cmd/runs"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "catalogcrawl",
		Short: "Incremental catalog crawler",
	}
	rootCmd.AddCommand(crawl.Crawl)
	rootCmd.AddCommand(runs.Runs)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
