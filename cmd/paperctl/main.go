// Command paperctl works with share links and paper files offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paperctl",
	Short: "Offline tools for question papers",
	Long: `paperctl encodes, decodes and renders question papers without a server.

Available commands:
  share  - Build and read share links
  render - Render a paper as a printable HTML document`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(shareCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
