package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "ace",
	Short: "Agentic Context Engineering for coding sessions",
	Long: `Ace maintains a playbook of lessons learned from Claude Code sessions.
A stop hook feeds finished transcripts through an analysis pipeline that
distills strategies, code patterns, pitfalls, and context into path-scoped
bullets, which later sessions read back.`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default ~/.ace)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
