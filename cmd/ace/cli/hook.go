package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Stop-hook entry point: spawn analysis in the background",
	Long: `Reads the hook payload from stdin, hands it to a detached "ace analyze"
process, and prints {"decision": "approve"} immediately so the session is
never blocked on analysis. The background process appends to the data-dir
log file.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runHook(); err != nil {
			fmt.Fprintf(os.Stderr, "hook failed: %v\n", err)
			// Still approve: a broken hook must never block the session.
		}
		fmt.Println(`{"decision": "approve"}`)
	},
}

func init() {
	RootCmd.AddCommand(hookCmd)
}

func runHook() error {
	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read hook input: %w", err)
	}

	cfg := loadConfig()
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath()), 0750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate own binary: %w", err)
	}

	args := []string{"analyze"}
	if dataDir != "" {
		args = append(args, "--data-dir", dataDir)
	}
	if verbose {
		args = append(args, "--verbose")
	}

	child := exec.Command(self, args...) // #nosec G204
	stdin, err := child.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	child.Stdout = logFile
	child.Stderr = logFile
	// New session so the analysis outlives this hook process.
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to start analysis process: %w", err)
	}
	if _, err := stdin.Write(payload); err != nil {
		return fmt.Errorf("failed to pass payload to analysis process: %w", err)
	}
	if err := stdin.Close(); err != nil {
		return fmt.Errorf("failed to close payload pipe: %w", err)
	}
	// Deliberately no Wait: the child is detached.
	return nil
}
