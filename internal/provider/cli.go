package provider

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CLIProvider shells out to a locally installed agent CLI (claude, codex,
// gemini, llm). The model argument is ignored; the binary's configured
// default model answers. Useful when no API key is available.
type CLIProvider struct {
	binaryPath string
	args       []string
}

func NewCLIProvider(binaryPath string, args []string) (*CLIProvider, error) {
	if binaryPath == "" {
		return nil, fmt.Errorf("binary path is required for CLI provider")
	}
	return &CLIProvider{
		binaryPath: binaryPath,
		args:       args,
	}, nil
}

// DetectCLIProvider finds a usable local agent CLI, preferring an
// explicitly configured path over auto-detection.
func DetectCLIProvider(configuredPath string) (*CLIProvider, error) {
	if configuredPath != "" {
		return NewCLIProvider(configuredPath, []string{})
	}

	tools := []string{"claude", "codex", "gemini", "llm"}
	for _, t := range tools {
		path, err := exec.LookPath(t)
		if err == nil {
			return NewCLIProvider(path, []string{})
		}
	}

	return nil, fmt.Errorf("no local CLI agents detected (tried claude, codex, gemini, llm)")
}

func (p *CLIProvider) Name() string {
	return "cli-" + p.binaryPath
}

func (p *CLIProvider) Chat(ctx context.Context, model string, messages []Message) (*Response, error) {
	var prompt string
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}

	fullArgs := append(p.args, prompt)

	execCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(execCtx, p.binaryPath, fullArgs...)

	output, err := cmd.CombinedOutput()
	result := string(output)

	if err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("cli agent timed out: %w", err)
		}
		return nil, fmt.Errorf("cli agent failed: %w\nOutput: %s", err, result)
	}

	return &Response{
		Content: result,
		Usage: Usage{
			TotalTokens: len(strings.Fields(result)),
		},
	}, nil
}
