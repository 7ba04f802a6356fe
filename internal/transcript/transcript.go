// Package transcript parses Claude Code session transcripts (JSONL) and
// renders them into the text form the analysis prompts consume.
package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one conversation message from a transcript: type "user" or
// "assistant", with the raw message payload for lazy content decoding.
type Entry struct {
	Type    string
	Message json.RawMessage
}

// metadataTypes are known non-conversation entries that are skipped
// rather than treated as malformed.
var metadataTypes = map[string]bool{
	"summary":               true,
	"file-history-snapshot": true,
}

// maxFieldLen caps rendered tool inputs and results so one huge command
// output cannot drown the prompt.
const maxFieldLen = 500

// Parse reads a JSONL transcript and returns its user/assistant entries.
// Known metadata lines are skipped; malformed JSON, a missing type field,
// or a conversation entry without a message payload fail loudly.
func Parse(path string) ([]Entry, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	// Transcript lines carry entire tool outputs; the default token limit
	// is far too small.
	scanner.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)

	var entries []Entry
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", lineNum, err)
		}

		typeRaw, ok := raw["type"]
		if !ok {
			return nil, fmt.Errorf("message on line %d missing 'type' field", lineNum)
		}
		var msgType string
		if err := json.Unmarshal(typeRaw, &msgType); err != nil {
			return nil, fmt.Errorf("invalid 'type' field on line %d: %w", lineNum, err)
		}

		if metadataTypes[msgType] {
			continue
		}
		if msgType != "user" && msgType != "assistant" {
			continue
		}

		message, ok := raw["message"]
		if !ok {
			return nil, fmt.Errorf("%s message on line %d missing 'message' field", msgType, lineNum)
		}

		entries = append(entries, Entry{Type: msgType, Message: message})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	return entries, nil
}

// contentBlock is one element of a structured assistant message.
type contentBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Name    string          `json:"name,omitempty"`
	Input   json.RawMessage `json:"input,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// FormatForLLM renders parsed entries into readable USER/ASSISTANT blocks
// with tool calls and truncated tool results inline.
func FormatForLLM(entries []Entry) string {
	var formatted []string

	for _, e := range entries {
		var msg struct {
			Content json.RawMessage `json:"content"`
		}
		// Parse was strict; here a malformed payload degrades to its raw text.
		_ = json.Unmarshal(e.Message, &msg)

		switch e.Type {
		case "user":
			formatted = append(formatted, "=== USER ===\n"+renderUserContent(msg.Content)+"\n")
		case "assistant":
			formatted = append(formatted, "=== ASSISTANT ===\n"+renderAssistantContent(msg.Content)+"\n")
		}
	}

	return strings.Join(formatted, "\n")
}

func renderUserContent(content json.RawMessage) string {
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}
	return compactJSON(content)
}

func renderAssistantContent(content json.RawMessage) string {
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}

	var blocks []contentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return compactJSON(content)
	}

	var parts []string
	for _, block := range blocks {
		switch block.Type {
		case "text":
			parts = append(parts, block.Text)
		case "tool_use":
			name := block.Name
			if name == "" {
				name = "unknown"
			}
			parts = append(parts, fmt.Sprintf("[TOOL: %s(%s)]", name, truncate(compactJSON(block.Input))))
		case "tool_result":
			var result string
			if err := json.Unmarshal(block.Content, &result); err != nil {
				result = compactJSON(block.Content)
			}
			parts = append(parts, fmt.Sprintf("[RESULT: %s]", truncate(result)))
		}
	}
	return strings.Join(parts, "\n")
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func truncate(s string) string {
	if len(s) > maxFieldLen {
		return s[:maxFieldLen] + "..."
	}
	return s
}
