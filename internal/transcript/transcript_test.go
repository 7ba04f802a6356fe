package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse(t *testing.T) {
	path := writeTranscript(t,
		`{"type": "summary", "summary": "ignored"}`,
		`{"type": "user", "message": {"content": "fix the bug"}}`,
		``,
		`{"type": "file-history-snapshot", "snapshot": {}}`,
		`{"type": "assistant", "message": {"content": [{"type": "text", "text": "on it"}]}}`,
		`{"type": "system", "ignored": true}`,
	)

	entries, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Type != "user" || entries[1].Type != "assistant" {
		t.Errorf("unexpected entry types: %s, %s", entries[0].Type, entries[1].Type)
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Run("InvalidJSON", func(t *testing.T) {
		path := writeTranscript(t, `{not json`)
		if _, err := Parse(path); err == nil || !strings.Contains(err.Error(), "line 1") {
			t.Errorf("expected line-numbered JSON error, got %v", err)
		}
	})

	t.Run("MissingType", func(t *testing.T) {
		path := writeTranscript(t, `{"message": {"content": "x"}}`)
		if _, err := Parse(path); err == nil || !strings.Contains(err.Error(), "'type'") {
			t.Errorf("expected missing-type error, got %v", err)
		}
	})

	t.Run("MissingMessage", func(t *testing.T) {
		path := writeTranscript(t, `{"type": "user"}`)
		if _, err := Parse(path); err == nil || !strings.Contains(err.Error(), "'message'") {
			t.Errorf("expected missing-message error, got %v", err)
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := Parse(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestFormatForLLM(t *testing.T) {
	path := writeTranscript(t,
		`{"type": "user", "message": {"content": "search for UserAuth"}}`,
		`{"type": "assistant", "message": {"content": [`+
			`{"type": "text", "text": "Searching now."},`+
			`{"type": "tool_use", "name": "Grep", "input": {"pattern": "UserAuth"}},`+
			`{"type": "tool_result", "content": "auth/user.go:12"}]}}`,
	)

	entries, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got := FormatForLLM(entries)

	for _, want := range []string{
		"=== USER ===\nsearch for UserAuth",
		"=== ASSISTANT ===",
		"Searching now.",
		`[TOOL: Grep({"pattern":"UserAuth"})]`,
		"[RESULT: auth/user.go:12]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatForLLM_TruncatesLargeFields(t *testing.T) {
	big := strings.Repeat("x", 2000)
	path := writeTranscript(t,
		`{"type": "assistant", "message": {"content": [{"type": "tool_result", "content": "`+big+`"}]}}`,
	)

	entries, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got := FormatForLLM(entries)
	if strings.Contains(got, big) {
		t.Error("expected large tool result to be truncated")
	}
	if !strings.Contains(got, "...") {
		t.Error("expected truncation marker")
	}
}

func TestFormatForLLM_StructuredUserContent(t *testing.T) {
	path := writeTranscript(t,
		`{"type": "user", "message": {"content": [{"type": "text", "text": "hello"}]}}`,
	)

	entries, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got := FormatForLLM(entries)
	// Non-string user content renders as compact JSON.
	if !strings.Contains(got, `[{"type":"text","text":"hello"}]`) {
		t.Errorf("expected compact JSON rendering, got:\n%s", got)
	}
}
