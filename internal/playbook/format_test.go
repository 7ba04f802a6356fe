package playbook

import (
	"strings"
	"testing"
)

func TestFormat_Empty(t *testing.T) {
	got := Format(nil)
	if got != EmptyPlaybook {
		t.Errorf("expected %q, got %q", EmptyPlaybook, got)
	}
}

func TestFormat_GroupsAndAnnotations(t *testing.T) {
	bullets := []Bullet{
		{ID: "str-00001", Section: SectionStrategies, Content: "read tests first"},
		{ID: "code-00001", Section: SectionCodePatterns, ScopePath: scoped("/project"), Content: "use table tests"},
		{ID: "pit-00001", Section: SectionPitfalls, Content: "avoid global state"},
		{ID: "ctx-00001", Section: SectionContext, ScopePath: scoped("/project/src"), Content: "entrypoint is main.go"},
	}

	got := Format(bullets)

	for _, header := range []string{"### Strategies", "### Code Patterns", "### Pitfalls", "### Context"} {
		if !strings.Contains(got, header) {
			t.Errorf("missing header %q in:\n%s", header, got)
		}
	}

	lines := map[string]string{
		"str-00001":  "- [str-00001] [global] read tests first",
		"code-00001": "- [code-00001] [scope: /project] use table tests",
		"pit-00001":  "- [pit-00001] [global] avoid global state",
		"ctx-00001":  "- [ctx-00001] [scope: /project/src] entrypoint is main.go",
	}
	for id, line := range lines {
		if n := strings.Count(got, "["+id+"]"); n != 1 {
			t.Errorf("expected ID %s to appear exactly once, found %d", id, n)
		}
		if !strings.Contains(got, line) {
			t.Errorf("missing line %q in:\n%s", line, got)
		}
	}

	// Sections render in canonical order regardless of input order.
	if strings.Index(got, "### Strategies") > strings.Index(got, "### Context") {
		t.Error("expected Strategies before Context")
	}
}

func TestFormat_SkipsEmptySections(t *testing.T) {
	got := Format([]Bullet{{ID: "pit-00001", Section: SectionPitfalls, Content: "x"}})
	if strings.Contains(got, "### Strategies") {
		t.Error("did not expect a header for an empty section")
	}
}

func TestSectionTitle(t *testing.T) {
	cases := map[Section]string{
		SectionStrategies:   "Strategies",
		SectionCodePatterns: "Code Patterns",
		SectionPitfalls:     "Pitfalls",
		SectionContext:      "Context",
	}
	for section, want := range cases {
		if got := section.Title(); got != want {
			t.Errorf("Title(%s): expected %q, got %q", section, want, got)
		}
	}
}
