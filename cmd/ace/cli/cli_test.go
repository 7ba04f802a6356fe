package cli

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/ace/internal/playbook"
)

func TestCLI_CommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"hook":     false,
		"analyze":  false,
		"warmup":   false,
		"playbook": false,
		"config":   false,
	}
	for _, cmd := range RootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestCLI_ConfigSubcommands(t *testing.T) {
	for _, cmd := range RootCmd.Commands() {
		if cmd.Name() != "config" {
			continue
		}
		if len(cmd.Commands()) < 3 {
			t.Errorf("expected get, set, and path subcommands, got %d", len(cmd.Commands()))
		}
		return
	}
	t.Error("config command not found")
}

func TestRenderBullets(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		got := renderBullets(nil)
		if !strings.Contains(got, playbook.EmptyPlaybook) {
			t.Errorf("expected empty marker, got %q", got)
		}
	})

	t.Run("GroupsAndScopes", func(t *testing.T) {
		scope := "/home/me/proj"
		got := renderBullets([]playbook.Bullet{
			{ID: "str-00001", Section: playbook.SectionStrategies, Content: "read tests first"},
			{ID: "pit-00001", Section: playbook.SectionPitfalls, ScopePath: &scope, Content: "mind the buffer"},
		})

		for _, want := range []string{
			"Strategies", "Pitfalls",
			"[str-00001]", "[global]", "read tests first",
			"[pit-00001]", "[" + scope + "]", "mind the buffer",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("missing %q in:\n%s", want, got)
			}
		}
		if strings.Index(got, "Strategies") > strings.Index(got, "Pitfalls") {
			t.Error("expected canonical section order")
		}
	})
}
