package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/ace/internal/playbook"
)

var showPath string

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575"))

	scopeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080"))

	emptyStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#808080"))
)

var playbookCmd = &cobra.Command{
	Use:   "playbook",
	Short: "Inspect the playbook",
}

var playbookShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the playbook, optionally resolved for a working directory",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		var (
			bullets []playbook.Bullet
			err     error
		)
		if showPath != "" {
			bullets, err = store.BulletsForPath(showPath)
		} else {
			bullets, err = store.All()
		}
		if err != nil {
			fmt.Printf("Failed to read playbook: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(renderBullets(bullets))
	},
}

var playbookStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print playbook size statistics",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		stats, err := store.Stats()
		if err != nil {
			fmt.Printf("Failed to read playbook stats: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(headerStyle.Render("Playbook stats"))
		fmt.Printf("  Bullets:          %d\n", stats.Count)
		fmt.Printf("  Content length:   %d\n", stats.TotalContentLength)
		fmt.Printf("  Estimated tokens: %d\n", stats.EstimatedTokens)
		fmt.Printf("  Database:         %s\n", cfg.DBPath())
	},
}

// renderBullets is the styled sibling of playbook.Format: same grouping
// and ordering, colors instead of markdown headers.
func renderBullets(bullets []playbook.Bullet) string {
	if len(bullets) == 0 {
		return emptyStyle.Render(playbook.EmptyPlaybook)
	}

	bySection := make(map[playbook.Section][]playbook.Bullet)
	for _, b := range bullets {
		bySection[b.Section] = append(bySection[b.Section], b)
	}

	var out strings.Builder
	for _, section := range playbook.SectionOrder {
		group := bySection[section]
		if len(group) == 0 {
			continue
		}
		out.WriteString(headerStyle.Render(section.Title()) + "\n")
		for _, b := range group {
			scope := "global"
			if b.ScopePath != nil {
				scope = *b.ScopePath
			}
			out.WriteString(fmt.Sprintf("  %s %s %s\n",
				idStyle.Render("["+b.ID+"]"),
				scopeStyle.Render("["+scope+"]"),
				b.Content))
		}
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

func init() {
	RootCmd.AddCommand(playbookCmd)
	playbookCmd.AddCommand(playbookShowCmd)
	playbookCmd.AddCommand(playbookStatsCmd)
	playbookShowCmd.Flags().StringVar(&showPath, "path", "", "Resolve the playbook for this working directory")
}
