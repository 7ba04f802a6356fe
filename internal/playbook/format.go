package playbook

import "strings"

// EmptyPlaybook is the placeholder rendered when no bullets exist.
const EmptyPlaybook = "(No bullets in playbook yet)"

// Format renders bullets into the text projection included in prompts:
// grouped by section in canonical order, one line per bullet with its ID
// and scope annotation. Pure function, any input ordering is accepted,
// though callers pass the store's canonical order for prompt stability.
func Format(bullets []Bullet) string {
	if len(bullets) == 0 {
		return EmptyPlaybook
	}

	bySection := make(map[Section][]Bullet)
	for _, b := range bullets {
		bySection[b.Section] = append(bySection[b.Section], b)
	}

	var parts []string
	for _, section := range SectionOrder {
		group := bySection[section]
		if len(group) == 0 {
			continue
		}
		parts = append(parts, "### "+section.Title())
		for _, b := range group {
			scope := " [global]"
			if b.ScopePath != nil {
				scope = " [scope: " + *b.ScopePath + "]"
			}
			parts = append(parts, "- ["+b.ID+"]"+scope+" "+b.Content)
		}
		parts = append(parts, "")
	}

	return strings.Join(parts, "\n")
}
