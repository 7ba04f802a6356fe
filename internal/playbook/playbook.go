// Package playbook implements the persistent lesson store for ACE.
//
// Bullets are short, scoped lessons extracted from past coding sessions.
// Each bullet is filed under one of four fixed sections, optionally scoped
// to a directory subtree, and carries helpful/harmful feedback counters.
// The store is shared by independent background processes (one per
// session), so every mutation commits as a single SQLite transaction.
package playbook

import (
	"errors"
	"strings"
)

// Section is one of the four fixed categories bullets are filed under.
type Section string

const (
	SectionStrategies   Section = "strategies"
	SectionCodePatterns Section = "code_patterns"
	SectionPitfalls     Section = "pitfalls"
	SectionContext      Section = "context"
)

// SectionOrder is the canonical order for queries and rendering.
var SectionOrder = []Section{
	SectionStrategies,
	SectionCodePatterns,
	SectionPitfalls,
	SectionContext,
}

// sectionPrefixes maps each section to its bullet ID prefix.
var sectionPrefixes = map[Section]string{
	SectionStrategies:   "str",
	SectionCodePatterns: "code",
	SectionPitfalls:     "pit",
	SectionContext:      "ctx",
}

// Valid reports whether s is one of the recognized sections.
func (s Section) Valid() bool {
	_, ok := sectionPrefixes[s]
	return ok
}

// Prefix returns the bullet ID prefix for the section (e.g. "str").
func (s Section) Prefix() string {
	return sectionPrefixes[s]
}

// Title returns the section name as a display header (e.g. "Code Patterns").
func (s Section) Title() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Counter field names accepted by Increment.
const (
	FieldHelpful = "helpful"
	FieldHarmful = "harmful"
)

// Bullet is one stored lesson.
type Bullet struct {
	ID        string  `json:"id"`
	Section   Section `json:"section"`
	ScopePath *string `json:"scope_path,omitempty"` // nil means global
	Helpful   int     `json:"helpful"`
	Harmful   int     `json:"harmful"`
	CreatedAt string  `json:"created_at"`
	Content   string  `json:"content"`
}

// Global reports whether the bullet applies everywhere.
func (b Bullet) Global() bool {
	return b.ScopePath == nil
}

// Errors returned by the store. Callers distinguish them with errors.Is:
// validation failures and missing rows are expected conditions a batch
// runner logs and moves past, anything else is a storage failure.
var (
	ErrInvalidSection = errors.New("invalid section")
	ErrInvalidField   = errors.New("invalid counter field")
	ErrNotFound       = errors.New("bullet not found")
)
