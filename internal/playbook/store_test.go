package playbook

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ace.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func scoped(path string) *string {
	return &path
}

func TestAdd_SequentialIDs(t *testing.T) {
	s := newTestStore(t)

	expected := map[Section]string{
		SectionStrategies:   "str",
		SectionCodePatterns: "code",
		SectionPitfalls:     "pit",
		SectionContext:      "ctx",
	}

	for section, prefix := range expected {
		for i := 1; i <= 3; i++ {
			id, err := s.Add(section, nil, fmt.Sprintf("%s bullet %d", section, i))
			if err != nil {
				t.Fatalf("Add(%s) failed: %v", section, err)
			}
			want := fmt.Sprintf("%s-%05d", prefix, i)
			if id != want {
				t.Errorf("expected ID %q, got %q", want, id)
			}
		}
	}
}

func TestAdd_InvalidSection(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Add(Section("invalid"), nil, "content")
	if !errors.Is(err, ErrInvalidSection) {
		t.Fatalf("expected ErrInvalidSection, got %v", err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Count != 0 {
		t.Errorf("expected store unchanged after rejected insert, got %d bullets", stats.Count)
	}
}

func TestIncrement(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Add(SectionStrategies, nil, "target")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	other, err := s.Add(SectionStrategies, nil, "bystander")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	for _, field := range []string{FieldHelpful, FieldHelpful, FieldHarmful} {
		if err := s.Increment(id, field); err != nil {
			t.Fatalf("Increment(%s, %s) failed: %v", id, field, err)
		}
	}

	bullets, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	byID := make(map[string]Bullet)
	for _, b := range bullets {
		byID[b.ID] = b
	}

	if got := byID[id]; got.Helpful != 2 || got.Harmful != 1 {
		t.Errorf("expected helpful=2 harmful=1, got helpful=%d harmful=%d", got.Helpful, got.Harmful)
	}
	if got := byID[other]; got.Helpful != 0 || got.Harmful != 0 {
		t.Errorf("expected other row untouched, got helpful=%d harmful=%d", got.Helpful, got.Harmful)
	}

	t.Run("InvalidField", func(t *testing.T) {
		if err := s.Increment(id, "neutral"); !errors.Is(err, ErrInvalidField) {
			t.Errorf("expected ErrInvalidField, got %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if err := s.Increment("str-99999", FieldHelpful); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		got := mustAll(t, s)
		for _, b := range got {
			if b.ID == id {
				continue
			}
			if b.Helpful != 0 || b.Harmful != 0 {
				t.Errorf("bullet %s mutated by failed increment", b.ID)
			}
		}
	})
}

func TestBulletsForPath(t *testing.T) {
	s := newTestStore(t)

	globalID, _ := s.Add(SectionStrategies, nil, "global advice")
	projectID, _ := s.Add(SectionContext, scoped("/project"), "project fact")
	srcID, _ := s.Add(SectionCodePatterns, scoped("/project/src"), "src pattern")
	otherID, _ := s.Add(SectionPitfalls, scoped("/other"), "unrelated pitfall")

	bullets, err := s.BulletsForPath("/project/src/file.py")
	if err != nil {
		t.Fatalf("BulletsForPath failed: %v", err)
	}

	got := make(map[string]bool)
	for _, b := range bullets {
		got[b.ID] = true
	}

	for _, id := range []string{globalID, projectID, srcID} {
		if !got[id] {
			t.Errorf("expected %s in scope results", id)
		}
	}
	if got[otherID] {
		t.Errorf("did not expect %s in scope results", otherID)
	}

	t.Run("LiteralPrefixSemantics", func(t *testing.T) {
		// "/project" matches "/projectile" under the plain prefix rule.
		bullets, err := s.BulletsForPath("/projectile/x")
		if err != nil {
			t.Fatalf("BulletsForPath failed: %v", err)
		}
		found := false
		for _, b := range bullets {
			if b.ID == projectID {
				found = true
			}
		}
		if !found {
			t.Error("expected /project scope to match /projectile/x (literal prefix rule)")
		}
	})
}

func TestOrdering(t *testing.T) {
	s := newTestStore(t)

	// Insert out of canonical order; context before strategies.
	ctxID, _ := s.Add(SectionContext, nil, "a fact")
	lowID, _ := s.Add(SectionStrategies, nil, "seldom helpful")
	highID, _ := s.Add(SectionStrategies, nil, "often helpful")
	for i := 0; i < 3; i++ {
		if err := s.Increment(highID, FieldHelpful); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}

	bullets := mustAll(t, s)
	if len(bullets) != 3 {
		t.Fatalf("expected 3 bullets, got %d", len(bullets))
	}

	wantOrder := []string{highID, lowID, ctxID}
	for i, want := range wantOrder {
		if bullets[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, bullets[i].ID)
		}
	}
}

func TestOrdering_TiesByInsertion(t *testing.T) {
	s := newTestStore(t)

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := s.Add(SectionPitfalls, nil, fmt.Sprintf("pitfall %d", i))
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		ids = append(ids, id)
	}

	bullets := mustAll(t, s)
	for i, b := range bullets {
		if b.ID != ids[i] {
			t.Errorf("position %d: expected %s, got %s", i, ids[i], b.ID)
		}
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Count != 0 || stats.TotalContentLength != 0 || stats.EstimatedTokens != 0 {
		t.Errorf("expected zero stats on empty store, got %+v", stats)
	}

	for _, n := range []int{100, 50} {
		content := make([]byte, n)
		for i := range content {
			content[i] = 'x'
		}
		if _, err := s.Add(SectionStrategies, nil, string(content)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	stats, err = s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Count != 2 {
		t.Errorf("expected count 2, got %d", stats.Count)
	}
	if stats.TotalContentLength != 150 {
		t.Errorf("expected total length 150, got %d", stats.TotalContentLength)
	}
	if stats.EstimatedTokens != 37 {
		t.Errorf("expected 37 estimated tokens, got %d", stats.EstimatedTokens)
	}
}

// Independent store handles over the same file stand in for the separate
// session processes that share the playbook. Interleaved inserts must
// produce a gapless, duplicate-free sequence per section.
func TestAdd_ConcurrentAllocation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ace.db")

	const writers = 4
	const perWriter = 10

	stores := make([]*Store, writers)
	for i := range stores {
		s, err := Open(dbPath)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer s.Close()
		stores[i] = s
	}

	var mu sync.Mutex
	ids := make(map[string]int)
	var wg sync.WaitGroup

	for _, s := range stores {
		wg.Add(1)
		go func(s *Store) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				id, err := s.Add(SectionStrategies, nil, "concurrent bullet")
				if err != nil {
					t.Errorf("concurrent Add failed: %v", err)
					return
				}
				mu.Lock()
				ids[id]++
				mu.Unlock()
			}
		}(s)
	}
	wg.Wait()

	total := writers * perWriter
	if len(ids) != total {
		t.Fatalf("expected %d distinct IDs, got %d", total, len(ids))
	}
	for id, n := range ids {
		if n != 1 {
			t.Errorf("ID %s allocated %d times", id, n)
		}
	}
	// Gapless: every sequence number 1..total must be present.
	for i := 1; i <= total; i++ {
		want := fmt.Sprintf("str-%05d", i)
		if _, ok := ids[want]; !ok {
			t.Errorf("missing sequence ID %s", want)
		}
	}
}

func mustAll(t *testing.T, s *Store) []Bullet {
	t.Helper()
	bullets, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	return bullets
}
