package playbook

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the bullet repository backed by a single SQLite database file.
//
// The file is the only coordination channel between the background
// processes that update the playbook. The DSN opens every transaction in
// immediate mode so the count-then-insert sequence in Add holds the write
// lock for its whole duration; busy_timeout makes concurrent writers
// queue instead of failing, and WAL keeps readers unblocked meanwhile.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the playbook database at path.
// The containing directory is created and the schema initialized
// idempotently on first use.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create playbook directory: %w", err)
	}

	dsn := "file:" + path +
		"?_txlock=immediate" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open playbook database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bullets (
			id TEXT PRIMARY KEY,
			section TEXT NOT NULL,
			path TEXT,
			helpful INTEGER DEFAULT 0,
			harmful INTEGER DEFAULT 0,
			created TEXT NOT NULL,
			content TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_bullets_section ON bullets(section);`,
		`CREATE INDEX IF NOT EXISTS idx_bullets_path ON bullets(path);`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// canonical section order, then most-helpful first, ties by insertion order
const bulletOrder = `ORDER BY CASE section
		WHEN 'strategies' THEN 0
		WHEN 'code_patterns' THEN 1
		WHEN 'pitfalls' THEN 2
		ELSE 3
	END, helpful DESC, rowid`

// Add persists a new bullet and returns its assigned ID (e.g. "str-00001").
// IDs are section-scoped sequence numbers. The count and the insert run in
// one immediate write transaction, so two uncoordinated processes adding
// to the same section can never allocate the same sequence number.
func (s *Store) Add(section Section, scopePath *string, content string) (string, error) {
	if !section.Valid() {
		return "", fmt.Errorf("%w: %q (must be one of %v)", ErrInvalidSection, section, SectionOrder)
	}
	prefix := section.Prefix()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM bullets WHERE id LIKE ?`, prefix+"-%").Scan(&count); err != nil {
		return "", fmt.Errorf("failed to count %s bullets: %w", prefix, err)
	}

	id := fmt.Sprintf("%s-%05d", prefix, count+1)
	created := time.Now().UTC().Format(time.RFC3339)

	_, err = tx.Exec(
		`INSERT INTO bullets (id, section, path, created, content) VALUES (?, ?, ?, ?, ?)`,
		id, string(section), scopePath, created, content,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert bullet %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit bullet %s: %w", id, err)
	}
	return id, nil
}

// Increment bumps the helpful or harmful counter on an existing bullet by
// exactly one. Counters only ever increase; there is no decrement.
func (s *Store) Increment(id, field string) error {
	if field != FieldHelpful && field != FieldHarmful {
		return fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidField, field, FieldHelpful, FieldHarmful)
	}

	// field is validated against the closed set above, safe to splice
	res, err := s.db.Exec(`UPDATE bullets SET `+field+` = `+field+` + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment %s on %s: %w", field, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to increment %s on %s: %w", field, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// All returns the full corpus in canonical order.
func (s *Store) All() ([]Bullet, error) {
	return s.query(`SELECT id, section, path, helpful, harmful, created, content FROM bullets `+bulletOrder, nil)
}

// BulletsForPath returns every bullet applicable to the given working
// directory: global bullets plus any bullet whose scope path is a string
// prefix of cwd.
//
// Matching is a plain string-prefix test, not segment-aware: a scope of
// "/foo" also matches "/foobar/x". Existing corpora were written under
// that rule, so it is kept as-is; see DESIGN.md before changing it.
func (s *Store) BulletsForPath(cwd string) ([]Bullet, error) {
	query := `SELECT id, section, path, helpful, harmful, created, content FROM bullets
		WHERE path IS NULL OR ? LIKE path || '%' ` + bulletOrder
	return s.query(query, []any{cwd})
}

func (s *Store) query(query string, args []any) ([]Bullet, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bullets: %w", err)
	}
	defer rows.Close()

	var bullets []Bullet
	for rows.Next() {
		var b Bullet
		var section string
		if err := rows.Scan(&b.ID, &section, &b.ScopePath, &b.Helpful, &b.Harmful, &b.CreatedAt, &b.Content); err != nil {
			return nil, fmt.Errorf("failed to scan bullet: %w", err)
		}
		b.Section = Section(section)
		bullets = append(bullets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bullets: %w", err)
	}
	return bullets, nil
}

// Stats holds aggregate playbook statistics, used for prompt budgeting.
type Stats struct {
	Count              int `json:"bullet_count"`
	TotalContentLength int `json:"total_content_length"`
	EstimatedTokens    int `json:"estimated_tokens"`
}

// Stats returns the bullet count and a rough token estimate for the
// corpus (4 characters per token on average).
func (s *Store) Stats() (Stats, error) {
	var st Stats
	row := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(LENGTH(content)), 0) FROM bullets`)
	if err := row.Scan(&st.Count, &st.TotalContentLength); err != nil {
		return Stats{}, fmt.Errorf("failed to read playbook stats: %w", err)
	}
	st.EstimatedTokens = st.TotalContentLength / 4
	return st, nil
}
