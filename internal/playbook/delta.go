package playbook

import "fmt"

// OpType discriminates the two delta operations the curator can emit.
type OpType string

const (
	OpAdd       OpType = "ADD"
	OpIncrement OpType = "INCREMENT"
)

// Op is one delta operation against the playbook. The JSON shape matches
// the curator's structured output: ADD ops carry section/path/content,
// INCREMENT ops carry bullet_id/field.
type Op struct {
	Type     OpType  `json:"type"`
	Section  Section `json:"section,omitempty"`
	Path     *string `json:"path,omitempty"`
	Content  string  `json:"content,omitempty"`
	BulletID string  `json:"bullet_id,omitempty"`
	Field    string  `json:"field,omitempty"`
}

// OpResult records the outcome of a single applied operation.
type OpResult struct {
	Op       Op
	BulletID string // ID assigned by an ADD
	Err      error
}

// Apply runs ops in order against the store. Operations fail
// independently: an error on one neither rolls back earlier ops nor stops
// later ones, so a batch with one bad op still lands everything else.
func Apply(s *Store, ops []Op) []OpResult {
	results := make([]OpResult, 0, len(ops))
	for _, op := range ops {
		res := OpResult{Op: op}
		switch op.Type {
		case OpAdd:
			res.BulletID, res.Err = s.Add(op.Section, op.Path, op.Content)
		case OpIncrement:
			res.Err = s.Increment(op.BulletID, op.Field)
		default:
			res.Err = fmt.Errorf("unknown operation type %q", op.Type)
		}
		results = append(results, res)
	}
	return results
}
