// Package warmup seeds the playbook from existing session transcripts:
// offline adaptation over historical data before the stop hook takes over
// online.
package warmup

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/felixgeelhaar/ace/internal/observe"
	"github.com/felixgeelhaar/ace/internal/pipeline"
	"github.com/felixgeelhaar/ace/internal/playbook"
	"github.com/felixgeelhaar/ace/internal/transcript"
)

// Options filters which transcripts a warmup run processes.
type Options struct {
	ProjectsDir   string
	Days          int    // only sessions modified in the last N days (0 = all)
	Project       string // substring or glob match against the transcript path
	Limit         int    // max sessions to process (0 = no limit)
	SamplePercent int    // random sample N% of matches before the limit (0 = all)
	DryRun        bool   // report per-transcript stats without running the pipeline
	Preview       bool   // like DryRun, plus a formatted-transcript excerpt
}

// Transcript is one discovered session file.
type Transcript struct {
	Path    string
	ModTime time.Time
}

// Summary accounts for one warmup run.
type Summary struct {
	Found          int
	Selected       int
	Processed      int
	SkippedTrivial int
	Errors         int
	InitialBullets int
	FinalBullets   int
}

// Runner drives the analysis pipeline over discovered transcripts.
type Runner struct {
	store *playbook.Store
	pipe  *pipeline.Pipeline
	obs   *observe.Observer
	out   io.Writer
}

func NewRunner(store *playbook.Store, pipe *pipeline.Pipeline, obs *observe.Observer, out io.Writer) *Runner {
	return &Runner{store: store, pipe: pipe, obs: obs, out: out}
}

// FindTranscripts walks the projects dir for *.jsonl session files,
// skipping agent-* subagent transcripts, and applies the age and project
// filters. Results come back in modification-time order, oldest first,
// so processing stays chronological.
func FindTranscripts(projectsDir string, days int, project string) ([]Transcript, error) {
	var cutoff time.Time
	if days > 0 {
		cutoff = time.Now().AddDate(0, 0, -days)
	}

	var found []Transcript
	err := filepath.WalkDir(projectsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		if strings.HasPrefix(d.Name(), "agent-") {
			return nil
		}
		if project != "" && !matchesProject(path, project) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if days > 0 && info.ModTime().Before(cutoff) {
			return nil
		}

		found = append(found, Transcript{Path: path, ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan projects directory: %w", err)
	}

	sortByModTime(found)
	return found, nil
}

// matchesProject accepts either a plain substring (case-insensitive, the
// common case) or a doublestar glob against the full path.
func matchesProject(path, project string) bool {
	if strings.Contains(strings.ToLower(path), strings.ToLower(project)) {
		return true
	}
	if strings.ContainsAny(project, "*?[{") {
		ok, err := doublestar.Match(project, path)
		return err == nil && ok
	}
	return false
}

func sortByModTime(ts []Transcript) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].ModTime.Before(ts[j].ModTime) })
}

// ExtractCWD recovers the session's working directory from the encoded
// project directory name: "-Users-josh-myproject" means
// "/Users/josh/myproject". Dashes that were part of the original path are
// indistinguishable from separators, so this is a best-effort decode.
func ExtractCWD(transcriptPath string) string {
	encoded := filepath.Base(filepath.Dir(transcriptPath))
	if strings.HasPrefix(encoded, "-") {
		parts := strings.Split(encoded, "-")
		return "/" + strings.Join(parts[1:], "/")
	}
	return "/" + strings.ReplaceAll(encoded, "-", "/")
}

// Run discovers, filters, and processes transcripts per opts. Per-transcript
// pipeline failures are counted and skipped, not fatal.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	if _, err := os.Stat(opts.ProjectsDir); err != nil {
		return nil, fmt.Errorf("no projects directory at %s: %w", opts.ProjectsDir, err)
	}

	found, err := FindTranscripts(opts.ProjectsDir, opts.Days, opts.Project)
	if err != nil {
		return nil, err
	}

	selected := found
	if opts.SamplePercent > 0 && opts.SamplePercent < 100 && len(selected) > 0 {
		n := len(selected) * opts.SamplePercent / 100
		if n < 1 {
			n = 1
		}
		rand.Shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })
		selected = selected[:n]
		sortByModTime(selected)
	}
	if opts.Limit > 0 && len(selected) > opts.Limit {
		selected = selected[:opts.Limit]
	}

	summary := &Summary{Found: len(found), Selected: len(selected)}
	fmt.Fprintf(r.out, "Found %d transcript(s), processing %d\n", summary.Found, summary.Selected)
	if len(selected) == 0 {
		return summary, nil
	}

	if opts.DryRun || opts.Preview {
		r.report(selected, opts.Preview, summary)
		return summary, nil
	}

	initial, err := r.store.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to read playbook stats: %w", err)
	}
	summary.InitialBullets = initial.Count

	for i, tr := range selected {
		cwd := ExtractCWD(tr.Path)
		fmt.Fprintf(r.out, "[%d/%d] %s (cwd %s)\n", i+1, len(selected), filepath.Base(tr.Path), cwd)

		before, err := r.store.Stats()
		if err != nil {
			return nil, fmt.Errorf("failed to read playbook stats: %w", err)
		}

		err = r.pipe.Run(ctx, pipeline.HookInput{TranscriptPath: tr.Path, CWD: cwd})
		if err != nil {
			r.obs.Log().Error().Err(err).Str("transcript", tr.Path).Msg("warmup transcript failed")
			fmt.Fprintf(r.out, "  error: %v\n", err)
			summary.Errors++
			continue
		}

		after, err := r.store.Stats()
		if err != nil {
			return nil, fmt.Errorf("failed to read playbook stats: %w", err)
		}
		if added := after.Count - before.Count; added > 0 {
			fmt.Fprintf(r.out, "  added %d bullet(s)\n", added)
			summary.Processed++
		} else {
			fmt.Fprintf(r.out, "  skipped (trivial or no insights)\n")
			summary.SkippedTrivial++
		}
	}

	final, err := r.store.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to read playbook stats: %w", err)
	}
	summary.FinalBullets = final.Count

	fmt.Fprintf(r.out, "\nWarmup complete: %d processed, %d skipped, %d errors\n",
		summary.Processed, summary.SkippedTrivial, summary.Errors)
	fmt.Fprintf(r.out, "Playbook growth: %d -> %d bullets (~%d tokens)\n",
		summary.InitialBullets, summary.FinalBullets, final.EstimatedTokens)
	return summary, nil
}

// report prints per-transcript stats without touching the store or any
// provider.
func (r *Runner) report(selected []Transcript, preview bool, summary *Summary) {
	totalMessages := 0
	totalTokens := 0

	for i, tr := range selected {
		fmt.Fprintf(r.out, "[%d/%d] %s\n", i+1, len(selected), filepath.Base(tr.Path))
		fmt.Fprintf(r.out, "  Modified: %s\n", tr.ModTime.Format("2006-01-02 15:04"))
		fmt.Fprintf(r.out, "  CWD: %s\n", ExtractCWD(tr.Path))

		entries, err := transcript.Parse(tr.Path)
		if err != nil {
			fmt.Fprintf(r.out, "  error reading: %v\n", err)
			summary.Errors++
			continue
		}
		formatted := transcript.FormatForLLM(entries)
		tokens := len(formatted) / 4

		users, assistants := 0, 0
		for _, e := range entries {
			if e.Type == "user" {
				users++
			} else {
				assistants++
			}
		}
		totalMessages += len(entries)
		totalTokens += tokens

		fmt.Fprintf(r.out, "  Messages: %d (%d user, %d assistant)\n", len(entries), users, assistants)
		fmt.Fprintf(r.out, "  Estimated tokens: %d\n", tokens)

		if preview {
			excerpt := formatted
			if len(excerpt) > 1500 {
				excerpt = excerpt[:1500] + "\n[...truncated...]"
			}
			fmt.Fprintf(r.out, "  --- transcript preview ---\n")
			for _, line := range strings.Split(excerpt, "\n") {
				fmt.Fprintf(r.out, "  %s\n", line)
			}
			fmt.Fprintf(r.out, "  --- end preview ---\n")
		}
	}

	fmt.Fprintf(r.out, "\nTotal: %d transcripts, %d messages, ~%d tokens\n",
		len(selected), totalMessages, totalTokens)
	fmt.Fprintf(r.out, "Run without --dry-run/--preview to process\n")
}
