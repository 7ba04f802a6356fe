// Package pipeline runs the staged analysis that turns a finished session
// transcript into playbook updates: triviality filter, trajectory
// reconstruction, reflection, curation.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/ace/internal/observe"
	"github.com/felixgeelhaar/ace/internal/playbook"
	"github.com/felixgeelhaar/ace/internal/provider"
	"github.com/felixgeelhaar/ace/internal/transcript"
)

// HookInput is the payload a Stop hook delivers for one finished session.
type HookInput struct {
	TranscriptPath string `json:"transcript_path"`
	CWD            string `json:"cwd"`
	StopHookActive bool   `json:"stop_hook_active,omitempty"`
}

// Pipeline wires the analysis stages to a playbook store and reasoning
// providers. The filter provider/model handles the cheap triviality
// check; the main pair handles everything else.
type Pipeline struct {
	store       *playbook.Store
	obs         *observe.Observer
	filter      provider.Provider
	main        provider.Provider
	filterModel string
	model       string
}

func New(store *playbook.Store, obs *observe.Observer, filter, main provider.Provider, filterModel, model string) *Pipeline {
	return &Pipeline{
		store:       store,
		obs:         obs,
		filter:      filter,
		main:        main,
		filterModel: filterModel,
		model:       model,
	}
}

// Run analyzes one session transcript and applies the resulting delta
// operations. A trivial session or an active stop hook is a clean no-op.
func (p *Pipeline) Run(ctx context.Context, in HookInput) error {
	ctx, span := p.obs.StartSpan(ctx, "pipeline.Run")
	defer span.End()

	if in.StopHookActive {
		p.obs.Log().Warn().Msg("skipping: stop_hook_active is set (preventing infinite loop)")
		return nil
	}

	transcriptPath := expandHome(in.TranscriptPath)
	cwd := expandHome(in.CWD)

	p.obs.Log().Info().Str("transcript", transcriptPath).Str("cwd", cwd).Msg("starting analysis")

	entries, err := transcript.Parse(transcriptPath)
	if err != nil {
		return fmt.Errorf("failed to parse transcript: %w", err)
	}
	p.obs.Log().Debug().Int("messages", len(entries)).Msg("parsed transcript")

	formatted := transcript.FormatForLLM(entries)

	// Stage 0: triviality filter
	var check TrivialityCheck
	if err := p.stage(ctx, "triviality", p.filter, p.filterModel, fmt.Sprintf(trivialityPrompt, formatted), &check); err != nil {
		return err
	}
	if check.Trivial {
		p.obs.Log().Info().Str("reason", check.Reason).Msg("skipping trivial conversation")
		return nil
	}
	p.obs.Log().Debug().Str("reason", check.Reason).Msg("conversation worth analyzing")

	// Stage 1: trajectory reconstructor
	var trajectory TrajectoryOutput
	if err := p.stage(ctx, "trajectory", p.main, p.model, fmt.Sprintf(trajectoryPrompt, formatted), &trajectory); err != nil {
		return err
	}
	p.obs.Log().Debug().Int("points", len(trajectory.TrajectoryPoints)).Msg("reconstructed trajectory")

	// The bullets that were in scope for this session frame the reflector.
	bullets, err := p.store.BulletsForPath(cwd)
	if err != nil {
		return fmt.Errorf("failed to resolve playbook scope: %w", err)
	}
	playbookText := playbook.Format(bullets)

	// Stage 2: reflector
	trajectoryJSON, err := json.MarshalIndent(trajectory.TrajectoryPoints, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trajectory: %w", err)
	}
	var reflections ReflectorOutput
	if err := p.stage(ctx, "reflector", p.main, p.model, fmt.Sprintf(reflectorPrompt, trajectoryJSON, playbookText), &reflections); err != nil {
		return err
	}
	p.obs.Log().Debug().
		Int("reflections", len(reflections.Reflections)).
		Int("bullet_feedback", len(reflections.BulletFeedback)).
		Msg("generated reflections")

	// Stage 3: curator
	stats, err := p.store.Stats()
	if err != nil {
		return fmt.Errorf("failed to read playbook stats: %w", err)
	}
	reflectionsJSON, err := json.MarshalIndent(reflections, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reflections: %w", err)
	}
	var curated CuratorOutput
	if err := p.stage(ctx, "curator", p.main, p.model, fmt.Sprintf(curatorPrompt, cwd, stats.Count, stats.EstimatedTokens, playbookText, reflectionsJSON), &curated); err != nil {
		return err
	}
	p.obs.Log().Debug().Str("reasoning", curated.Reasoning).Int("operations", len(curated.Operations)).Msg("curated delta operations")

	p.applyDeltas(ctx, curated.Operations)

	p.obs.Log().Info().Msg("analysis completed")
	return nil
}

// applyDeltas applies the curator's operations. Failures are per-op: a
// bad operation is logged and the rest of the batch still lands.
func (p *Pipeline) applyDeltas(ctx context.Context, ops []playbook.Op) {
	_, span := p.obs.StartSpan(ctx, "pipeline.applyDeltas")
	defer span.End()

	for _, res := range playbook.Apply(p.store, ops) {
		switch {
		case res.Err == nil && res.Op.Type == playbook.OpAdd:
			p.obs.Log().Info().Str("bullet", res.BulletID).Str("content", snippet(res.Op.Content)).Msg("added bullet")
		case res.Err == nil:
			p.obs.Log().Info().Str("bullet", res.Op.BulletID).Str("field", res.Op.Field).Msg("incremented counter")
		case errors.Is(res.Err, playbook.ErrInvalidSection), errors.Is(res.Err, playbook.ErrInvalidField):
			p.obs.Log().Warn().Err(res.Err).Msg("rejected invalid operation")
		case errors.Is(res.Err, playbook.ErrNotFound):
			p.obs.Log().Warn().Err(res.Err).Msg("operation targeted unknown bullet")
		default:
			p.obs.Log().Error().Err(res.Err).Msg("failed to apply operation")
		}
	}
}

// stage runs one provider call and decodes its JSON answer into out.
func (p *Pipeline) stage(ctx context.Context, name string, prov provider.Provider, model, prompt string, out any) error {
	ctx, span := p.obs.StartSpan(ctx, "stage."+name)
	defer span.End()

	resp, err := prov.Chat(ctx, model, []provider.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return fmt.Errorf("%s stage failed: %w", name, err)
	}
	p.obs.Log().Debug().Str("stage", name).Int("tokens", resp.Usage.TotalTokens).Msg("stage complete")

	if err := decodeStructured(resp.Content, out); err != nil {
		return fmt.Errorf("%s stage returned malformed output: %w", name, err)
	}
	return nil
}

// decodeStructured parses a model answer into out, tolerating a fenced
// code block around the JSON object.
func decodeStructured(content string, out any) error {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	return json.Unmarshal([]byte(s), out)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func snippet(s string) string {
	if len(s) > 50 {
		return s[:50] + "..."
	}
	return s
}
