package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/ace/internal/observe"
	"github.com/felixgeelhaar/ace/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the analysis pipeline for one hook payload from stdin",
	Long: `Reads a hook payload ({"transcript_path": ..., "cwd": ...}) from stdin
and runs the full analysis pipeline against it. Normally spawned by
"ace hook"; running it directly is useful for debugging one session.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Stdout is the log file when spawned by the hook, so log as JSON.
		obs := observe.NewJSON(os.Stdout, verbose)
		defer obs.Close()

		var in pipeline.HookInput
		if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
			obs.Log().Fatal().Err(err).Msg("failed to decode hook payload")
		}

		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		prov, err := buildProvider(cfg)
		if err != nil {
			obs.Log().Fatal().Err(err).Msg("failed to initialize provider")
		}

		pipe := pipeline.New(store, obs, prov, prov, cfg.FilterModel, cfg.Model)
		if err := pipe.Run(context.Background(), in); err != nil {
			obs.Log().Fatal().Err(err).Msg("analysis failed")
		}
	},
}

func init() {
	RootCmd.AddCommand(analyzeCmd)
}
