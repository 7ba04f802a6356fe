package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/ace/internal/observe"
	"github.com/felixgeelhaar/ace/internal/pipeline"
	"github.com/felixgeelhaar/ace/internal/warmup"
)

var (
	warmupDays    int
	warmupProject string
	warmupLimit   int
	warmupSample  int
	warmupDryRun  bool
	warmupPreview bool
)

var warmupCmd = &cobra.Command{
	Use:   "warmup",
	Short: "Seed the playbook from existing session transcripts",
	Long: `Walks the Claude Code projects directory and runs the analysis pipeline
over historical transcripts, oldest first, to build an initial playbook
before the stop hook takes over.`,
	Run: func(cmd *cobra.Command, args []string) {
		obs := observe.New(os.Stdout, verbose)
		defer obs.Close()

		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		var pipe *pipeline.Pipeline
		if !warmupDryRun && !warmupPreview {
			prov, err := buildProvider(cfg)
			if err != nil {
				obs.Log().Fatal().Err(err).Msg("failed to initialize provider")
			}
			pipe = pipeline.New(store, obs, prov, prov, cfg.FilterModel, cfg.Model)
		}

		runner := warmup.NewRunner(store, pipe, obs, os.Stdout)
		_, err := runner.Run(context.Background(), warmup.Options{
			ProjectsDir:   cfg.ProjectsDir,
			Days:          warmupDays,
			Project:       warmupProject,
			Limit:         warmupLimit,
			SamplePercent: warmupSample,
			DryRun:        warmupDryRun,
			Preview:       warmupPreview,
		})
		if err != nil {
			obs.Log().Fatal().Err(err).Msg("warmup failed")
		}
	},
}

func init() {
	RootCmd.AddCommand(warmupCmd)
	warmupCmd.Flags().IntVar(&warmupDays, "days", 0, "Only analyze sessions from the last N days")
	warmupCmd.Flags().StringVar(&warmupProject, "project", "", "Only analyze sessions matching this name (substring or glob)")
	warmupCmd.Flags().IntVar(&warmupLimit, "limit", 0, "Maximum number of sessions to process")
	warmupCmd.Flags().IntVar(&warmupSample, "sample", 0, "Randomly sample N% of sessions")
	warmupCmd.Flags().BoolVar(&warmupDryRun, "dry-run", false, "Show stats for each transcript without processing")
	warmupCmd.Flags().BoolVar(&warmupPreview, "preview", false, "Show the formatted transcript content that would be analyzed")
}
