package worker

import (
	"fmt"

	"github.com/spf13/cobra"

	"koenote-pipeline/internal/app"
	"koenote-pipeline/internal/app/workflow"
	"koenote-pipeline/internal/app/workflow/activities"
	"koenote-pipeline/internal/app/workflow/workflows"
	"koenote-pipeline/internal/config"
)

var configPath string

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
}

// Cmd represents the worker command
var Cmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a workflow worker processing session transcriptions",
	Long: `Run a workflow worker. The worker picks up session transcription
workflows from the task queue, processes each chunk and combines the results.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.Temporal.HostPort == "" {
			return fmt.Errorf("TEMPORAL_HOST must be set to run a worker")
		}

		application, cleanup, err := app.InitializeApplication(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		temporalClient, ok := application.Workflows.(*workflow.TemporalClient)
		if !ok {
			return fmt.Errorf("workflow orchestrator is not configured")
		}

		acts := activities.NewSessionActivities(application.Pipeline, application.Aggregator)
		return workflow.RunWorker(temporalClient.SDKClient(), cfg.Temporal.TaskQueue,
			workflows.SessionTranscriptionWorkflow, acts)
	},
}
