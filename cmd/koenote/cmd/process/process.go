package process

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"koenote-pipeline/internal/app"
	"koenote-pipeline/internal/app/model"
	"koenote-pipeline/internal/config"
)

var (
	configPath string
	sessionID  string
	userID     string
	audioKeys  []string
)

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	Cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id of the recording")
	Cmd.Flags().StringVarP(&userID, "user", "u", "default", "user id owning the recording")
	Cmd.Flags().StringSliceVarP(&audioKeys, "keys", "k", nil, "object keys of the audio chunks, in capture order")

	Cmd.MarkFlagRequired("session")
	Cmd.MarkFlagRequired("keys")
}

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process",
	Short: "Process a recording's chunks locally and print the combined result",
	Long: `Process a recording's chunks locally, without a workflow orchestrator.
Each chunk is downloaded, transcribed and normalized in order; afterwards the
results are combined into the final transcript and summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		application, cleanup, err := app.InitializeApplication(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := context.Background()

		progress := mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(120*time.Millisecond),
			mpb.WithWaitGroup(&sync.WaitGroup{}),
		)
		bar := progress.AddBar(int64(len(audioKeys)),
			mpb.PrependDecorators(
				decor.Name("chunks ", decor.WC{W: 7, C: decor.DindentRight}),
				decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.NewPercentage("%.1f", decor.WCSyncSpace),
			),
		)

		for i, key := range audioKeys {
			start := time.Now()
			result := application.Pipeline.ProcessAndStore(ctx, model.Chunk{
				ChunkKey:   key,
				Bucket:     cfg.Storage.Bucket,
				SessionID:  sessionID,
				ChunkIndex: i,
			})
			if result.IsPlaceholder() {
				fmt.Fprintf(os.Stderr, "chunk %d failed: %s\n", i, result.Text)
			}
			bar.EwmaIncrement(time.Since(start))
		}
		progress.Wait()

		result, err := application.Aggregator.Combine(ctx, sessionID, userID)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
