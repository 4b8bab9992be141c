package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"koenote-pipeline/cmd/koenote/cmd/export"
	"koenote-pipeline/cmd/koenote/cmd/process"
	"koenote-pipeline/cmd/koenote/cmd/serve"
	"koenote-pipeline/cmd/koenote/cmd/version"
	"koenote-pipeline/cmd/koenote/cmd/worker"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "koenote",
	Short: "A pipeline that turns chunked voice recordings into searchable notes",
	Long: `A pipeline that turns chunked voice recordings into searchable notes.
- Uploaded audio chunks are transcribed independently and repaired when malformed
- Chunk results are reassembled in order and summarized into title/summary/keywords
- Finished recordings are saved and can be listed, exported or deleted.`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(worker.Cmd)
	rootCmd.AddCommand(process.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
