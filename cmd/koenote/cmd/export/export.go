package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx"

	"koenote-pipeline/internal/app"
	"koenote-pipeline/internal/app/model"
	"koenote-pipeline/internal/config"
)

var (
	configPath     string
	userID         string
	outputFilePath string
)

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	Cmd.Flags().StringVarP(&userID, "user", "u", "", "user id whose recordings to export")
	Cmd.Flags().StringVarP(&outputFilePath, "output", "o", "", "output .xlsx path")

	Cmd.MarkFlagRequired("user")
	Cmd.MarkFlagRequired("output")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's finished recordings to excel",
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

		recordings, err := application.Records.ListByUser(context.Background(), userID)
		if err != nil {
			return err
		}

		if err := toExcel(recordings, outputFilePath); err != nil {
			return err
		}
		fmt.Printf("export finished, exported %d recordings to %s\n", len(recordings), outputFilePath)
		return nil
	},
}

func toExcel(recordings []model.FinishedRecording, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Recordings")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, name := range []string{"ID", "Title", "Date", "Start Time", "Duration", "Summary", "Keywords", "Transcript", "Status"} {
		headerRow.AddCell().Value = name
	}

	for _, rec := range recordings {
		row := sheet.AddRow()
		row.AddCell().Value = rec.ID
		row.AddCell().Value = rec.Title
		row.AddCell().Value = rec.Date
		row.AddCell().Value = rec.StartTime
		row.AddCell().Value = rec.Duration
		row.AddCell().Value = rec.Summary
		row.AddCell().Value = strings.Join(rec.Keywords, ", ")
		row.AddCell().Value = rec.Transcript
		row.AddCell().Value = rec.ProcessingStatus
	}

	return file.Save(outputFilePath)
}
