package cmd

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timew-bot/internal/config"
	"github.com/Tiliavir/timew-bot/internal/export"
	"github.com/Tiliavir/timew-bot/internal/gsheets"
	"github.com/Tiliavir/timew-bot/internal/model"
	"github.com/Tiliavir/timew-bot/internal/tracker"
)

var (
	exportInput       string
	exportOutput      string
	exportFormat      string
	exportFromTracker bool
	exportSheet       bool
	exportPreview     bool
)

var exportCmd = &cobra.Command{
	Use:   "export [range...]",
	Short: "Build the daily work-hours table from tracked intervals",
	Long: `export reads a timew export JSON file (or runs "timew export [range...]"
with --from-tracker), computes one row per calendar day and writes it as xlsx
or csv. --preview prints the table, --sheet uploads it to Google Sheets.`,
	Args: cobra.ArbitraryArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "timew export JSON file (default from config)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file, - for stdout (default from config)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "Output format: xlsx, csv, none")
	exportCmd.Flags().BoolVar(&exportFromTracker, "from-tracker", false, "Read intervals from `timew export` instead of a file")
	exportCmd.Flags().BoolVar(&exportSheet, "sheet", false, "Upload the table to the configured Google spreadsheet")
	exportCmd.Flags().BoolVar(&exportPreview, "preview", false, "Print the table to stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) > 0 && !exportFromTracker {
		return fmt.Errorf("range arguments need --from-tracker")
	}

	ctx := cmd.Context()
	ivs, err := loadIntervals(ctx, newGateway(cfg, log), cmp.Or(exportInput, cfg.Export.Input), exportFromTracker, args)
	if err != nil {
		return err
	}

	rows, err := buildRows(cfg, ivs, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if exportPreview {
		if err := export.WritePreview(out, rows); err != nil {
			return err
		}
	}

	path := outputPath(cmp.Or(exportOutput, cfg.Export.Output), exportFormat, exportOutput != "")
	switch exportFormat {
	case "xlsx":
		if path == "-" {
			if err := export.WriteXLSXTo(out, cfg.Export.SheetTitle, rows); err != nil {
				return err
			}
			break
		}
		if err := export.WriteXLSX(path, cfg.Export.SheetTitle, rows); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d days to %s\n", len(rows), path)
	case "csv":
		if path == "-" {
			if err := export.WriteCSV(out, rows); err != nil {
				return err
			}
			break
		}
		if err := writeCSVFile(path, rows); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d days to %s\n", len(rows), path)
	case "none":
	default:
		return fmt.Errorf("unknown format %q (want xlsx, csv or none)", exportFormat)
	}

	if exportSheet {
		if cfg.Export.SpreadsheetID == "" {
			return fmt.Errorf("export.spreadsheet_id is required for --sheet")
		}
		client, err := gsheets.Open(ctx, cfg.Export.SpreadsheetID, cfg.Export.CredentialsFile)
		if err != nil {
			return err
		}
		n, err := client.PushRows(ctx, cfg.Export.SheetTitle, rows)
		if err != nil {
			return err
		}
		log.Info("uploaded work-hours table", "spreadsheet", cfg.Export.SpreadsheetID, "sheet", cfg.Export.SheetTitle, "rows", n)
		fmt.Fprintf(out, "Uploaded %d rows to sheet %s\n", n, cfg.Export.SheetTitle)
	}
	return nil
}

// loadIntervals reads the export file, or asks the tracker when fromTracker is set.
func loadIntervals(ctx context.Context, gw tracker.Gateway, input string, fromTracker bool, rangeArgs []string) ([]model.Interval, error) {
	if !fromTracker {
		return export.ReadFile(input)
	}
	out, err := gw.Run(ctx, append([]string{"export"}, rangeArgs...)...)
	if err != nil {
		return nil, err
	}
	return export.ParseIntervals(strings.NewReader(out))
}

func buildRows(cfg *config.Config, ivs []model.Interval, log *slog.Logger) ([]model.DayRow, error) {
	closed, open := export.Closed(ivs)
	if open > 0 {
		log.Warn("skipping intervals without end", "count", open)
	}
	if len(closed) == 0 {
		return nil, fmt.Errorf("no closed intervals to export")
	}
	return export.BuildRows(closed, cfg.Export.Location, cfg.Export.TargetMinutes), nil
}

// outputPath swaps the extension of a default output to match format.
func outputPath(path, format string, explicit bool) string {
	if explicit || path == "-" || format == "none" {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
}

func writeCSVFile(path string, rows []model.DayRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
