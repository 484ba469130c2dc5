package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timew-bot/internal/export"
	"github.com/Tiliavir/timew-bot/internal/summary"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report [window]",
	Short: "Show each tag's share of the tracked time",
	Long: `report runs the tracker summary for every tag over the window
(default from config, usually 4w) and prints the share of each tag within
the work types, the other tags and the special tags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	window := cfg.Report.Window
	if len(args) == 1 {
		window = args[0]
	}

	sections, err := summary.Build(cmd.Context(), newGateway(cfg, log), summary.Options{
		Window:      window,
		Types:       cfg.Vocab.Types,
		Tasks:       cfg.Vocab.Tasks,
		SpecialTags: cfg.Report.SpecialTags,
	})
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), sections, window, reportFormat)
}

type reportJSON struct {
	Window   string        `json:"window"`
	Sections []sectionJSON `json:"sections"`
}

type sectionJSON struct {
	Title string      `json:"title"`
	Tags  []shareJSON `json:"tags"`
}

type shareJSON struct {
	Tag     string `json:"tag"`
	Seconds int64  `json:"seconds"`
	Percent int    `json:"percent"`
}

func writeReport(w io.Writer, sections []summary.Section, window, format string) error {
	switch format {
	case "csv":
		fmt.Fprintln(w, "section,tag,seconds,percent")
		for _, sec := range sections {
			for _, sh := range sec.Shares {
				fmt.Fprintf(w, "%s,%s,%d,%d\n", export.EscapeCSV(sec.Title), export.EscapeCSV(sh.Tag), sh.Seconds, sh.Percent)
			}
		}
	case "json":
		out := reportJSON{Window: window, Sections: make([]sectionJSON, 0, len(sections))}
		for _, sec := range sections {
			s := sectionJSON{Title: sec.Title, Tags: make([]shareJSON, 0, len(sec.Shares))}
			for _, sh := range sec.Shares {
				s.Tags = append(s.Tags, shareJSON{Tag: sh.Tag, Seconds: sh.Seconds, Percent: sh.Percent})
			}
			out.Sections = append(out.Sections, s)
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "md":
		fmt.Fprintf(w, "Report (%s)\n\n%s\n", window, summary.Format(sections))
	default:
		return fmt.Errorf("unknown format %q (want md, csv or json)", format)
	}
	return nil
}
