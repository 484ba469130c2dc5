// Package summary computes the per-tag time share report.
package summary

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Tiliavir/timew-bot/internal/timecalc"
	"github.com/Tiliavir/timew-bot/internal/tracker"
)

// DefaultWindow is used when no window is given.
const DefaultWindow = "4w"

const noData = "No filtered data"

// Share is one tag's tracked time inside a section.
type Share struct {
	Tag     string
	Seconds int64
	Percent int
	Raw     string
}

// Section is a titled group of shares.
type Section struct {
	Title  string
	Shares []Share
}

// Options select the tags of each section.
type Options struct {
	Window      string
	Types       []string
	Tasks       []string
	SpecialTags []string
}

// Build runs the tracker summary for every tag and groups the results into
// work types, other tags and special tags.
func Build(ctx context.Context, gw tracker.Gateway, opts Options) ([]Section, error) {
	window := opts.Window
	if window == "" {
		window = DefaultWindow
	}

	all, err := tracker.Tags(ctx, gw)
	if err != nil {
		return nil, err
	}
	var others []string
	for _, tag := range all {
		if slices.Contains(opts.Types, tag) || slices.Contains(opts.Tasks, tag) || slices.Contains(opts.SpecialTags, tag) {
			continue
		}
		others = append(others, tag)
	}

	groups := []struct {
		title string
		tags  []string
	}{
		{"types", opts.Types},
		{"tags", others},
		{"special", opts.SpecialTags},
	}

	sections := make([]Section, 0, len(groups))
	for _, g := range groups {
		shares, err := shares(ctx, gw, window, g.tags)
		if err != nil {
			return nil, fmt.Errorf("summary for %s: %w", g.title, err)
		}
		sections = append(sections, Section{Title: g.title, Shares: shares})
	}
	return sections, nil
}

func shares(ctx context.Context, gw tracker.Gateway, window string, tags []string) ([]Share, error) {
	var out []Share
	var total int64
	for _, tag := range tags {
		res, err := gw.Run(ctx, "summary", window, "before", "now", tag)
		if err != nil {
			return nil, err
		}
		last := lastLine(res)
		if last == "" || strings.Contains(last, noData) {
			continue
		}
		secs, err := timecalc.ParseHMS(last)
		if err != nil {
			// Anything but a total line means the tag had nothing to report.
			continue
		}
		out = append(out, Share{Tag: tag, Seconds: secs, Raw: last})
		total += secs
	}
	for i := range out {
		if total > 0 {
			out[i].Percent = int(100 * out[i].Seconds / total)
		}
	}
	return out, nil
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// Format renders each section on one line as `tag(P%,H:MM:SS) …`.
// Sections without data are omitted.
func Format(sections []Section) string {
	var lines []string
	for _, sec := range sections {
		if len(sec.Shares) == 0 {
			continue
		}
		parts := make([]string, len(sec.Shares))
		for i, sh := range sec.Shares {
			parts[i] = fmt.Sprintf("%s(%d%%,%s)", sh.Tag, sh.Percent, timecalc.FormatDurationHHMMSS(sh.Seconds))
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	if len(lines) == 0 {
		return "No data in window."
	}
	return strings.Join(lines, "\n")
}
