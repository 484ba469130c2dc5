// Package export turns tracked intervals into the daily work-hours table.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/Tiliavir/timew-bot/internal/model"
	"github.com/Tiliavir/timew-bot/internal/timecalc"
)

// Columns of the work-hours table, in order.
var Columns = []string{
	"Datum",
	"Wochentag",
	"Start",
	"Ende",
	"Pausen",
	"ArbeitszeitSoll",
	"ArbeitszeitIst",
	"Differenz",
}

// DateLayout formats the Datum column.
const DateLayout = "02.01.2006"

var weekdays = [7]string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"}

// ParseIntervals decodes a `timew export` JSON array.
func ParseIntervals(r io.Reader) ([]model.Interval, error) {
	var ivs []model.Interval
	if err := json.NewDecoder(r).Decode(&ivs); err != nil {
		return nil, fmt.Errorf("decoding intervals: %w", err)
	}
	return ivs, nil
}

// ReadFile reads intervals from a `timew export` JSON file.
func ReadFile(path string) ([]model.Interval, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export file: %w", err)
	}
	defer f.Close()
	return ParseIntervals(f)
}

// Closed returns the intervals that have an end, and the number dropped.
func Closed(ivs []model.Interval) ([]model.Interval, int) {
	out := make([]model.Interval, 0, len(ivs))
	for _, iv := range ivs {
		if iv.End != nil {
			out = append(out, iv)
		}
	}
	return out, len(ivs) - len(out)
}

// BuildRows computes one row per calendar day from the first to the last
// interval, in loc. Open intervals must be removed beforehand with Closed.
// Weekends have a target of 0, every other day targetMinutes.
func BuildRows(ivs []model.Interval, loc *time.Location, targetMinutes int) []model.DayRow {
	if len(ivs) == 0 {
		return nil
	}

	sorted := make([]model.Interval, len(ivs))
	for i, iv := range ivs {
		end := iv.End.In(loc)
		iv.Start = iv.Start.In(loc)
		iv.End = &end
		sorted[i] = iv
	}
	slices.SortStableFunc(sorted, func(a, b model.Interval) int {
		return a.Start.Compare(b.Start)
	})

	byDay := make(map[string][]model.Interval)
	for _, iv := range sorted {
		key := iv.Start.Format(time.DateOnly)
		byDay[key] = append(byDay[key], iv)
	}

	days := timecalc.DaysBetween(sorted[0].Start, sorted[len(sorted)-1].Start)
	rows := make([]model.DayRow, 0, len(days))
	for _, day := range days {
		rows = append(rows, buildRow(day, byDay[day.Format(time.DateOnly)], targetMinutes))
	}
	return rows
}

func buildRow(day time.Time, ivs []model.Interval, targetMinutes int) model.DayRow {
	row := model.DayRow{
		Date:          day,
		Weekday:       weekdays[timecalc.ISOWeekday(day)],
		Break:         timecalc.FormatHHMM(0),
		TargetMinutes: targetMinutes,
	}
	if timecalc.IsWeekend(day) {
		row.TargetMinutes = 0
	}

	if len(ivs) > 0 {
		first, last := ivs[0].Start, *ivs[len(ivs)-1].End
		for _, iv := range ivs {
			row.ActualMinutes += iv.Minutes()
		}
		row.Start = first.Format(timecalc.ClockLayout)
		row.End = last.Format(timecalc.ClockLayout)
		row.Break = timecalc.FormatHHMM(timecalc.CeilMinutes(last.Sub(first)) - row.ActualMinutes)
	}

	row.DiffMinutes = row.ActualMinutes - row.TargetMinutes
	return row
}

// Record formats a row as the column strings.
func Record(r model.DayRow) []string {
	return []string{
		r.Date.Format(DateLayout),
		r.Weekday,
		r.Start,
		r.End,
		r.Break,
		strconv.Itoa(r.TargetMinutes),
		strconv.Itoa(r.ActualMinutes),
		strconv.Itoa(r.DiffMinutes),
	}
}

// Values is Record with the minute columns left numeric.
func Values(r model.DayRow) []any {
	return []any{
		r.Date.Format(DateLayout),
		r.Weekday,
		r.Start,
		r.End,
		r.Break,
		r.TargetMinutes,
		r.ActualMinutes,
		r.DiffMinutes,
	}
}
