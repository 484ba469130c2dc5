package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimewLayout is the UTC timestamp format of `timew export`.
const TimewLayout = "20060102T150405Z"

// Interval is a single tracked interval as produced by `timew export`.
// End is nil while the interval is still open.
type Interval struct {
	ID         int
	Start      time.Time
	End        *time.Time
	Tags       []string
	Annotation string
}

type intervalJSON struct {
	ID         int      `json:"id"`
	Start      string   `json:"start"`
	End        string   `json:"end,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Annotation string   `json:"annotation,omitempty"`
}

// UnmarshalJSON decodes the timew export representation.
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var raw intervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := time.Parse(TimewLayout, raw.Start)
	if err != nil {
		return fmt.Errorf("interval %d: start: %w", raw.ID, err)
	}
	*iv = Interval{ID: raw.ID, Start: start, Tags: raw.Tags, Annotation: raw.Annotation}
	if raw.End != "" {
		end, err := time.Parse(TimewLayout, raw.End)
		if err != nil {
			return fmt.Errorf("interval %d: end: %w", raw.ID, err)
		}
		iv.End = &end
	}
	return nil
}

// MarshalJSON encodes the interval the way timew exports it.
func (iv Interval) MarshalJSON() ([]byte, error) {
	raw := intervalJSON{
		ID:         iv.ID,
		Start:      iv.Start.UTC().Format(TimewLayout),
		Tags:       iv.Tags,
		Annotation: iv.Annotation,
	}
	if iv.End != nil {
		raw.End = iv.End.UTC().Format(TimewLayout)
	}
	return json.Marshal(raw)
}

// Minutes returns the elapsed whole minutes of a closed interval.
func (iv Interval) Minutes() int {
	if iv.End == nil {
		return 0
	}
	return int(iv.End.Sub(iv.Start) / time.Minute)
}

// DayRow is one row of the daily work-hours report.
type DayRow struct {
	Date          time.Time
	Weekday       string
	Start         string
	End           string
	Break         string
	TargetMinutes int
	ActualMinutes int
	DiffMinutes   int
}
