package timecalc

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ClockLayout is the HH:MM layout used for clock-time buttons and report cells.
const ClockLayout = "15:04"

var clockPattern = regexp.MustCompile(`^[0-9][0-9]:[0-9][0-9]$`)

// IsClock reports whether s looks like an HH:MM clock time.
func IsClock(s string) bool {
	return clockPattern.MatchString(s)
}

// PickerTimes returns now and the three preceding five-minute steps as HH:MM.
func PickerTimes(now time.Time) []string {
	out := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		out = append(out, now.Add(-time.Duration(i*5)*time.Minute).Format(ClockLayout))
	}
	return out
}

// FormatHHMM formats a minute count as zero-padded HH:MM.
// Negative values keep their sign: -5 becomes "-00:05".
func FormatHHMM(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// CeilMinutes returns d in minutes, rounded up.
func CeilMinutes(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}

// ParseHMS parses "H:MM:SS", "MM:SS" or "SS" into seconds.
func ParseHMS(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	var secs int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		secs = secs*60 + n
	}
	return secs, nil
}

// FormatDurationHHMMSS formats seconds as H:MM:SS.
func FormatDurationHHMMSS(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns every calendar day from the day of from to the day of to,
// inclusive, each at midnight in from's location.
func DaysBetween(from, to time.Time) []time.Time {
	first := StartOfDay(from)
	last := StartOfDay(to.In(from.Location()))
	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ISOWeekday maps Go's weekday to 0 = Monday … 6 = Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	return wd - 1
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
