package summary_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/timew-bot/internal/summary"
	"github.com/Tiliavir/timew-bot/internal/tracker/trackertest"
)

const tagsOutput = `
Tag          Description
------------ -----------
Alpha        -
Dienstreise  -
Meeting      -
Review       -
lunch        -
`

func summaryOut(total string) string {
	return "\nWk  Date       Day Tags    Start      End    Time   Total\n" +
		"--- ---------- --- ------- -------- -------- ------- -------\n" +
		"W9  2026-02-27 Fri Meeting  9:00:00 11:00:00 2:00:00 2:00:00\n" +
		"\n" +
		"                                                     " + total + "\n"
}

func newGateway() *trackertest.Fake {
	return trackertest.New(map[string]string{
		"tags":                              tagsOutput,
		"summary 4w before now Meeting":     summaryOut("3:00:00"),
		"summary 4w before now Review":      summaryOut("1:00:00"),
		"summary 4w before now Development": "No filtered data found.\n",
		"summary 4w before now lunch":       summaryOut("0:30:00"),
		"summary 4w before now Dienstreise": summaryOut("8:00:00"),
		"summary 4w before now Urlaub":      "No filtered data found.\n",
	})
}

func TestBuild(t *testing.T) {
	gw := newGateway()
	sections, err := summary.Build(context.Background(), gw, summary.Options{
		Types:       []string{"Meeting", "Review", "Development"},
		Tasks:       []string{"Alpha"},
		SpecialTags: []string{"Dienstreise", "Urlaub"},
	})
	require.NoError(t, err)
	require.Len(t, sections, 3)

	assert.Equal(t, "types", sections[0].Title)
	assert.Equal(t, []summary.Share{
		{Tag: "Meeting", Seconds: 10800, Percent: 75, Raw: "3:00:00"},
		{Tag: "Review", Seconds: 3600, Percent: 25, Raw: "1:00:00"},
	}, sections[0].Shares)

	// Alpha is a task and therefore not an "other" tag.
	assert.Equal(t, []summary.Share{{Tag: "lunch", Seconds: 1800, Percent: 100, Raw: "0:30:00"}}, sections[1].Shares)
	assert.Equal(t, []summary.Share{{Tag: "Dienstreise", Seconds: 28800, Percent: 100, Raw: "8:00:00"}}, sections[2].Shares)

	for _, c := range gw.CallsTo("summary") {
		assert.NotContains(t, c, "Alpha")
	}
}

func TestBuild_CustomWindow(t *testing.T) {
	gw := trackertest.New(map[string]string{"tags": tagsOutput})
	_, err := summary.Build(context.Background(), gw, summary.Options{Window: "1w", Types: []string{"Meeting"}})
	require.NoError(t, err)

	calls := gw.CallsTo("summary")
	require.NotEmpty(t, calls)
	assert.Equal(t, []string{"summary", "1w", "before", "now", "Meeting"}, calls[0])
}

func TestBuild_GatewayError(t *testing.T) {
	gw := trackertest.New(nil)
	gw.Errors["tags"] = errors.New("timeout")
	_, err := summary.Build(context.Background(), gw, summary.Options{})
	assert.EqualError(t, err, "timeout")
}

func TestFormat(t *testing.T) {
	out := summary.Format([]summary.Section{
		{Title: "types", Shares: []summary.Share{
			{Tag: "Meeting", Seconds: 10800, Percent: 75},
			{Tag: "Review", Seconds: 3600, Percent: 25},
		}},
		{Title: "tags"},
		{Title: "special", Shares: []summary.Share{{Tag: "Urlaub", Seconds: 28800, Percent: 100}}},
	})
	assert.Equal(t, "Meeting(75%,3:00:00) Review(25%,1:00:00)\nUrlaub(100%,8:00:00)", out)
}

func TestFormat_Empty(t *testing.T) {
	assert.Equal(t, "No data in window.", summary.Format(nil))
}
