package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	ical "github.com/arran4/golang-ical"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jalexw/calendar-ics-parser/internal/ics"
	"github.com/jalexw/calendar-ics-parser/internal/model"
)

const sample = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Example Corp//Calendar//EN\r\n" +
	"X-WR-CALNAME:Team\r\n" +
	"X-APPLE-COLOR:red\r\n" +
	"BEGIN:VTIMEZONE\r\n" +
	"TZID:Europe/Berlin\r\n" +
	"BEGIN:STANDARD\r\n" +
	"TZOFFSETFROM:+0200\r\n" +
	"TZOFFSETTO:+0100\r\n" +
	"TZNAME:CET\\, winter\r\n" +
	"DTSTART:19701025T030000\r\n" +
	"END:STANDARD\r\n" +
	"END:VTIMEZONE\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:a@b\r\n" +
	"DTSTAMP:20231201T120000Z\r\n" +
	"DTSTART:20231215T140000Z\r\n" +
	"DTEND:20231215T150000Z\r\n" +
	"SUMMARY:Team Meeting\r\n" +
	"LOCATION:Room 4\r\n" +
	"PRIORITY:3\r\n" +
	"STATUS:CONFIRMED\r\n" +
	"ATTENDEE;CN=Jane;PARTSTAT=ACCEPTED:mailto:jane@example.com\r\n" +
	"CATEGORIES:Work\r\n" +
	"CATEGORIES:Planning\r\n" +
	"X-ROOM-ID:42\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VTODO\r\n" +
	"UID:todo-1\r\n" +
	"DTSTAMP:20231201T120000Z\r\n" +
	"SUMMARY:Book room\r\n" +
	"DUE:20231214\r\n" +
	"PERCENT-COMPLETE:50\r\n" +
	"END:VTODO\r\n" +
	"END:VCALENDAR\r\n"

func parsed(t *testing.T) *model.ParseResult {
	t.Helper()
	res := ics.Parse(sample)
	require.Empty(t, res.Metadata.ParseErrors)
	require.Empty(t, res.Metadata.ParseWarnings)
	return res
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, parsed(t), FormatJSON))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	md := doc["metadata"].(map[string]any)
	assert.Equal(t, float64(1), md["totalEvents"])
	assert.Equal(t, float64(1), md["totalTodos"])
	assert.Equal(t, []any{}, md["parseErrors"])

	cal := doc["calendars"].([]any)[0].(map[string]any)
	assert.Equal(t, "Team", cal["calname"])
	ev := cal["events"].([]any)[0].(map[string]any)
	assert.Equal(t, "Team Meeting", ev["summary"])
	assert.NotContains(t, ev, "comment")
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, parsed(t), FormatYAML))

	var doc struct {
		Calendars []struct {
			ProdID string `yaml:"prodid"`
			Events []struct {
				UID      string `yaml:"uid"`
				Priority int    `yaml:"priority"`
			} `yaml:"events"`
		} `yaml:"calendars"`
		Metadata struct {
			TotalEvents int `yaml:"totalEvents"`
		} `yaml:"metadata"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Calendars, 1)
	assert.Equal(t, "-//Example Corp//Calendar//EN", doc.Calendars[0].ProdID)
	assert.Equal(t, "a@b", doc.Calendars[0].Events[0].UID)
	assert.Equal(t, 3, doc.Calendars[0].Events[0].Priority)
	assert.Equal(t, 1, doc.Metadata.TotalEvents)
}

func TestSimplify(t *testing.T) {
	out := Simplify(parsed(t))
	require.Len(t, out.Events, 1)
	assert.Equal(t, SimpleEvent{
		Calendar:   "Team",
		UID:        "a@b",
		Summary:    "Team Meeting",
		Start:      "20231215T140000Z",
		End:        "20231215T150000Z",
		Location:   "Room 4",
		Attendees:  []string{"jane@example.com"},
		Categories: []string{"Work", "Planning"},
	}, out.Events[0])
	assert.NotNil(t, out.Errors)

	empty := Simplify(ics.Parse(""))
	assert.NotNil(t, empty.Events)
	assert.Empty(t, empty.Events)
}

func TestRender_PrettyAndTable(t *testing.T) {
	color.NoColor = true
	res := parsed(t)

	var pretty bytes.Buffer
	require.NoError(t, Render(&pretty, res, FormatPretty))
	out := pretty.String()
	assert.Contains(t, out, "1 calendar parsed")
	assert.Contains(t, out, "Calendar 1: Team")
	assert.Contains(t, out, "Team Meeting")
	assert.Contains(t, out, "Jane <jane@example.com>")
	assert.Contains(t, out, "Progress:")

	var table bytes.Buffer
	require.NoError(t, Render(&table, res, FormatTable))
	out = table.String()
	assert.Contains(t, out, "SUMMARY")
	assert.Contains(t, out, "Team Meeting")
	assert.Contains(t, out, "Book room")
	assert.Contains(t, out, "0 errors, 0 warnings")
}

func TestRender_PrettyListsDiagnostics(t *testing.T) {
	color.NoColor = true
	res := ics.Parse("BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\n")

	var buf bytes.Buffer
	require.NoError(t, Pretty(&buf, res))
	assert.Contains(t, buf.String(), "1 error:")
	assert.Contains(t, buf.String(), "critical parsing error")
}

func TestICS_ReadableByGolangICal(t *testing.T) {
	out := ICS(parsed(t))

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Team Meeting", events[0].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "a@b", events[0].GetProperty(ical.ComponentPropertyUniqueId).Value)
}

func TestICS_RoundTrip(t *testing.T) {
	orig := parsed(t)
	again := ics.Parse(ICS(orig))
	require.Empty(t, again.Metadata.ParseErrors)
	require.Len(t, again.Calendars, 1)

	a, b := orig.Calendars[0], again.Calendars[0]
	assert.Equal(t, a.ProdID, b.ProdID)
	assert.Equal(t, a.CalName, b.CalName)
	assert.Equal(t, a.CustomProperties["X-APPLE-COLOR"], b.CustomProperties["X-APPLE-COLOR"])

	require.Len(t, b.Events, 1)
	ea, eb := a.Events[0], b.Events[0]
	assert.Equal(t, ea.UID, eb.UID)
	assert.Equal(t, ea.DTStamp, eb.DTStamp)
	assert.Equal(t, ea.DTStart, eb.DTStart)
	assert.Equal(t, ea.DTEnd, eb.DTEnd)
	assert.Equal(t, ea.Summary, eb.Summary)
	assert.Equal(t, ea.Priority, eb.Priority)
	assert.Equal(t, ea.Status, eb.Status)
	assert.Equal(t, ea.Attendee, eb.Attendee)
	assert.Equal(t, ea.Categories, eb.Categories)
	assert.Equal(t, ea.CustomProperties, eb.CustomProperties)

	require.Len(t, b.Todos, 1)
	assert.Equal(t, a.Todos[0].PercentComplete, b.Todos[0].PercentComplete)

	require.Len(t, b.Timezones, 1)
	assert.Equal(t, "Europe/Berlin", b.Timezones[0].TZID)
	assert.Equal(t, a.Timezones[0].RawData, b.Timezones[0].RawData)
	assert.Contains(t, b.Timezones[0].RawData, `TZNAME:CET\, winter`)

	third := ics.Parse(ICS(again))
	require.Len(t, third.Calendars, 1)
	assert.Equal(t, a.Timezones[0].RawData, third.Calendars[0].Timezones[0].RawData)
}
