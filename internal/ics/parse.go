package ics

import (
	"encoding/json"
	"fmt"
	"io"

	appLog "github.com/jalexw/calendar-ics-parser/internal/log"
	"github.com/jalexw/calendar-ics-parser/internal/model"
)

// Options tunes a parse. The zero value is the default behavior.
type Options struct {
	// Debug traces the raw input, unfolded lines, block tree and final
	// result to Trace. It never changes the returned result.
	Debug bool
	// Trace receives diagnostic output when Debug is set; nil means stderr.
	Trace io.Writer
	// StrictRRule drops events whose RRULE rrule-go cannot read instead of
	// only warning about them.
	StrictRRule bool
}

// Parse parses ICS text with default options.
func Parse(text string) *model.ParseResult {
	return ParseWithOptions(text, Options{})
}

// ParseWithOptions runs the whole pipeline and never fails: problems are
// reported in Metadata.ParseErrors and Metadata.ParseWarnings. When the
// document is structurally unusable (unclosed components) the result has no
// calendars, zero counts and a single critical error.
//
// Parse calls share no state and may run concurrently.
func ParseWithOptions(text string, opts Options) (res *model.ParseResult) {
	tr := appLog.NopTracer
	if opts.Debug {
		tr = appLog.NewTracer(opts.Trace)
	}

	var warnings []string
	defer func() {
		if r := recover(); r != nil {
			res = criticalResult(fmt.Errorf("panic: %v", r), warnings)
		}
	}()

	tr.Trace("raw input", "bytes", len(text), "text", text)

	lines := Unfold(text)
	if tr.Enabled() {
		tr.Trace("unfolded lines", "count", len(lines))
		for i, l := range lines {
			tr.Trace("line", "n", i+1, "text", l)
		}
	}

	roots, lineWarnings, err := BuildTree(lines, tr)
	warnings = append(warnings, lineWarnings...)
	if err != nil {
		tr.Trace("block tree aborted", "err", err.Error())
		return criticalResult(err, warnings)
	}
	if tr.Enabled() {
		for _, b := range roots {
			tr.Trace("block tree", "type", b.Type, "dump", Dump(b))
		}
	}

	res = &model.ParseResult{
		Calendars: []model.Calendar{},
		Metadata: model.Metadata{
			ParseErrors: []string{},
		},
	}

	for i, root := range roots {
		if root.Type != "VCALENDAR" {
			warnings = append(warnings, fmt.Sprintf("ignoring top-level %s component #%d outside VCALENDAR", root.Type, i+1))
			continue
		}

		m := &calendarMapper{tr: tr}
		m.v = &validator{
			strictRRule: opts.StrictRRule,
			warn:        func(s string) { m.warnings = append(m.warnings, s) },
		}
		cal, err := m.mapCalendar(root)
		warnings = append(warnings, m.warnings...)
		if err != nil {
			res.Metadata.ParseErrors = append(res.Metadata.ParseErrors, fmt.Sprintf("calendar #%d rejected: %v", i+1, err))
			continue
		}
		res.Calendars = append(res.Calendars, cal)
	}

	if len(roots) == 0 {
		warnings = append(warnings, "no VCALENDAR component found")
	}

	res.Metadata.ParseWarnings = nonNil(warnings)
	summarize(res)

	if tr.Enabled() {
		if out, err := json.MarshalIndent(res, "", "  "); err == nil {
			tr.Trace("final result", "json", string(out))
		}
	}
	return res
}

// summarize derives the totals from the calendars themselves.
func summarize(res *model.ParseResult) {
	md := &res.Metadata
	md.TotalEvents, md.TotalTodos, md.TotalJournals, md.TotalFreebusys, md.TotalTimezones = 0, 0, 0, 0, 0
	for _, c := range res.Calendars {
		md.TotalEvents += len(c.Events)
		md.TotalTodos += len(c.Todos)
		md.TotalJournals += len(c.Journals)
		md.TotalFreebusys += len(c.FreeBusys)
		md.TotalTimezones += len(c.Timezones)
	}
}

func criticalResult(err error, warnings []string) *model.ParseResult {
	return &model.ParseResult{
		Calendars: []model.Calendar{},
		Metadata: model.Metadata{
			ParseErrors:   []string{fmt.Sprintf("critical parsing error: %v", err)},
			ParseWarnings: nonNil(warnings),
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
