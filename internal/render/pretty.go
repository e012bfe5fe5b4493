package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/jalexw/calendar-ics-parser/internal/model"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.Bold)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
)

// Pretty writes a human-readable summary. Colors follow fatih/color's
// terminal detection (color.NoColor).
func Pretty(w io.Writer, res *model.ParseResult) error {
	md := res.Metadata
	headingColor.Fprintf(w, "%s parsed\n", plural(len(res.Calendars), "calendar"))
	fmt.Fprintf(w, "  %s, %s, %s, %s, %s\n",
		plural(md.TotalEvents, "event"),
		plural(md.TotalTodos, "todo"),
		plural(md.TotalJournals, "journal"),
		plural(md.TotalFreebusys, "free/busy block"),
		plural(md.TotalTimezones, "timezone"))

	for i, c := range res.Calendars {
		fmt.Fprintln(w)
		title := c.CalName
		if title == "" {
			title = c.ProdID
		}
		headingColor.Fprintf(w, "Calendar %d: %s\n", i+1, title)
		field(w, "Version", c.Version)
		field(w, "Method", string(c.Method))
		field(w, "Timezone", c.Timezone)
		field(w, "Description", c.CalDesc)

		for _, e := range c.Events {
			fmt.Fprintln(w)
			labelColor.Fprintf(w, "  * %s\n", orDash(e.Summary))
			field(w, "UID", e.UID)
			field(w, "Start", e.DTStart)
			field(w, "End", e.DTEnd)
			field(w, "Duration", e.Duration)
			field(w, "Location", e.Location)
			field(w, "Status", string(e.Status))
			field(w, "Repeats", e.RRule)
			if e.Organizer != nil {
				field(w, "Organizer", personLabel(*e.Organizer))
			}
			if len(e.Attendee) > 0 {
				names := make([]string, 0, len(e.Attendee))
				for _, a := range e.Attendee {
					names = append(names, personLabel(a))
				}
				field(w, "Attendees", strings.Join(names, ", "))
			}
			if len(e.Categories) > 0 {
				field(w, "Categories", strings.Join(e.Categories, ", "))
			}
		}
		for _, t := range c.Todos {
			fmt.Fprintln(w)
			labelColor.Fprintf(w, "  [ ] %s\n", orDash(t.Summary))
			field(w, "UID", t.UID)
			field(w, "Due", t.Due)
			field(w, "Status", string(t.Status))
			if t.PercentComplete != nil {
				field(w, "Progress", fmt.Sprintf("%d%%", *t.PercentComplete))
			}
		}
		for _, j := range c.Journals {
			fmt.Fprintln(w)
			labelColor.Fprintf(w, "  # %s\n", orDash(j.Summary))
			field(w, "UID", j.UID)
			field(w, "Date", j.DTStart)
		}
		if n := len(c.UnparsedComponents); n > 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  %s kept unparsed\n", plural(n, "component"))
		}
	}

	if len(md.ParseErrors) > 0 {
		fmt.Fprintln(w)
		errorColor.Fprintf(w, "%s:\n", plural(len(md.ParseErrors), "error"))
		for _, e := range md.ParseErrors {
			errorColor.Fprintf(w, "  - %s\n", e)
		}
	}
	if len(md.ParseWarnings) > 0 {
		fmt.Fprintln(w)
		warnColor.Fprintf(w, "%s:\n", plural(len(md.ParseWarnings), "warning"))
		for _, e := range md.ParseWarnings {
			warnColor.Fprintf(w, "  - %s\n", e)
		}
	}
	return nil
}

// Table writes one row per event, todo and journal.
func Table(w io.Writer, res *model.ParseResult) error {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Calendar", "Kind", "UID", "Summary", "Start", "End/Due", "Status"})
	t.SetAutoWrapText(false)

	for i, c := range res.Calendars {
		cal := fmt.Sprintf("%d", i+1)
		for _, e := range c.Events {
			end := e.DTEnd
			if end == "" {
				end = e.Duration
			}
			t.Append([]string{cal, "event", e.UID, e.Summary, e.DTStart, end, string(e.Status)})
		}
		for _, td := range c.Todos {
			t.Append([]string{cal, "todo", td.UID, td.Summary, td.DTStart, td.Due, string(td.Status)})
		}
		for _, j := range c.Journals {
			t.Append([]string{cal, "journal", j.UID, j.Summary, j.DTStart, "", string(j.Status)})
		}
		for _, fb := range c.FreeBusys {
			t.Append([]string{cal, "freebusy", fb.UID, strings.Join(fb.FreeBusy, " "), fb.DTStart, fb.DTEnd, ""})
		}
	}
	t.Render()

	md := res.Metadata
	_, err := fmt.Fprintf(w, "%s, %s\n", plural(len(md.ParseErrors), "error"), plural(len(md.ParseWarnings), "warning"))
	return err
}

func field(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "    %-12s %s\n", label+":", value)
}

func personLabel(p model.Person) string {
	if p.CommonName != "" {
		return fmt.Sprintf("%s <%s>", p.CommonName, p.Email)
	}
	return p.Email
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
