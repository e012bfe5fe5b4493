package ics

import (
	"fmt"
	"strings"

	appLog "github.com/jalexw/calendar-ics-parser/internal/log"
	"github.com/jalexw/calendar-ics-parser/internal/model"
)

var calendarFields = fieldTable[model.Calendar]{
	"VERSION":          text(func(c *model.Calendar) *string { return &c.Version }),
	"PRODID":           text(func(c *model.Calendar) *string { return &c.ProdID }),
	"CALSCALE":         enum(func(c *model.Calendar) *model.CalScale { return &c.CalScale }),
	"METHOD":           enum(func(c *model.Calendar) *model.Method { return &c.Method }),
	"X-WR-CALNAME":     text(func(c *model.Calendar) *string { return &c.CalName }),
	"X-WR-CALDESC":     text(func(c *model.Calendar) *string { return &c.CalDesc }),
	"X-WR-TIMEZONE":    text(func(c *model.Calendar) *string { return &c.Timezone }),
	"X-PUBLISHED-TTL":  text(func(c *model.Calendar) *string { return &c.RefreshInterval }),
	"REFRESH-INTERVAL": text(func(c *model.Calendar) *string { return &c.RefreshInterval }),
}

var eventFields = fieldTable[model.Event]{
	"UID":           text(func(e *model.Event) *string { return &e.UID }),
	"DTSTAMP":       text(func(e *model.Event) *string { return &e.DTStamp }),
	"DTSTART":       text(func(e *model.Event) *string { return &e.DTStart }),
	"DTEND":         text(func(e *model.Event) *string { return &e.DTEnd }),
	"DURATION":      text(func(e *model.Event) *string { return &e.Duration }),
	"SUMMARY":       text(func(e *model.Event) *string { return &e.Summary }),
	"DESCRIPTION":   text(func(e *model.Event) *string { return &e.Description }),
	"LOCATION":      text(func(e *model.Event) *string { return &e.Location }),
	"STATUS":        enum(func(e *model.Event) *model.EventStatus { return &e.Status }),
	"CLASS":         enum(func(e *model.Event) *model.Class { return &e.Class }),
	"TRANSP":        enum(func(e *model.Event) *model.Transp { return &e.Transp }),
	"PRIORITY":      integer(func(e *model.Event) **int { return &e.Priority }),
	"SEQUENCE":      integer(func(e *model.Event) **int { return &e.Sequence }),
	"CREATED":       text(func(e *model.Event) *string { return &e.Created }),
	"LAST-MODIFIED": text(func(e *model.Event) *string { return &e.LastModified }),
	"URL":           text(func(e *model.Event) *string { return &e.URL }),
	"GEO":           text(func(e *model.Event) *string { return &e.Geo }),
	"RECURRENCE-ID": text(func(e *model.Event) *string { return &e.RecurID }),
	"RRULE":         text(func(e *model.Event) *string { return &e.RRule }),
	"ORGANIZER":     person(func(e *model.Event) **model.Person { return &e.Organizer }),
	"ATTENDEE":      people(func(e *model.Event) *[]model.Person { return &e.Attendee }),
	"CATEGORIES":    list(func(e *model.Event) *[]string { return &e.Categories }),
	"EXDATE":        list(func(e *model.Event) *[]string { return &e.ExDate }),
	"RESOURCES":     list(func(e *model.Event) *[]string { return &e.Resources }),
	"RDATE":         list(func(e *model.Event) *[]string { return &e.RDate }),
	"COMMENT":       each(func(e *model.Event) *[]string { return &e.Comment }),
	"CONTACT":       each(func(e *model.Event) *[]string { return &e.Contact }),
	"ATTACH":        each(func(e *model.Event) *[]string { return &e.Attach }),
	"RELATED-TO":    each(func(e *model.Event) *[]string { return &e.Related }),
}

var todoFields = fieldTable[model.Todo]{
	"UID":              text(func(t *model.Todo) *string { return &t.UID }),
	"DTSTAMP":          text(func(t *model.Todo) *string { return &t.DTStamp }),
	"DTSTART":          text(func(t *model.Todo) *string { return &t.DTStart }),
	"SUMMARY":          text(func(t *model.Todo) *string { return &t.Summary }),
	"DESCRIPTION":      text(func(t *model.Todo) *string { return &t.Description }),
	"DUE":              text(func(t *model.Todo) *string { return &t.Due }),
	"COMPLETED":        text(func(t *model.Todo) *string { return &t.Completed }),
	"PERCENT-COMPLETE": integer(func(t *model.Todo) **int { return &t.PercentComplete }),
	"PRIORITY":         integer(func(t *model.Todo) **int { return &t.Priority }),
	"SEQUENCE":         integer(func(t *model.Todo) **int { return &t.Sequence }),
	"STATUS":           enum(func(t *model.Todo) *model.TodoStatus { return &t.Status }),
	"CLASS":            enum(func(t *model.Todo) *model.Class { return &t.Class }),
	"CATEGORIES":       list(func(t *model.Todo) *[]string { return &t.Categories }),
}

var journalFields = fieldTable[model.Journal]{
	"UID":         text(func(j *model.Journal) *string { return &j.UID }),
	"DTSTAMP":     text(func(j *model.Journal) *string { return &j.DTStamp }),
	"DTSTART":     text(func(j *model.Journal) *string { return &j.DTStart }),
	"SUMMARY":     text(func(j *model.Journal) *string { return &j.Summary }),
	"DESCRIPTION": text(func(j *model.Journal) *string { return &j.Description }),
	"STATUS":      enum(func(j *model.Journal) *model.JournalStatus { return &j.Status }),
	"CLASS":       enum(func(j *model.Journal) *model.Class { return &j.Class }),
	"CATEGORIES":  list(func(j *model.Journal) *[]string { return &j.Categories }),
}

var freeBusyFields = fieldTable[model.FreeBusy]{
	"UID":       text(func(f *model.FreeBusy) *string { return &f.UID }),
	"DTSTAMP":   text(func(f *model.FreeBusy) *string { return &f.DTStamp }),
	"DTSTART":   text(func(f *model.FreeBusy) *string { return &f.DTStart }),
	"DTEND":     text(func(f *model.FreeBusy) *string { return &f.DTEnd }),
	"ORGANIZER": person(func(f *model.FreeBusy) **model.Person { return &f.Organizer }),
	"ATTENDEE":  people(func(f *model.FreeBusy) *[]model.Person { return &f.Attendee }),
	"FREEBUSY":  list(func(f *model.FreeBusy) *[]string { return &f.FreeBusy }),
}

// mapEvent turns a VEVENT block into a candidate record. Nested blocks
// (typically VALARM) are preserved as unparsed components.
func mapEvent(b *Block, tr appLog.Tracer) (model.Event, error) {
	var ev model.Event
	err := eventFields.apply(b.Type, &ev, b.Properties, func(e *model.Event) *map[string]string { return &e.CustomProperties }, tr)
	for _, c := range b.Children {
		ev.UnparsedComponents = append(ev.UnparsedComponents, unparsed(c))
	}
	return ev, err
}

func mapTodo(b *Block, tr appLog.Tracer) (model.Todo, error) {
	var td model.Todo
	err := todoFields.apply(b.Type, &td, b.Properties, func(t *model.Todo) *map[string]string { return &t.CustomProperties }, tr)
	for _, c := range b.Children {
		td.UnparsedComponents = append(td.UnparsedComponents, unparsed(c))
	}
	return td, err
}

func mapJournal(b *Block, tr appLog.Tracer) (model.Journal, error) {
	var j model.Journal
	err := journalFields.apply(b.Type, &j, b.Properties, func(j *model.Journal) *map[string]string { return &j.CustomProperties }, tr)
	return j, err
}

func mapFreeBusy(b *Block, tr appLog.Tracer) (model.FreeBusy, error) {
	var fb model.FreeBusy
	err := freeBusyFields.apply(b.Type, &fb, b.Properties, func(f *model.FreeBusy) *map[string]string { return &f.CustomProperties }, tr)
	return fb, err
}

// mapTimezone keeps the VTIMEZONE opaque. Every property is written back as
// NAME:VALUE in original order; nested STANDARD/DAYLIGHT rules keep their
// BEGIN/END markers so the rules stay distinguishable.
func mapTimezone(b *Block, _ appLog.Tracer) (model.Timezone, error) {
	var tz model.Timezone
	var lines []string
	for _, p := range b.Properties {
		if p.Name == "TZID" {
			tz.TZID = p.Value
		}
		lines = append(lines, p.Name+":"+p.Raw)
	}
	for _, c := range b.Children {
		serializeRule(&lines, c)
	}
	tz.RawData = strings.Join(lines, "\n")
	return tz, nil
}

func serializeRule(lines *[]string, b *Block) {
	*lines = append(*lines, "BEGIN:"+b.Type)
	for _, p := range b.Properties {
		*lines = append(*lines, p.Name+":"+p.Raw)
	}
	for _, c := range b.Children {
		serializeRule(lines, c)
	}
	*lines = append(*lines, "END:"+b.Type)
}

func unparsed(b *Block) model.UnparsedComponent {
	return model.UnparsedComponent{Type: b.Type, RawData: Dump(b)}
}

// calendarMapper maps one VCALENDAR block, validating each child as it
// goes. Child failures never abort the calendar; they become warnings.
type calendarMapper struct {
	tr       appLog.Tracer
	v        *validator
	warnings []string
}

func (m *calendarMapper) mapCalendar(b *Block) (model.Calendar, error) {
	cal := model.NewCalendar()
	err := calendarFields.apply(b.Type, &cal, b.Properties, func(c *model.Calendar) *map[string]string { return &c.CustomProperties }, m.tr)
	if err != nil {
		return cal, err
	}

	for i, child := range b.Children {
		pos := i + 1
		switch child.Type {
		case "VEVENT":
			collect(m, child, pos, &cal.Events, mapEvent, m.v.event, func(e *model.Event) string { return e.UID })
		case "VTODO":
			collect(m, child, pos, &cal.Todos, mapTodo, m.v.todo, func(t *model.Todo) string { return t.UID })
		case "VJOURNAL":
			collect(m, child, pos, &cal.Journals, mapJournal, m.v.journal, func(j *model.Journal) string { return j.UID })
		case "VFREEBUSY":
			collect(m, child, pos, &cal.FreeBusys, mapFreeBusy, m.v.freeBusy, func(f *model.FreeBusy) string { return f.UID })
		case "VTIMEZONE":
			collect(m, child, pos, &cal.Timezones, mapTimezone, m.v.timezone, func(z *model.Timezone) string { return z.TZID })
		default:
			m.tr.Trace("preserving unparsed component", "type", child.Type, "position", pos)
			cal.UnparsedComponents = append(cal.UnparsedComponents, unparsed(child))
		}
	}

	return cal, m.v.calendar(&cal)
}

// collect maps and validates one child block, appending it to dst on
// success and recording a warning otherwise.
func collect[T any](m *calendarMapper, b *Block, pos int, dst *[]T,
	mapFn func(*Block, appLog.Tracer) (T, error), validate func(*T) error, id func(*T) string) {

	rec, err := mapFn(b, m.tr)
	if err == nil {
		err = validate(&rec)
	}
	if err != nil {
		m.warnings = append(m.warnings, fmt.Sprintf("skipping %s #%d%s: %v", b.Type, pos, describe(id(&rec)), err))
		m.tr.Trace("component dropped", "type", b.Type, "position", pos, "err", err.Error())
		return
	}
	*dst = append(*dst, rec)
}

func describe(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf(" (%q)", id)
}
