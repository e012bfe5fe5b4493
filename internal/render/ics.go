package render

import (
	"sort"
	"strconv"
	"strings"

	ical "github.com/arran4/golang-ical"

	"github.com/jalexw/calendar-ics-parser/internal/ics"
	"github.com/jalexw/calendar-ics-parser/internal/model"
)

// ICS serializes every calendar of res back to iCalendar text using
// golang-ical. Value escaping and line folding are left to golang-ical.
// Unparsed components are not re-emitted.
func ICS(res *model.ParseResult) string {
	var sb strings.Builder
	for _, c := range res.Calendars {
		sb.WriteString(toICal(c).Serialize())
	}
	return sb.String()
}

func toICal(c model.Calendar) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetVersion(c.Version)
	cal.SetProductId(c.ProdID)
	if c.Method != "" {
		cal.SetMethod(ical.Method(c.Method))
	}
	calProp(cal, "CALSCALE", string(c.CalScale))
	calProp(cal, "X-WR-CALNAME", c.CalName)
	calProp(cal, "X-WR-CALDESC", c.CalDesc)
	calProp(cal, "X-WR-TIMEZONE", c.Timezone)
	calProp(cal, "REFRESH-INTERVAL", c.RefreshInterval)
	for _, k := range sortedKeys(c.CustomProperties) {
		calProp(cal, k, c.CustomProperties[k])
	}

	for _, tz := range c.Timezones {
		cal.Components = append(cal.Components, timezoneComponent(tz))
	}
	for _, e := range c.Events {
		cal.Components = append(cal.Components, eventComponent(e))
	}
	for _, t := range c.Todos {
		cal.Components = append(cal.Components, todoComponent(t))
	}
	for _, j := range c.Journals {
		cal.Components = append(cal.Components, journalComponent(j))
	}
	for _, fb := range c.FreeBusys {
		cal.Components = append(cal.Components, freeBusyComponent(fb))
	}
	return cal
}

func eventComponent(e model.Event) *ical.VEvent {
	ev := &ical.VEvent{}
	cb := &ev.ComponentBase
	set(cb, string(ical.ComponentPropertyUniqueId), e.UID)
	set(cb, "DTSTAMP", e.DTStamp)
	set(cb, string(ical.ComponentPropertyDtStart), e.DTStart)
	set(cb, string(ical.ComponentPropertyDtEnd), e.DTEnd)
	set(cb, "DURATION", e.Duration)
	set(cb, string(ical.ComponentPropertySummary), e.Summary)
	set(cb, string(ical.ComponentPropertyDescription), e.Description)
	set(cb, string(ical.ComponentPropertyLocation), e.Location)
	set(cb, "STATUS", string(e.Status))
	set(cb, "CLASS", string(e.Class))
	set(cb, "TRANSP", string(e.Transp))
	setInt(cb, "PRIORITY", e.Priority)
	setInt(cb, string(ical.ComponentPropertySequence), e.Sequence)
	set(cb, "CREATED", e.Created)
	set(cb, "LAST-MODIFIED", e.LastModified)
	set(cb, "URL", e.URL)
	set(cb, "GEO", e.Geo)
	set(cb, "RECURRENCE-ID", e.RecurID)
	set(cb, string(ical.ComponentPropertyRrule), e.RRule)
	if e.Organizer != nil {
		addPerson(cb, "ORGANIZER", *e.Organizer)
	}
	for _, a := range e.Attendee {
		addPerson(cb, "ATTENDEE", a)
	}
	add(cb, "CATEGORIES", e.Categories)
	add(cb, "COMMENT", e.Comment)
	add(cb, "CONTACT", e.Contact)
	add(cb, "ATTACH", e.Attach)
	add(cb, string(ical.ComponentPropertyExdate), e.ExDate)
	add(cb, "RELATED-TO", e.Related)
	add(cb, "RESOURCES", e.Resources)
	add(cb, "RDATE", e.RDate)
	custom(cb, e.CustomProperties)
	return ev
}

func todoComponent(t model.Todo) *ical.VTodo {
	td := &ical.VTodo{}
	cb := &td.ComponentBase
	set(cb, "UID", t.UID)
	set(cb, "DTSTAMP", t.DTStamp)
	set(cb, "DTSTART", t.DTStart)
	set(cb, "SUMMARY", t.Summary)
	set(cb, "DESCRIPTION", t.Description)
	set(cb, "DUE", t.Due)
	set(cb, "COMPLETED", t.Completed)
	setInt(cb, "PERCENT-COMPLETE", t.PercentComplete)
	setInt(cb, "PRIORITY", t.Priority)
	setInt(cb, "SEQUENCE", t.Sequence)
	set(cb, "STATUS", string(t.Status))
	set(cb, "CLASS", string(t.Class))
	add(cb, "CATEGORIES", t.Categories)
	custom(cb, t.CustomProperties)
	return td
}

func journalComponent(j model.Journal) *ical.VJournal {
	jr := &ical.VJournal{}
	cb := &jr.ComponentBase
	set(cb, "UID", j.UID)
	set(cb, "DTSTAMP", j.DTStamp)
	set(cb, "DTSTART", j.DTStart)
	set(cb, "SUMMARY", j.Summary)
	set(cb, "DESCRIPTION", j.Description)
	set(cb, "STATUS", string(j.Status))
	set(cb, "CLASS", string(j.Class))
	add(cb, "CATEGORIES", j.Categories)
	custom(cb, j.CustomProperties)
	return jr
}

func freeBusyComponent(f model.FreeBusy) *ical.VBusy {
	fb := &ical.VBusy{}
	cb := &fb.ComponentBase
	set(cb, "UID", f.UID)
	set(cb, "DTSTAMP", f.DTStamp)
	set(cb, "DTSTART", f.DTStart)
	set(cb, "DTEND", f.DTEnd)
	if f.Organizer != nil {
		addPerson(cb, "ORGANIZER", *f.Organizer)
	}
	for _, a := range f.Attendee {
		addPerson(cb, "ATTENDEE", a)
	}
	add(cb, "FREEBUSY", f.FreeBusy)
	custom(cb, f.CustomProperties)
	return fb
}

// timezoneComponent rebuilds a VTIMEZONE from its opaque RawData. Nested
// BEGIN/END markers become STANDARD/DAYLIGHT sub-components.
func timezoneComponent(tz model.Timezone) *ical.VTimezone {
	vtz := &ical.VTimezone{}
	cur := &vtz.ComponentBase
	for _, line := range strings.Split(tz.RawData, "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch {
		case name == "BEGIN" && value == "STANDARD":
			std := &ical.Standard{}
			vtz.Components = append(vtz.Components, std)
			cur = &std.ComponentBase
		case name == "BEGIN" && value == "DAYLIGHT":
			dl := &ical.Daylight{}
			vtz.Components = append(vtz.Components, dl)
			cur = &dl.ComponentBase
		case name == "END":
			cur = &vtz.ComponentBase
		case name == "BEGIN":
			// Other nested rules are not representable; their properties
			// land on the enclosing VTIMEZONE.
		default:
			// RawData keeps values escaped; golang-ical escapes again on output.
			cur.AddProperty(ical.ComponentProperty(name), ics.Unescape(value))
		}
	}
	if tz.TZID != "" && vtz.GetProperty(ical.ComponentProperty("TZID")) == nil {
		vtz.SetProperty(ical.ComponentProperty("TZID"), tz.TZID)
	}
	return vtz
}

func calProp(cal *ical.Calendar, name, value string) {
	if value == "" {
		return
	}
	cal.CalendarProperties = append(cal.CalendarProperties, ical.CalendarProperty{
		BaseProperty: ical.BaseProperty{
			IANAToken:      name,
			ICalParameters: map[string][]string{},
			Value:          value,
		},
	})
}

func set(cb *ical.ComponentBase, name, value string) {
	if value != "" {
		cb.SetProperty(ical.ComponentProperty(name), value)
	}
}

func setInt(cb *ical.ComponentBase, name string, n *int) {
	if n != nil {
		cb.SetProperty(ical.ComponentProperty(name), strconv.Itoa(*n))
	}
}

// add writes one property per value so list items never depend on how
// commas are escaped.
func add(cb *ical.ComponentBase, name string, values []string) {
	for _, v := range values {
		cb.AddProperty(ical.ComponentProperty(name), v)
	}
}

func addPerson(cb *ical.ComponentBase, name string, p model.Person) {
	var params []ical.PropertyParameter
	param := func(key, value string) {
		if value != "" {
			params = append(params, &ical.KeyValues{Key: key, Value: []string{value}})
		}
	}
	param("CN", p.CommonName)
	param("ROLE", string(p.Role))
	param("PARTSTAT", string(p.PartStat))
	if p.RSVP != nil {
		param("RSVP", strings.ToUpper(strconv.FormatBool(*p.RSVP)))
	}
	cb.AddProperty(ical.ComponentProperty(name), "mailto:"+p.Email, params...)
}

func custom(cb *ical.ComponentBase, m map[string]string) {
	for _, k := range sortedKeys(m) {
		cb.SetProperty(ical.ComponentProperty(k), m[k])
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
