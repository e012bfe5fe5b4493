package ics

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"

	"github.com/teambition/rrule-go"

	"github.com/jalexw/calendar-ics-parser/internal/model"
)

var (
	dateTimePattern = regexp.MustCompile(`^\d{8}(T\d{6}Z?)?$`)
	durationPattern = regexp.MustCompile(`^[+-]?P(\d+W|\d+D|(\d+D)?T(\d+H)?(\d+M)?(\d+S)?)$`)
	geoPattern      = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?);([+-]?\d+(?:\.\d+)?)$`)
)

// validator applies the schema to candidate records. Problems that make a
// record unusable are returned as *ValidationError; advisory findings go
// through warn and never drop anything.
type validator struct {
	strictRRule bool
	warn        func(string)
}

func (v *validator) calendar(c *model.Calendar) error {
	var p problems
	if c.Version != "2.0" {
		p.add("version must be \"2.0\", got %q", c.Version)
	}
	p.required("prodid", c.ProdID)
	p.enum("calscale", string(c.CalScale), c.CalScale.Valid())
	p.enum("method", string(c.Method), c.Method.Valid())
	return p.err("VCALENDAR")
}

func (v *validator) event(e *model.Event) error {
	var p problems
	p.required("uid", e.UID)
	p.required("dtstamp", e.DTStamp)
	p.dateTime("dtstamp", e.DTStamp)
	p.dateTime("dtstart", e.DTStart)
	p.dateTime("dtend", e.DTEnd)
	p.dateTime("created", e.Created)
	p.dateTime("last-modified", e.LastModified)
	p.dateTime("recurrence-id", e.RecurID)
	p.duration("duration", e.Duration)
	for _, d := range e.ExDate {
		p.dateTime("exdate", d)
	}
	p.enum("status", string(e.Status), e.Status.Valid())
	p.enum("class", string(e.Class), e.Class.Valid())
	p.enum("transp", string(e.Transp), e.Transp.Valid())
	p.between("priority", e.Priority, 0, 9)
	p.atLeast("sequence", e.Sequence, 0)
	p.geo(e.Geo)
	v.rrule(&p, e.UID, e.RRule)
	if e.DTEnd != "" && e.Duration != "" {
		p.add("dtend and duration are mutually exclusive")
	}
	if e.Organizer != nil {
		p.person("organizer", *e.Organizer)
	}
	for _, a := range e.Attendee {
		p.person("attendee", a)
	}
	return p.err("VEVENT")
}

func (v *validator) todo(t *model.Todo) error {
	var p problems
	p.required("uid", t.UID)
	p.required("dtstamp", t.DTStamp)
	p.dateTime("dtstamp", t.DTStamp)
	p.dateTime("dtstart", t.DTStart)
	p.dateTime("due", t.Due)
	p.dateTime("completed", t.Completed)
	p.between("percent-complete", t.PercentComplete, 0, 100)
	p.between("priority", t.Priority, 0, 9)
	p.atLeast("sequence", t.Sequence, 0)
	p.enum("status", string(t.Status), t.Status.Valid())
	p.enum("class", string(t.Class), t.Class.Valid())
	return p.err("VTODO")
}

func (v *validator) journal(j *model.Journal) error {
	var p problems
	p.required("uid", j.UID)
	p.required("dtstamp", j.DTStamp)
	p.dateTime("dtstamp", j.DTStamp)
	p.dateTime("dtstart", j.DTStart)
	p.enum("status", string(j.Status), j.Status.Valid())
	p.enum("class", string(j.Class), j.Class.Valid())
	return p.err("VJOURNAL")
}

func (v *validator) freeBusy(f *model.FreeBusy) error {
	var p problems
	p.required("uid", f.UID)
	p.required("dtstamp", f.DTStamp)
	p.dateTime("dtstamp", f.DTStamp)
	p.dateTime("dtstart", f.DTStart)
	p.dateTime("dtend", f.DTEnd)
	if f.Organizer != nil {
		p.person("organizer", *f.Organizer)
	}
	for _, a := range f.Attendee {
		p.person("attendee", a)
	}
	return p.err("VFREEBUSY")
}

// timezone has nothing to check: the data is an opaque passthrough.
func (v *validator) timezone(*model.Timezone) error {
	return nil
}

// rrule requires the FREQ= prefix. The rule body is then handed to rrule-go;
// a rule it cannot read is only a warning unless strictRRule is set.
func (v *validator) rrule(p *problems, uid, rule string) {
	if rule == "" {
		return
	}
	if !strings.HasPrefix(rule, "FREQ=") {
		p.add("rrule must start with FREQ=, got %q", rule)
		return
	}
	if _, err := rrule.StrToROption(rule); err != nil {
		if v.strictRRule {
			p.add("rrule %q: %v", rule, err)
			return
		}
		if v.warn != nil {
			v.warn(fmt.Sprintf("VEVENT%s: rrule %q is not understood by the recurrence engine: %v", describe(uid), rule, err))
		}
	}
}

type problems []string

func (p *problems) add(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p *problems) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		p.add("%s is required", field)
	}
}

// dateTime checks an optional DATE or DATE-TIME value.
func (p *problems) dateTime(field, value string) {
	if value != "" && !dateTimePattern.MatchString(value) {
		p.add("%s %q is not a DATE or DATE-TIME", field, value)
	}
}

// duration checks an optional DURATION value; a bare "T" with no time
// part is rejected.
func (p *problems) duration(field, value string) {
	if value != "" && (!durationPattern.MatchString(value) || strings.HasSuffix(value, "T")) {
		p.add("%s %q is not a DURATION", field, value)
	}
}

func (p *problems) enum(field, value string, ok bool) {
	if !ok {
		p.add("%s %q is not an allowed value", field, value)
	}
}

func (p *problems) between(field string, n *int, lo, hi int) {
	if n != nil && (*n < lo || *n > hi) {
		p.add("%s %d out of range %d-%d", field, *n, lo, hi)
	}
}

func (p *problems) atLeast(field string, n *int, lo int) {
	if n != nil && *n < lo {
		p.add("%s %d must be >= %d", field, *n, lo)
	}
}

func (p *problems) geo(value string) {
	if value == "" {
		return
	}
	m := geoPattern.FindStringSubmatch(value)
	if m == nil {
		p.add("geo %q is not lat;lon", value)
		return
	}
	lat, _ := strconv.ParseFloat(m[1], 64)
	lon, _ := strconv.ParseFloat(m[2], 64)
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		p.add("geo %q out of range", value)
	}
}

func (p *problems) person(field string, v model.Person) {
	if !validEmail(v.Email) {
		p.add("%s email %q is not a valid address", field, v.Email)
	}
	p.enum(field+" role", string(v.Role), v.Role.Valid())
	p.enum(field+" partstat", string(v.PartStat), v.PartStat.Valid())
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func (p problems) err(component string) error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Component: component, Problems: p}
}
