package model

// ParseResult is everything a single parse call produces. Renderers and the
// HTTP API read only the exported fields below.
type ParseResult struct {
	Calendars []Calendar `json:"calendars" yaml:"calendars"`
	Metadata  Metadata   `json:"metadata" yaml:"metadata"`
}

// Metadata carries summary counts (summed across all calendars) and the
// diagnostics collected in emission order.
type Metadata struct {
	TotalEvents    int      `json:"totalEvents" yaml:"totalEvents"`
	TotalTodos     int      `json:"totalTodos" yaml:"totalTodos"`
	TotalJournals  int      `json:"totalJournals" yaml:"totalJournals"`
	TotalFreebusys int      `json:"totalFreebusys" yaml:"totalFreebusys"`
	TotalTimezones int      `json:"totalTimezones" yaml:"totalTimezones"`
	ParseErrors    []string `json:"parseErrors" yaml:"parseErrors"`
	ParseWarnings  []string `json:"parseWarnings" yaml:"parseWarnings"`
}

// Calendar is a single VCALENDAR block. The five component sequences and
// UnparsedComponents are always present, possibly empty.
type Calendar struct {
	Version         string   `json:"version" yaml:"version"`
	ProdID          string   `json:"prodid" yaml:"prodid"`
	CalScale        CalScale `json:"calscale,omitempty" yaml:"calscale,omitempty"`
	Method          Method   `json:"method,omitempty" yaml:"method,omitempty"`
	CalName         string   `json:"calname,omitempty" yaml:"calname,omitempty"`
	CalDesc         string   `json:"caldesc,omitempty" yaml:"caldesc,omitempty"`
	Timezone        string   `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	RefreshInterval string   `json:"refreshInterval,omitempty" yaml:"refreshInterval,omitempty"`

	CustomProperties map[string]string `json:"customProperties,omitempty" yaml:"customProperties,omitempty"`

	Events             []Event             `json:"events" yaml:"events"`
	Todos              []Todo              `json:"todos" yaml:"todos"`
	Journals           []Journal           `json:"journals" yaml:"journals"`
	FreeBusys          []FreeBusy          `json:"freebusys" yaml:"freebusys"`
	Timezones          []Timezone          `json:"timezones" yaml:"timezones"`
	UnparsedComponents []UnparsedComponent `json:"unparsedComponents" yaml:"unparsedComponents"`
}

// NewCalendar returns a Calendar with every sequence initialized to empty.
func NewCalendar() Calendar {
	return Calendar{
		Events:             []Event{},
		Todos:              []Todo{},
		Journals:           []Journal{},
		FreeBusys:          []FreeBusy{},
		Timezones:          []Timezone{},
		UnparsedComponents: []UnparsedComponent{},
	}
}

// Event represents a VEVENT. Repeatable properties that never occurred are
// nil (and therefore absent from JSON/YAML), never empty slices.
type Event struct {
	UID          string      `json:"uid" yaml:"uid"`
	DTStamp      string      `json:"dtstamp" yaml:"dtstamp"`
	DTStart      string      `json:"dtstart,omitempty" yaml:"dtstart,omitempty"`
	DTEnd        string      `json:"dtend,omitempty" yaml:"dtend,omitempty"`
	Duration     string      `json:"duration,omitempty" yaml:"duration,omitempty"`
	Summary      string      `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
	Location     string      `json:"location,omitempty" yaml:"location,omitempty"`
	Status       EventStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Class        Class       `json:"class,omitempty" yaml:"class,omitempty"`
	Transp       Transp      `json:"transp,omitempty" yaml:"transp,omitempty"`
	Priority     *int        `json:"priority,omitempty" yaml:"priority,omitempty"`
	Sequence     *int        `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Created      string      `json:"created,omitempty" yaml:"created,omitempty"`
	LastModified string      `json:"lastModified,omitempty" yaml:"lastModified,omitempty"`
	URL          string      `json:"url,omitempty" yaml:"url,omitempty"`
	Geo          string      `json:"geo,omitempty" yaml:"geo,omitempty"`
	RecurID      string      `json:"recurid,omitempty" yaml:"recurid,omitempty"`
	RRule        string      `json:"rrule,omitempty" yaml:"rrule,omitempty"`
	Organizer    *Person     `json:"organizer,omitempty" yaml:"organizer,omitempty"`

	Attendee   []Person `json:"attendee,omitempty" yaml:"attendee,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Comment    []string `json:"comment,omitempty" yaml:"comment,omitempty"`
	Contact    []string `json:"contact,omitempty" yaml:"contact,omitempty"`
	Attach     []string `json:"attach,omitempty" yaml:"attach,omitempty"`
	ExDate     []string `json:"exdate,omitempty" yaml:"exdate,omitempty"`
	Related    []string `json:"related,omitempty" yaml:"related,omitempty"`
	Resources  []string `json:"resources,omitempty" yaml:"resources,omitempty"`
	RDate      []string `json:"rdate,omitempty" yaml:"rdate,omitempty"`

	CustomProperties   map[string]string   `json:"customProperties,omitempty" yaml:"customProperties,omitempty"`
	UnparsedComponents []UnparsedComponent `json:"unparsedComponents,omitempty" yaml:"unparsedComponents,omitempty"`
}

// Todo represents a VTODO.
type Todo struct {
	UID             string     `json:"uid" yaml:"uid"`
	DTStamp         string     `json:"dtstamp" yaml:"dtstamp"`
	DTStart         string     `json:"dtstart,omitempty" yaml:"dtstart,omitempty"`
	Summary         string     `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description     string     `json:"description,omitempty" yaml:"description,omitempty"`
	Due             string     `json:"due,omitempty" yaml:"due,omitempty"`
	Completed       string     `json:"completed,omitempty" yaml:"completed,omitempty"`
	PercentComplete *int       `json:"percentComplete,omitempty" yaml:"percentComplete,omitempty"`
	Priority        *int       `json:"priority,omitempty" yaml:"priority,omitempty"`
	Sequence        *int       `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Status          TodoStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Class           Class      `json:"class,omitempty" yaml:"class,omitempty"`
	Categories      []string   `json:"categories,omitempty" yaml:"categories,omitempty"`

	CustomProperties   map[string]string   `json:"customProperties,omitempty" yaml:"customProperties,omitempty"`
	UnparsedComponents []UnparsedComponent `json:"unparsedComponents,omitempty" yaml:"unparsedComponents,omitempty"`
}

// Journal represents a VJOURNAL.
type Journal struct {
	UID         string        `json:"uid" yaml:"uid"`
	DTStamp     string        `json:"dtstamp" yaml:"dtstamp"`
	DTStart     string        `json:"dtstart,omitempty" yaml:"dtstart,omitempty"`
	Summary     string        `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Status      JournalStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Class       Class         `json:"class,omitempty" yaml:"class,omitempty"`
	Categories  []string      `json:"categories,omitempty" yaml:"categories,omitempty"`

	CustomProperties map[string]string `json:"customProperties,omitempty" yaml:"customProperties,omitempty"`
}

// FreeBusy represents a VFREEBUSY. Each FreeBusy entry is one period as
// written, e.g. "19970308T160000Z/PT8H30M".
type FreeBusy struct {
	UID       string   `json:"uid" yaml:"uid"`
	DTStamp   string   `json:"dtstamp" yaml:"dtstamp"`
	DTStart   string   `json:"dtstart,omitempty" yaml:"dtstart,omitempty"`
	DTEnd     string   `json:"dtend,omitempty" yaml:"dtend,omitempty"`
	Organizer *Person  `json:"organizer,omitempty" yaml:"organizer,omitempty"`
	Attendee  []Person `json:"attendee,omitempty" yaml:"attendee,omitempty"`
	FreeBusy  []string `json:"freebusy,omitempty" yaml:"freebusy,omitempty"`

	CustomProperties map[string]string `json:"customProperties,omitempty" yaml:"customProperties,omitempty"`
}

// Timezone keeps VTIMEZONE data opaque: STANDARD/DAYLIGHT rules are not
// interpreted, only serialized back into RawData.
//
// RawData is not a flat property list. It holds one "NAME:VALUE" line per
// property, newline separated, in input order; nested rules appear between
// their own "BEGIN:STANDARD"/"END:STANDARD" (or DAYLIGHT) lines. Values are
// kept escaped as written and parameters are dropped.
type Timezone struct {
	TZID    string `json:"tzid,omitempty" yaml:"tzid,omitempty"`
	RawData string `json:"rawData" yaml:"rawData"`
}

// UnparsedComponent preserves a sub-component of an unrecognized type.
type UnparsedComponent struct {
	Type    string `json:"type" yaml:"type"`
	RawData string `json:"rawData" yaml:"rawData"`
}

// Person is an ORGANIZER or ATTENDEE value.
type Person struct {
	Email      string   `json:"email" yaml:"email"`
	CommonName string   `json:"commonName,omitempty" yaml:"commonName,omitempty"`
	Role       Role     `json:"role,omitempty" yaml:"role,omitempty"`
	PartStat   PartStat `json:"partstat,omitempty" yaml:"partstat,omitempty"`
	RSVP       *bool    `json:"rsvp,omitempty" yaml:"rsvp,omitempty"`
}
