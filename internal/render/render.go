// Package render turns a parse result into the output formats offered by
// the CLI and the HTTP API. Renderers only read the exported model fields.
package render

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jalexw/calendar-ics-parser/internal/model"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSimple Format = "simple"
	FormatPretty Format = "pretty"
	FormatTable  Format = "table"
	FormatICS    Format = "ics"
)

// Formats lists every supported format in a stable order.
var Formats = []Format{FormatPretty, FormatJSON, FormatYAML, FormatSimple, FormatTable, FormatICS}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown output format %q", s)
}

// Render writes res to w in format f.
func Render(w io.Writer, res *model.ParseResult, f Format) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatYAML:
		return writeYAML(w, res)
	case FormatSimple:
		return writeJSON(w, Simplify(res))
	case FormatPretty:
		return Pretty(w, res)
	case FormatTable:
		return Table(w, res)
	case FormatICS:
		_, err := io.WriteString(w, ICS(res))
		return errors.Wrap(err, "writing ics")
	default:
		return errors.Errorf("unknown output format %q", f)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encoding json")
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encoding yaml")
	}
	return errors.Wrap(enc.Close(), "encoding yaml")
}

// SimpleEvent is the flattened event view of the simple format.
type SimpleEvent struct {
	Calendar    string   `json:"calendar,omitempty"`
	UID         string   `json:"uid"`
	Summary     string   `json:"summary,omitempty"`
	Start       string   `json:"start,omitempty"`
	End         string   `json:"end,omitempty"`
	Location    string   `json:"location,omitempty"`
	Recurring   bool     `json:"recurring"`
	Attendees   []string `json:"attendees,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Description string   `json:"description,omitempty"`
}

// SimpleResult is the document written by the simple format.
type SimpleResult struct {
	Events   []SimpleEvent `json:"events"`
	Errors   []string      `json:"errors"`
	Warnings []string      `json:"warnings"`
}

// Simplify flattens every event of every calendar into one list. Calendars
// without X-WR-CALNAME are labelled by their PRODID.
func Simplify(res *model.ParseResult) SimpleResult {
	out := SimpleResult{
		Events:   []SimpleEvent{},
		Errors:   res.Metadata.ParseErrors,
		Warnings: res.Metadata.ParseWarnings,
	}
	for _, c := range res.Calendars {
		name := c.CalName
		if name == "" {
			name = c.ProdID
		}
		for _, e := range c.Events {
			se := SimpleEvent{
				Calendar:    name,
				UID:         e.UID,
				Summary:     e.Summary,
				Start:       e.DTStart,
				End:         e.DTEnd,
				Location:    e.Location,
				Recurring:   e.RRule != "" || len(e.RDate) > 0,
				Categories:  e.Categories,
				Description: e.Description,
			}
			for _, a := range e.Attendee {
				se.Attendees = append(se.Attendees, a.Email)
			}
			out.Events = append(out.Events, se)
		}
	}
	return out
}
