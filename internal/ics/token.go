package ics

import (
	"strings"

	"github.com/jalexw/calendar-ics-parser/internal/model"
)

// Property is one tokenized content line. Name and parameter keys are upper
// case; parameter values and Value are unescaped. Raw is the value exactly as
// written, which list-valued properties need to tell "\," from ",".
type Property struct {
	Name   string
	Params map[string]string
	Value  string
	Raw    string
}

// Tokenize splits a logical line into name, parameters and value.
// BEGIN/END markers tokenize like any other property.
func Tokenize(line string) (Property, error) {
	idx := valueSeparator(line)
	if idx < 0 {
		return Property{}, ErrMalformedPropertyLine
	}

	head, raw := line[:idx], line[idx+1:]
	name, paramStr, hasParams := strings.Cut(head, ";")
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return Property{}, ErrMalformedPropertyLine
	}

	p := Property{
		Name:  name,
		Value: Unescape(raw),
		Raw:   raw,
	}
	if hasParams {
		p.Params = parseParams(paramStr)
	}
	return p, nil
}

// valueSeparator returns the index of the first colon that is neither
// backslash-escaped nor inside a double-quoted parameter value.
func valueSeparator(line string) int {
	escaped, quoted := false, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == ':' && !quoted:
			return i
		}
	}
	return -1
}

func parseParams(s string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
			val = val[1 : len(val)-1]
		}
		params[key] = Unescape(val)
	}
	return params
}

// Unescape decodes RFC 5545 TEXT escapes in a single left-to-right pass, so
// a decoded backslash is never read as the start of another escape.
// Unknown escapes are kept as written.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case ';', ',', '\\':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Escape is the inverse of Unescape.
func Escape(s string) string {
	return textEscaper.Replace(s)
}

// SplitList splits a raw (still escaped) list value on unescaped commas.
// Each item is trimmed and unescaped; a blank trailing item is dropped.
func SplitList(raw string) []string {
	var (
		segments []string
		cur      strings.Builder
		escaped  bool
	)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			cur.WriteByte(c)
			escaped = true
		case c == ',':
			segments = append(segments, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	segments = append(segments, cur.String())

	var out []string
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" && i == len(segments)-1 {
			continue
		}
		out = append(out, Unescape(seg))
	}
	return out
}

// ParsePerson reads an ORGANIZER or ATTENDEE property. The mailto: scheme is
// stripped case-insensitively; RSVP is true only for the exact value "TRUE".
func ParsePerson(p Property) model.Person {
	email := strings.TrimSpace(p.Value)
	if len(email) >= len("mailto:") && strings.EqualFold(email[:len("mailto:")], "mailto:") {
		email = email[len("mailto:"):]
	}

	person := model.Person{
		Email:      email,
		CommonName: p.Params["CN"],
		Role:       model.Role(p.Params["ROLE"]),
		PartStat:   model.PartStat(p.Params["PARTSTAT"]),
	}
	if v, ok := p.Params["RSVP"]; ok {
		rsvp := v == "TRUE"
		person.RSVP = &rsvp
	}
	return person
}
