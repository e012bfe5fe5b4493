package ics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalexw/calendar-ics-parser/internal/model"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Property
	}{
		{
			name: "plain property",
			line: "SUMMARY:Team Meeting",
			want: Property{Name: "SUMMARY", Value: "Team Meeting", Raw: "Team Meeting"},
		},
		{
			name: "name is upper-cased",
			line: "summary:x",
			want: Property{Name: "SUMMARY", Value: "x", Raw: "x"},
		},
		{
			name: "parameters with quotes stripped",
			line: `ATTENDEE;cn="Jane Doe";ROLE=CHAIR:mailto:jane@example.com`,
			want: Property{
				Name:   "ATTENDEE",
				Params: map[string]string{"CN": "Jane Doe", "ROLE": "CHAIR"},
				Value:  "mailto:jane@example.com",
				Raw:    "mailto:jane@example.com",
			},
		},
		{
			name: "colon inside quoted parameter",
			line: `ORGANIZER;CN="Doe: J":mailto:j@example.com`,
			want: Property{
				Name:   "ORGANIZER",
				Params: map[string]string{"CN": "Doe: J"},
				Value:  "mailto:j@example.com",
				Raw:    "mailto:j@example.com",
			},
		},
		{
			name: "value is unescaped, raw is kept",
			line: `DESCRIPTION:Line one\nLine two\, with comma`,
			want: Property{Name: "DESCRIPTION", Value: "Line one\nLine two, with comma", Raw: `Line one\nLine two\, with comma`},
		},
		{
			name: "empty value",
			line: "LOCATION:",
			want: Property{Name: "LOCATION"},
		},
		{
			name: "begin marker",
			line: "BEGIN:VEVENT",
			want: Property{Name: "BEGIN", Value: "VEVENT", Raw: "VEVENT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_Malformed(t *testing.T) {
	for _, line := range []string{"NO COLON HERE", `ESCAPED\:COLON`, ":value", `X;P="a:b"`} {
		_, err := Tokenize(line)
		assert.ErrorIs(t, err, ErrMalformedPropertyLine, line)
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`a\nb`, "a\nb"},
		{`a\Nb`, "a\nb"},
		{`a\rb\tc`, "a\rb\tc"},
		{`x\;y\,z`, "x;y,z"},
		{`back\\slash`, `back\slash`},
		// A decoded backslash must not start another escape.
		{`\\n`, `\n`},
		{`\\\n`, "\\\n"},
		{`unknown\q`, `unknown\q`},
		{`trailing\`, `trailing\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Unescape(tt.in), tt.in)
	}
}

func TestUnescape_IdentityWithoutBackslash(t *testing.T) {
	for _, s := range []string{"", "plain", "a;b,c", "line\nbreak", "ünïcödé :;,"} {
		assert.Equal(t, s, Unescape(s))
	}
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	for _, s := range []string{
		"",
		"plain",
		"semi;colon, comma",
		`back\slash`,
		`\n is not a newline`,
		"real\nnewline\r\tand tab",
		`\\\;`,
	} {
		assert.Equal(t, s, Unescape(Escape(s)), s)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"escaped comma stays in item", `Work\,Fun,Travel`, []string{"Work,Fun", "Travel"}},
		{"items trimmed", " a , b ,c", []string{"a", "b", "c"}},
		{"blank trailing item dropped", "a,b, ", []string{"a", "b"}},
		{"blank middle item kept", "a,,b", []string{"a", "", "b"}},
		{"single item", "20231215T140000Z", []string{"20231215T140000Z"}},
		{"empty", "", nil},
		{"escaped backslash before comma", `a\\,b`, []string{`a\`, "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.raw))
		})
	}
}

func TestParsePerson(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name string
		line string
		want model.Person
	}{
		{
			name: "all parameters",
			line: "ATTENDEE;CN=Jane Doe;ROLE=REQ-PARTICIPANT;PARTSTAT=ACCEPTED;RSVP=TRUE:mailto:jane@example.com",
			want: model.Person{
				Email:      "jane@example.com",
				CommonName: "Jane Doe",
				Role:       model.RoleRequired,
				PartStat:   model.PartStatAccepted,
				RSVP:       &yes,
			},
		},
		{
			name: "mailto is case-insensitive",
			line: "ORGANIZER:MAILTO:boss@example.com",
			want: model.Person{Email: "boss@example.com"},
		},
		{
			name: "rsvp is case-sensitive",
			line: "ATTENDEE;RSVP=true:mailto:a@example.com",
			want: model.Person{Email: "a@example.com", RSVP: &no},
		},
		{
			name: "no scheme",
			line: "ATTENDEE:plain@example.com",
			want: model.Person{Email: "plain@example.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Tokenize(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParsePerson(p))
		})
	}
}
