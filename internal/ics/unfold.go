package ics

import "strings"

// Unfold splits text into logical lines (RFC 5545 §3.1).
//
// CRLF, bare LF and bare CR all end a physical line. A physical line that
// starts with a single space or tab continues the previous one: that one
// character is dropped and the rest is appended without a separator. A
// continuation with nothing before it is kept as a line of its own.
// Blank and whitespace-only lines are dropped after unfolding.
func Unfold(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		out []string
		cur strings.Builder
		has bool
	)
	flush := func() {
		if has {
			if s := cur.String(); strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		cur.Reset()
		has = false
	}

	for _, physical := range strings.Split(text, "\n") {
		if len(physical) > 0 && (physical[0] == ' ' || physical[0] == '\t') && has {
			cur.WriteString(physical[1:])
			continue
		}
		flush()
		cur.WriteString(physical)
		has = true
	}
	flush()

	return out
}
