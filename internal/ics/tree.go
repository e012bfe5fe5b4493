package ics

import (
	"sort"
	"strings"

	appLog "github.com/jalexw/calendar-ics-parser/internal/log"
)

// Block is one BEGIN/END delimited component. A parent exclusively owns its
// children; nothing points back up the tree.
type Block struct {
	Type       string
	Properties []Property
	Children   []*Block
}

// BuildTree rebuilds the component tree from unfolded lines using an
// explicit stack of open blocks.
//
// Malformed lines, stray or mismatched END markers and properties outside
// any component are skipped and reported in the returned warnings. Blocks
// still open at end of input make the whole document unusable: BuildTree
// then returns an *UnclosedError and no roots.
func BuildTree(lines []string, tr appLog.Tracer) ([]*Block, []string, error) {
	if tr == nil {
		tr = appLog.NopTracer
	}

	var (
		roots    []*Block
		stack    []*Block
		warnings []string
	)
	skip := func(err *LineError) {
		warnings = append(warnings, err.Error())
		tr.Trace("skipping line", "line", err.Line, "reason", err.Kind.Error(), "text", err.Text)
	}

	for i, line := range lines {
		n := i + 1

		prop, err := Tokenize(line)
		if err != nil {
			skip(&LineError{Kind: ErrMalformedPropertyLine, Line: n, Text: line})
			continue
		}

		switch prop.Name {
		case "BEGIN":
			typ := componentType(prop.Value)
			if typ == "" {
				skip(&LineError{Kind: ErrMalformedPropertyLine, Line: n, Text: line, Detail: "BEGIN without component type"})
				continue
			}
			b := &Block{Type: typ}
			if len(stack) == 0 {
				roots = append(roots, b)
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, b)
			}
			stack = append(stack, b)

		case "END":
			typ := componentType(prop.Value)
			if len(stack) == 0 {
				skip(&LineError{Kind: ErrUnexpectedEnd, Line: n, Text: line})
				continue
			}
			if top := stack[len(stack)-1]; top.Type != typ {
				skip(&LineError{Kind: ErrMismatchedEnd, Line: n, Text: line, Detail: "open component is " + top.Type})
				continue
			}
			stack = stack[:len(stack)-1]

		default:
			if len(stack) == 0 {
				skip(&LineError{Kind: ErrPropertyOutsideComponent, Line: n, Text: line})
				continue
			}
			top := stack[len(stack)-1]
			top.Properties = append(top.Properties, prop)
		}
	}

	if len(stack) > 0 {
		types := make([]string, len(stack))
		for i, b := range stack {
			types[i] = b.Type
		}
		return nil, warnings, &UnclosedError{Types: types}
	}

	return roots, warnings, nil
}

func componentType(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// Dump writes b back out as content lines joined with "\n", including its
// BEGIN/END markers, parameters and nested blocks. Parameters are sorted by
// key so the output is stable.
func Dump(b *Block) string {
	var lines []string
	dumpInto(&lines, b)
	return strings.Join(lines, "\n")
}

func dumpInto(lines *[]string, b *Block) {
	*lines = append(*lines, "BEGIN:"+b.Type)
	for _, p := range b.Properties {
		*lines = append(*lines, contentLine(p))
	}
	for _, c := range b.Children {
		dumpInto(lines, c)
	}
	*lines = append(*lines, "END:"+b.Type)
}

func contentLine(p Property) string {
	var sb strings.Builder
	sb.WriteString(p.Name)

	keys := make([]string, 0, len(p.Params))
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := p.Params[k]
		if strings.ContainsAny(v, ";:,") {
			v = `"` + v + `"`
		}
		sb.WriteString(";" + k + "=" + v)
	}

	sb.WriteString(":")
	sb.WriteString(p.Raw)
	return sb.String()
}
