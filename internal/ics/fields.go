package ics

import (
	"errors"
	"strconv"
	"strings"

	appLog "github.com/jalexw/calendar-ics-parser/internal/log"
	"github.com/jalexw/calendar-ics-parser/internal/model"
)

// setter stores one property on a record of type T.
type setter[T any] func(rec *T, p Property) error

// fieldTable maps an upper-case property name to the setter handling it.
// Tables are the single place that documents which properties a component
// understands.
type fieldTable[T any] map[string]setter[T]

var errNotInteger = errors.New("not an integer")

// apply runs every property of a block through the table. Unknown X- names
// go into the custom map returned by custom (last occurrence wins); other
// unknown names are ignored and traced.
func (t fieldTable[T]) apply(component string, rec *T, props []Property, custom func(*T) *map[string]string, tr appLog.Tracer) error {
	for _, p := range props {
		if set, ok := t[p.Name]; ok {
			if err := set(rec, p); err != nil {
				return &MappingError{Component: component, Property: p.Name, Value: p.Value, Err: err}
			}
			continue
		}
		if isExtension(p.Name) && custom != nil {
			m := custom(rec)
			if *m == nil {
				*m = make(map[string]string)
			}
			(*m)[p.Name] = p.Value
			continue
		}
		tr.Trace("ignoring property", "component", component, "property", p.Name)
	}
	return nil
}

func isExtension(name string) bool {
	return strings.HasPrefix(name, "X-")
}

func text[T any](field func(*T) *string) setter[T] {
	return func(rec *T, p Property) error {
		*field(rec) = p.Value
		return nil
	}
}

// enum stores the value as a closed enumeration type; membership is checked
// by the validator, not here.
func enum[T any, E ~string](field func(*T) *E) setter[T] {
	return func(rec *T, p Property) error {
		*field(rec) = E(strings.TrimSpace(p.Value))
		return nil
	}
}

// integer parses strictly: anything strconv.Atoi rejects is a mapping
// failure rather than a silent zero.
func integer[T any](field func(*T) **int) setter[T] {
	return func(rec *T, p Property) error {
		n, err := strconv.Atoi(strings.TrimSpace(p.Value))
		if err != nil {
			return errNotInteger
		}
		*field(rec) = &n
		return nil
	}
}

// list appends every item of a comma separated value.
func list[T any](field func(*T) *[]string) setter[T] {
	return func(rec *T, p Property) error {
		dst := field(rec)
		*dst = append(*dst, SplitList(p.Raw)...)
		return nil
	}
}

// each appends the whole value once per occurrence of the property.
func each[T any](field func(*T) *[]string) setter[T] {
	return func(rec *T, p Property) error {
		dst := field(rec)
		*dst = append(*dst, p.Value)
		return nil
	}
}

func person[T any](field func(*T) **model.Person) setter[T] {
	return func(rec *T, p Property) error {
		v := ParsePerson(p)
		*field(rec) = &v
		return nil
	}
}

func people[T any](field func(*T) *[]model.Person) setter[T] {
	return func(rec *T, p Property) error {
		dst := field(rec)
		*dst = append(*dst, ParsePerson(p))
		return nil
	}
}
