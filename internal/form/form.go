// Package form provides a declarative schema for HTML form validation:
// typed fields carry an ordered list of validators, and validation
// collects errors per field into a structured result instead of
// mutating shared state.
package form

import (
	"net/url"
	"strings"
)

// Validator checks one submitted value. It receives all submitted
// values so cross-field rules (EqualTo) can be expressed.
type Validator func(values url.Values, value string) error

type Field struct {
	Name       string
	Label      string
	Optional   bool // skip validators when the trimmed value is empty
	Trim       bool // strip surrounding whitespace before validating (off for passwords)
	Validators []Validator
}

type Schema struct {
	Fields []Field
}

// Errors maps field name to its validation messages, in validator
// declaration order.
type Errors map[string][]string

func (e Errors) Any() bool {
	return len(e) > 0
}

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// First returns the first message for a field, or "".
func (e Errors) First(field string) string {
	msgs := e[field]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[0]
}

// All flattens every message in field declaration order; handy for
// flash rendering.
func (e Errors) All(s Schema) []string {
	var out []string
	for _, f := range s.Fields {
		out = append(out, e[f.Name]...)
	}
	return out
}

// Validate runs every field's validators in declared order and collects
// all failures. Values returns the (possibly trimmed) submitted data
// keyed by field name.
func (s Schema) Validate(values url.Values) (map[string]string, Errors) {
	data := make(map[string]string, len(s.Fields))
	errs := make(Errors)

	for _, f := range s.Fields {
		value := values.Get(f.Name)
		if f.Trim {
			value = strings.TrimSpace(value)
		}
		data[f.Name] = value

		if f.Optional && strings.TrimSpace(value) == "" {
			continue
		}

		for _, v := range f.Validators {
			err := v(values, value)
			if err != nil {
				errs.Add(f.Name, err.Error())
			}
		}
	}

	return data, errs
}
