package signals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

// EventType is the closed set of regulatory event kinds.
type EventType string

const (
	Inspection EventType = "Inspection"
	Permit     EventType = "Permit"
	License    EventType = "License"
	Violation  EventType = "Violation"
)

// EventTypes lists every type in display order.
var EventTypes = []EventType{Inspection, Permit, License, Violation}

// ParseEventType accepts any casing ("INSPECTION", "inspection").
func ParseEventType(s string) (EventType, error) {
	for _, t := range EventTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", utils.NewValidationError("type", "unknown event type %q", s)
}

func (t *EventType) UnmarshalText(b []byte) error {
	v, err := ParseEventType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Field names the event attribute a clause reads.
type Field string

const (
	FieldSubject      Field = "subject"
	FieldAddress      Field = "address"
	FieldScope        Field = "scope"
	FieldJurisdiction Field = "jurisdiction"
)

func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldSubject, FieldAddress, FieldScope, FieldJurisdiction:
		return f, nil
	}
	return "", utils.NewValidationError("field", "unknown field %q", s)
}

func (f *Field) UnmarshalText(b []byte) error {
	v, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

type Op string

const (
	OpContains Op = "contains"
	OpEquals   Op = "equals"
)

func ParseOp(s string) (Op, error) {
	switch o := Op(strings.ToLower(strings.TrimSpace(s))); o {
	case OpContains, OpEquals:
		return o, nil
	}
	return "", utils.NewValidationError("op", "unknown operator %q", s)
}

func (o *Op) UnmarshalText(b []byte) error {
	v, err := ParseOp(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

type Logic string

const (
	And Logic = "AND"
	Or  Logic = "OR"
)

func ParseLogic(s string) (Logic, error) {
	switch l := Logic(strings.ToUpper(strings.TrimSpace(s))); l {
	case And, Or:
		return l, nil
	}
	return "", utils.NewValidationError("logic", "unknown logic %q", s)
}

func (l *Logic) UnmarshalText(b []byte) error {
	v, err := ParseLogic(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Clause compares one event field against Value.
type Clause struct {
	Field Field  `json:"field" yaml:"field"`
	Op    Op     `json:"op" yaml:"op"`
	Value string `json:"value" yaml:"value"`
}

// UnmarshalJSON treats a non-string value (number, null, object) as the
// empty string rather than failing the whole rule.
func (c *Clause) UnmarshalJSON(b []byte) error {
	var aux struct {
		Field Field           `json:"field"`
		Op    Op              `json:"op"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.Field, c.Op, c.Value = aux.Field, aux.Op, ""

	raw := bytes.TrimSpace(aux.Value)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &c.Value); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalYAML applies the same coercion as UnmarshalJSON to rule files:
// only a string scalar survives as Value.
func (c *Clause) UnmarshalYAML(b []byte) error {
	var aux struct {
		Field string `yaml:"field"`
		Op    string `yaml:"op"`
		Value any    `yaml:"value"`
	}
	if err := yaml.Unmarshal(b, &aux); err != nil {
		return err
	}

	var out Clause
	if aux.Field != "" {
		f, err := ParseField(aux.Field)
		if err != nil {
			return err
		}
		out.Field = f
	}
	if aux.Op != "" {
		o, err := ParseOp(aux.Op)
		if err != nil {
			return err
		}
		out.Op = o
	}
	if v, ok := aux.Value.(string); ok {
		out.Value = v
	}
	*c = out
	return nil
}

type Group struct {
	Logic   Logic    `json:"logic" yaml:"logic"`
	Clauses []Clause `json:"clauses" yaml:"clauses"`
}

// Rule is a type filter plus clause groups that must all pass.
// An empty Types set matches every type.
type Rule struct {
	Types  []EventType `json:"types" yaml:"types"`
	Groups []Group     `json:"groups" yaml:"groups"`
}

// Validate checks that every enum in the rule holds a known value. Rules
// decoded from JSON or YAML are already checked field by field; Validate
// covers rules built in code.
func (r Rule) Validate() error {
	for i, t := range r.Types {
		if _, err := ParseEventType(string(t)); err != nil {
			return utils.NewValidationError(fmt.Sprintf("types[%d]", i), "unknown event type %q", t)
		}
	}
	for gi, g := range r.Groups {
		if _, err := ParseLogic(string(g.Logic)); err != nil {
			return utils.NewValidationError(fmt.Sprintf("groups[%d].logic", gi), "must be AND or OR")
		}
		for ci, c := range g.Clauses {
			if _, err := ParseField(string(c.Field)); err != nil {
				return utils.NewValidationError(fmt.Sprintf("groups[%d].clauses[%d].field", gi, ci),
					"must be one of subject, address, scope, jurisdiction")
			}
			if _, err := ParseOp(string(c.Op)); err != nil {
				return utils.NewValidationError(fmt.Sprintf("groups[%d].clauses[%d].op", gi, ci),
					"must be contains or equals")
			}
		}
	}
	return nil
}

// Event is one public regulatory record from the feed. Events are never
// modified after load.
type Event struct {
	ID           string    `json:"id" yaml:"id"`
	Type         EventType `json:"type" yaml:"type"`
	Status       string    `json:"status" yaml:"status"`
	Subject      string    `json:"subject" yaml:"subject"`
	Jurisdiction string    `json:"jurisdiction" yaml:"jurisdiction"`
	Address      string    `json:"address,omitempty" yaml:"address"`
	Scope        []string  `json:"scope" yaml:"scope"`
	// OccurredAt is YYYY-MM-DD or RFC 3339; both sort lexically.
	OccurredAt string `json:"occurred_at" yaml:"occurred_at"`

	Category string `json:"category,omitempty" yaml:"category"`
	City     string `json:"city,omitempty" yaml:"city"`
	Zip      string `json:"zip,omitempty" yaml:"zip"`
	Details  string `json:"details,omitempty" yaml:"details"`
}
