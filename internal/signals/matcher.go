package signals

import (
	"strings"

	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

// Matches reports whether e passes r: its type is selected (or no types
// are selected) and every group evaluates true.
func Matches(e Event, r Rule) bool {
	if len(r.Types) > 0 && !hasType(r.Types, e.Type) {
		return false
	}
	for _, g := range r.Groups {
		if !groupMatches(e, g) {
			return false
		}
	}
	return true
}

// CountMatches is len(Filter(events, r)) without the allocation.
func CountMatches(events []Event, r Rule) int {
	n := 0
	for _, e := range events {
		if Matches(e, r) {
			n++
		}
	}
	return n
}

// Filter returns the matching events in input order.
func Filter(events []Event, r Rule) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if Matches(e, r) {
			out = append(out, e)
		}
	}
	return out
}

func hasType(types []EventType, t EventType) bool {
	for _, x := range types {
		if strings.EqualFold(string(x), string(t)) {
			return true
		}
	}
	return false
}

// groupMatches applies AND (all, vacuously true) or OR (any, vacuously
// false). Anything other than AND is treated as OR.
func groupMatches(e Event, g Group) bool {
	if g.Logic == And {
		for _, c := range g.Clauses {
			if !clauseMatches(e, c) {
				return false
			}
		}
		return true
	}
	for _, c := range g.Clauses {
		if clauseMatches(e, c) {
			return true
		}
	}
	return false
}

// clauseMatches compares case-insensitively. Anything other than contains
// is treated as equals.
func clauseMatches(e Event, c Clause) bool {
	hay := utils.Fold(fieldValue(e, c.Field))
	val := utils.Fold(c.Value)
	if c.Op == OpContains {
		return strings.Contains(hay, val)
	}
	return hay == val
}

func fieldValue(e Event, f Field) string {
	switch f {
	case FieldSubject:
		return e.Subject
	case FieldAddress:
		return e.Address
	case FieldScope:
		return strings.Join(e.Scope, ",")
	case FieldJurisdiction:
		return e.Jurisdiction
	}
	return ""
}
