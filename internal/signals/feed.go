package signals

import (
	"math"
	"sort"
	"strings"

	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

// FeedQuery narrows the dashboard feed. Zero values disable a filter.
type FeedQuery struct {
	Text         string
	Type         EventType
	Jurisdiction string
}

// ParseFeedQuery builds a FeedQuery from raw filter values. "ALL" or an
// empty value disables the type and jurisdiction filters.
func ParseFeedQuery(text, typ, jurisdiction string) (FeedQuery, error) {
	q := FeedQuery{
		Text:         strings.TrimSpace(text),
		Jurisdiction: strings.TrimSpace(jurisdiction),
	}
	if strings.EqualFold(q.Jurisdiction, "ALL") {
		q.Jurisdiction = ""
	}
	if t := strings.TrimSpace(typ); t != "" && !strings.EqualFold(t, "ALL") {
		et, err := ParseEventType(t)
		if err != nil {
			return FeedQuery{}, err
		}
		q.Type = et
	}
	return q, nil
}

// FilterFeed applies q and returns the events newest first. The input
// slice is not reordered.
func FilterFeed(events []Event, q FeedQuery) []Event {
	text := utils.Fold(q.Text)

	out := make([]Event, 0, len(events))
	for _, e := range events {
		if q.Type != "" && e.Type != q.Type {
			continue
		}
		if q.Jurisdiction != "" && e.Jurisdiction != q.Jurisdiction {
			continue
		}
		if text != "" &&
			!strings.Contains(utils.Fold(e.Subject), text) &&
			!strings.Contains(utils.Fold(e.Address), text) &&
			!strings.Contains(utils.Fold(e.Status), text) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt > out[j].OccurredAt
	})
	return out
}

// Jurisdictions returns the distinct non-empty jurisdictions in first-seen order.
func Jurisdictions(events []Event) []string {
	seen := make(map[string]struct{}, len(events))
	out := []string{}
	for _, e := range events {
		if e.Jurisdiction == "" {
			continue
		}
		if _, ok := seen[e.Jurisdiction]; ok {
			continue
		}
		seen[e.Jurisdiction] = struct{}{}
		out = append(out, e.Jurisdiction)
	}
	return out
}

// NewSince counts events that occurred after seenAt. With no marker every
// event is new.
func NewSince(events []Event, seenAt string) int {
	if seenAt == "" {
		return len(events)
	}
	n := 0
	for _, e := range events {
		if e.OccurredAt > seenAt {
			n++
		}
	}
	return n
}

const previewSize = 6

// Preview is the public teaser shown on the marketing pages.
type Preview struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	PerDay int     `json:"per_day"`
}

// PreviewStats takes the first six events and estimates a daily rate over
// a 30-day window, never reporting less than one per day.
func PreviewStats(events []Event) Preview {
	n := len(events)
	head := events
	if n > previewSize {
		head = events[:previewSize]
	}
	perDay := int(math.Round(float64(n) / 30))
	if perDay < 1 {
		perDay = 1
	}
	return Preview{
		Events: append([]Event(nil), head...),
		Total:  n,
		PerDay: perDay,
	}
}
