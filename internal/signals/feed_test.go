package signals

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFeed_SortsNewestFirst(t *testing.T) {
	events := sampleEvents()
	// Reverse the input so sorting has work to do.
	rev := []Event{events[3], events[1], events[0], events[2]}

	got := FilterFeed(rev, FeedQuery{})
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, ids(got))
	assert.Equal(t, "s4", rev[0].ID, "input order is untouched")
}

func TestFilterFeed_Filters(t *testing.T) {
	cases := []struct {
		name string
		q    FeedQuery
		want []string
	}{
		{"by type", FeedQuery{Type: Inspection}, []string{"s1", "s4"}},
		{"by jurisdiction", FeedQuery{Jurisdiction: "JC Building Dept"}, []string{"s3"}},
		{"text over status", FeedQuery{Text: "ISSUED"}, []string{"s3"}},
		{"text over address", FeedQuery{Text: "queens"}, []string{"s2"}},
		{"text ignores scope", FeedQuery{Text: "chimney"}, []string{}},
		{"combined", FeedQuery{Type: Inspection, Text: "boiler"}, []string{"s4"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(FilterFeed(sampleEvents(), tc.q)))
		})
	}
}

func TestFilterFeed_StableForEqualTimestamps(t *testing.T) {
	events := []Event{
		{ID: "a", OccurredAt: "2025-08-10"},
		{ID: "b", OccurredAt: "2025-08-12"},
		{ID: "c", OccurredAt: "2025-08-10"},
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids(FilterFeed(events, FeedQuery{})))
}

func TestJurisdictions(t *testing.T) {
	events := append(sampleEvents(), Event{ID: "x"})
	assert.Equal(t, []string{"NYC DOB", "JC Building Dept"}, Jurisdictions(events))
	assert.Equal(t, []string{}, Jurisdictions(nil))
}

func TestNewSince(t *testing.T) {
	events := sampleEvents()
	assert.Equal(t, 4, NewSince(events, ""))
	assert.Equal(t, 2, NewSince(events, "2025-08-15"))
	assert.Equal(t, 1, NewSince(events, "2025-08-16T09:00:00Z"))
	assert.Equal(t, 0, NewSince(events, "2025-09-01"))
}

func TestPreviewStats(t *testing.T) {
	small := PreviewStats(sampleEvents())
	assert.Equal(t, 4, small.Total)
	assert.Equal(t, 1, small.PerDay, "rate never drops below one a day")
	assert.Len(t, small.Events, 4)

	many := make([]Event, 75)
	for i := range many {
		many[i] = Event{ID: string(rune('a' + i%26))}
	}
	big := PreviewStats(many)
	assert.Equal(t, 75, big.Total)
	assert.Equal(t, 3, big.PerDay, "75/30 rounds to 3")
	assert.Len(t, big.Events, 6)

	big.Events[0].ID = "changed"
	assert.NotEqual(t, "changed", many[0].ID, "preview owns its slice")
}

func TestWriteCSV(t *testing.T) {
	events := []Event{
		{
			Type: Violation, Status: "New", Subject: `Roof "flashing" missing`,
			Jurisdiction: "NYC DOB", Scope: []string{"flashing", "chimney"},
			OccurredAt: "2025-08-16",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, events))

	assert.True(t, strings.HasPrefix(buf.String(), "Type,Status,Subject,Jurisdiction,Address,Scope,Occurred At\n"))
	assert.Contains(t, buf.String(), `"Roof ""flashing"" missing"`)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"Violation", "New", `Roof "flashing" missing`, "NYC DOB", "", "flashing|chimney", "2025-08-16",
	}, rows[1])
}

func TestParseFeedQuery(t *testing.T) {
	q, err := ParseFeedQuery("  chimney ", "all", "ALL")
	require.NoError(t, err)
	assert.Equal(t, FeedQuery{Text: "chimney"}, q)

	q, err = ParseFeedQuery("", "permit", "NYC DOB")
	require.NoError(t, err)
	assert.Equal(t, Permit, q.Type)
	assert.Equal(t, "NYC DOB", q.Jurisdiction)

	_, err = ParseFeedQuery("", "Complaint", "")
	assert.Error(t, err)
}
