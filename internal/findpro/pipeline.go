package findpro

import (
	"math"
	"sort"
	"strings"

	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

// Search filters the roster by q, then sorts. The roster is not modified.
func Search(contractors []Contractor, q Query) []Result {
	text := utils.FoldTrim(q.Text)

	out := make([]Result, 0, len(contractors))
	for _, c := range contractors {
		if q.Category != "" && !hasService(c, q.Category) {
			continue
		}
		if text != "" && !strings.Contains(haystack(c), text) {
			continue
		}
		if q.MinRating > 0 && c.Rating < q.MinRating {
			continue
		}
		if q.MinYears > 0 && c.Years < q.MinYears {
			continue
		}
		if q.EmergencyOnly && !c.Emergency && !c.is247() {
			continue
		}
		if !matchesHours(c, q.HoursTags) {
			continue
		}
		if c.Loc == nil || !c.Loc.Valid() {
			continue
		}
		d := Distance(q.Center, *c.Loc)
		if !(d <= q.Radius) {
			continue
		}
		out = append(out, Result{Contractor: c, Distance: &d})
	}

	SortResults(out, q.Sort)
	return out
}

// SortResults orders results in place. Ties keep their input order.
func SortResults(results []Result, mode SortMode) {
	var less func(a, b Result) bool
	switch mode {
	case SortDistance:
		less = func(a, b Result) bool { return distanceOf(a) < distanceOf(b) }
	case SortRating:
		less = func(a, b Result) bool { return a.Contractor.Rating > b.Contractor.Rating }
	case SortExperience:
		less = func(a, b Result) bool { return a.Contractor.Years > b.Contractor.Years }
	default:
		less = func(a, b Result) bool {
			if a.Contractor.Rating != b.Contractor.Rating {
				return a.Contractor.Rating > b.Contractor.Rating
			}
			return distanceOf(a) < distanceOf(b)
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return less(results[i], results[j]) })
}

// distanceOf sorts unknown distances last.
func distanceOf(r Result) float64 {
	if r.Distance == nil {
		return math.Inf(1)
	}
	return *r.Distance
}

func hasService(c Contractor, category string) bool {
	for _, s := range c.Services {
		if strings.EqualFold(s, category) {
			return true
		}
	}
	return false
}

func haystack(c Contractor) string {
	return utils.Fold(c.Name + " " + c.City + " " + strings.Join(c.Services, " "))
}

// matchesHours is strict: every requested tag must be set on the record.
func matchesHours(c Contractor, tags []HoursTag) bool {
	for _, t := range tags {
		if !c.Hours.has(t) {
			return false
		}
	}
	return true
}
