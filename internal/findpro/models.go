package findpro

import (
	"strings"

	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Hours holds operating-hours flags. A nil *Hours means the contractor
// never published hours, which fails every hours tag.
type Hours struct {
	OpenNow      bool `json:"open_now" yaml:"open_now"`
	OpenToday    bool `json:"open_today" yaml:"open_today"`
	Weekend      bool `json:"weekend" yaml:"weekend"`
	Evenings     bool `json:"evenings" yaml:"evenings"`
	EarlyMorning bool `json:"early_morning" yaml:"early_morning"`
	TwentyFour7  bool `json:"twenty_four_seven" yaml:"twenty_four_seven"`
}

type Contractor struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Services     []string `json:"services" yaml:"services"`
	Badges       []string `json:"badges" yaml:"badges"`
	Bio          string   `json:"bio,omitempty" yaml:"bio"`
	Rating       float64  `json:"rating" yaml:"rating"`
	AirlinkScore int      `json:"airlink_score,omitempty" yaml:"airlink_score"`
	Years        int      `json:"years,omitempty" yaml:"years"`
	City         string   `json:"city,omitempty" yaml:"city"`
	Zip          string   `json:"zip,omitempty" yaml:"zip"`
	ServiceZips  []string `json:"service_zips" yaml:"service_zips"`
	Loc          *LatLng  `json:"loc,omitempty" yaml:"loc"`
	Hours        *Hours   `json:"hours,omitempty" yaml:"hours"`
	Emergency    bool     `json:"emergency,omitempty" yaml:"emergency"`
}

// is247 reads the round-the-clock flag, which lives on the hours block.
func (c Contractor) is247() bool {
	return c.Hours != nil && c.Hours.TwentyFour7
}

// HoursTag selects one operating-hours requirement.
type HoursTag string

const (
	OpenNow      HoursTag = "open_now"
	OpenToday    HoursTag = "open_today"
	Weekends     HoursTag = "weekends"
	Evenings     HoursTag = "evenings"
	EarlyMorning HoursTag = "early_morning"
	TwentyFour7  HoursTag = "24_7"
)

var HoursTags = []HoursTag{OpenNow, OpenToday, Weekends, Evenings, EarlyMorning, TwentyFour7}

func ParseHoursTag(s string) (HoursTag, error) {
	t := HoursTag(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range HoursTags {
		if t == known {
			return t, nil
		}
	}
	return "", utils.NewValidationError("hours", "unknown hours tag %q", s)
}

// has reports whether h affirmatively carries tag.
func (h *Hours) has(tag HoursTag) bool {
	if h == nil {
		return false
	}
	switch tag {
	case OpenNow:
		return h.OpenNow
	case OpenToday:
		return h.OpenToday
	case Weekends:
		return h.Weekend
	case Evenings:
		return h.Evenings
	case EarlyMorning:
		return h.EarlyMorning
	case TwentyFour7:
		return h.TwentyFour7
	}
	return false
}

type SortMode string

const (
	SortBest       SortMode = "best"
	SortDistance   SortMode = "distance"
	SortRating     SortMode = "rating"
	SortExperience SortMode = "experience"
)

// ParseSortMode falls back to best for anything it does not recognize.
func ParseSortMode(s string) SortMode {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SortDistance, SortRating, SortExperience:
		return m
	}
	return SortBest
}

// Query is one search request. Numeric floors of zero disable their filter.
type Query struct {
	Text          string     `json:"text"`
	Category      string     `json:"category,omitempty"`
	Radius        float64    `json:"radius"`
	MinRating     float64    `json:"min_rating"`
	MinYears      int        `json:"min_years"`
	EmergencyOnly bool       `json:"emergency_only"`
	HoursTags     []HoursTag `json:"hours_tags,omitempty"`
	Center        LatLng     `json:"center"`
	Sort          SortMode   `json:"sort"`
}

// DefaultQuery is the initial search state: 15 miles around lower Manhattan.
func DefaultQuery() Query {
	return Query{
		Radius: DefaultRadius,
		Center: DefaultCenter,
		Sort:   SortBest,
	}
}

// Result pairs a contractor with its distance from the search center.
// Distance is nil when it was never computed.
type Result struct {
	Contractor Contractor `json:"contractor"`
	Distance   *float64   `json:"distance,omitempty"`
}
