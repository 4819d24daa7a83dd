package findpro

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AirLinkPros/airlink-backend/internal/metrics"
	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

// ParseQuery builds a Query from URL parameters, starting from
// DefaultQuery. Negative or unparsable numbers, unknown hours tags and
// categories outside the catalog are validation errors.
func ParseQuery(v url.Values, categories []string) (Query, error) {
	q := DefaultQuery()
	q.Text = strings.TrimSpace(v.Get("q"))
	q.Sort = ParseSortMode(v.Get("sort"))

	if c := strings.TrimSpace(v.Get("category")); c != "" {
		canon, ok := canonicalCategory(c, categories)
		if !ok {
			return Query{}, utils.NewValidationError("category", "unknown category %q", c)
		}
		q.Category = canon
	}

	var err error
	if q.Radius, err = nonNegative(v, "radius", q.Radius); err != nil {
		return Query{}, err
	}
	if q.MinRating, err = nonNegative(v, "min_rating", 0); err != nil {
		return Query{}, err
	}
	if s := strings.TrimSpace(v.Get("min_years")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return Query{}, utils.NewValidationError("min_years", "must be a non-negative integer")
		}
		q.MinYears = n
	}

	if s := strings.TrimSpace(v.Get("emergency")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Query{}, utils.NewValidationError("emergency", "must be true or false")
		}
		q.EmergencyOnly = b
	}

	for _, raw := range v["hours"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			tag, err := ParseHoursTag(part)
			if err != nil {
				return Query{}, err
			}
			q.HoursTags = append(q.HoursTags, tag)
		}
	}

	lat, lng := strings.TrimSpace(v.Get("lat")), strings.TrimSpace(v.Get("lng"))
	if lat != "" || lng != "" {
		la, errLat := strconv.ParseFloat(lat, 64)
		ln, errLng := strconv.ParseFloat(lng, 64)
		p := LatLng{Lat: la, Lng: ln}
		if errLat != nil || errLng != nil || !p.Valid() || la < -90 || la > 90 || ln < -180 || ln > 180 {
			return Query{}, utils.NewValidationError("center", "lat and lng must both be valid coordinates")
		}
		q.Center = p
	}
	// A known ZIP recenters the map; unknown ones leave the center alone.
	if c, ok := LookupZip(strings.TrimSpace(v.Get("zip"))); ok {
		q.Center = c
	}

	return q, nil
}

func nonNegative(v url.Values, key string, def float64) (float64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) || f < 0 {
		return 0, utils.NewValidationError(key, "must be a non-negative number")
	}
	return f, nil
}

func canonicalCategory(c string, categories []string) (string, bool) {
	if len(categories) == 0 {
		return c, true
	}
	for _, known := range categories {
		if strings.EqualFold(known, c) {
			return known, true
		}
	}
	return "", false
}

// Handlers serves contractor search over a fixed roster.
type Handlers struct {
	contractors []Contractor
	categories  []string
	metrics     *metrics.Metrics
	log         *zap.Logger
}

func NewHandlers(contractors []Contractor, categories []string, m *metrics.Metrics, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		contractors: contractors,
		categories:  categories,
		metrics:     m,
		log:         log.Named("findpro"),
	}
}

type SearchResponse struct {
	Results []Result `json:"results"`
	Count   int      `json:"count"`
	Center  LatLng   `json:"center"`
	Radius  float64  `json:"radius"`
	Sort    SortMode `json:"sort"`
}

func (h *Handlers) SearchHandler(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query(), h.categories)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	results := Search(h.contractors, q)
	utils.AddServerTiming(w, utils.Timing{Name: "search", Dur: time.Since(start)})

	h.metrics.ObserveSearch(len(results))
	h.log.Debug("search",
		zap.String("q", q.Text),
		zap.String("category", q.Category),
		zap.Float64("radius", q.Radius),
		zap.String("sort", string(q.Sort)),
		zap.Int("results", len(results)))

	utils.WriteJSON(w, http.StatusOK, SearchResponse{
		Results: results,
		Count:   len(results),
		Center:  q.Center,
		Radius:  q.Radius,
		Sort:    q.Sort,
	})
}

func (h *Handlers) ZipHandler(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zip")
	c, ok := LookupZip(zip)
	if !ok {
		http.Error(w, "Unknown ZIP", http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"zip": zip, "center": c})
}

func (h *Handlers) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.categories)
}

func (h *Handlers) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/search", h.SearchHandler)
	r.Get("/zip/{zip}", h.ZipHandler)
	r.Get("/categories", h.CategoriesHandler)

	return r
}
