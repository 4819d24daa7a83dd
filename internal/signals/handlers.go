package signals

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AirLinkPros/airlink-backend/internal/metrics"
	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

// SeenTracker stores each user's "signals last seen" marker.
type SeenTracker interface {
	LastSignalsSeen(userID string) string
	MarkSignalsSeen(userID string, at time.Time) string
}

// maxRuleBody caps rule preview payloads.
const maxRuleBody = 64 << 10

// Handlers serves the signals endpoints over a fixed event feed.
type Handlers struct {
	events  []Event
	seen    SeenTracker
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewHandlers(events []Event, seen SeenTracker, m *metrics.Metrics, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		events:  events,
		seen:    seen,
		metrics: m,
		log:     log.Named("signals"),
		now:     time.Now,
	}
}

func (h *Handlers) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, PreviewStats(h.events))
}

func (h *Handlers) TypesHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, EventTypes)
}

type FeedResponse struct {
	Events        []Event  `json:"events"`
	Showing       int      `json:"showing"`
	Total         int      `json:"total"`
	NewSince      int      `json:"new_since"`
	LastSeenAt    string   `json:"last_seen_at,omitempty"`
	Jurisdictions []string `json:"jurisdictions"`
}

func parseFeedQuery(r *http.Request) (FeedQuery, error) {
	v := r.URL.Query()
	return ParseFeedQuery(v.Get("q"), v.Get("type"), v.Get("jurisdiction"))
}

func (h *Handlers) FeedHandler(w http.ResponseWriter, r *http.Request) {
	q, err := parseFeedQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	lastSeen := ""
	if h.seen != nil {
		lastSeen = h.seen.LastSignalsSeen(userID)
	}

	list := FilterFeed(h.events, q)
	utils.WriteJSON(w, http.StatusOK, FeedResponse{
		Events:        list,
		Showing:       len(list),
		Total:         len(h.events),
		NewSince:      NewSince(h.events, lastSeen),
		LastSeenAt:    lastSeen,
		Jurisdictions: Jurisdictions(h.events),
	})
}

func (h *Handlers) ExportHandler(w http.ResponseWriter, r *http.Request) {
	q, err := parseFeedQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, FilterFeed(h.events, q)); err != nil {
		h.log.Error("csv export failed", zap.Error(err))
		http.Error(w, "Failed to export signals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+CSVFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) SeenHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if h.seen == nil {
		http.Error(w, "Workspace unavailable", http.StatusServiceUnavailable)
		return
	}
	at := h.seen.MarkSignalsSeen(userID, h.now())
	utils.WriteJSON(w, http.StatusOK, map[string]string{"last_seen_at": at})
}

type RulePreviewResponse struct {
	Count   int     `json:"count"`
	Matches []Event `json:"matches"`
}

// RulePreviewHandler evaluates a rule from the request body against the
// feed. The rule is not stored.
func (h *Handlers) RulePreviewHandler(w http.ResponseWriter, r *http.Request) {
	var rule Rule
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRuleBody)).Decode(&rule); err != nil {
		var ve *utils.ValidationError
		if errors.As(err, &ve) {
			http.Error(w, ve.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Invalid rule: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := rule.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	matches := Filter(h.events, rule)
	h.metrics.ObserveRulePreview(len(matches))
	h.log.Debug("rule preview",
		zap.Int("types", len(rule.Types)),
		zap.Int("groups", len(rule.Groups)),
		zap.Int("matches", len(matches)))

	utils.WriteJSON(w, http.StatusOK, RulePreviewResponse{
		Count:   len(matches),
		Matches: matches,
	})
}
