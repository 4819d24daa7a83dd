package workspace

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AirLinkPros/airlink-backend/internal/metrics"
	"github.com/AirLinkPros/airlink-backend/internal/middleware"
	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

const maxActionBody = 16 << 10

type Handlers struct {
	registry *Registry
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewHandlers(reg *Registry, m *metrics.Metrics, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{registry: reg, metrics: m, log: log.Named("workspace"), now: time.Now}
}

type Response struct {
	State       State `json:"state"`
	UnreadCount int   `json:"unread_count"`
}

func respond(w http.ResponseWriter, s State) {
	utils.WriteJSON(w, http.StatusOK, Response{State: s, UnreadCount: UnreadCount(s)})
}

func (h *Handlers) dispatch(w http.ResponseWriter, userID string, a Action) {
	s := h.registry.Dispatch(userID, a)
	h.metrics.ObserveAction(a.Type())
	h.log.Debug("dispatch", zap.String("user_id", userID), zap.String("action", a.Type()))
	respond(w, s)
}

func (h *Handlers) StateHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	respond(w, h.registry.For(userID).GetState())
}

func (h *Handlers) ActionHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionBody))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	a, err := DecodeAction(raw, h.now())
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrUnknownAction) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}
	h.dispatch(w, userID, a)
}

func (h *Handlers) MessagesReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var a MarkMessagesRead
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody)).Decode(&a); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.dispatch(w, userID, a)
}

func (h *Handlers) MoveLeadHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var body struct {
		Stage string `json:"stage"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody)).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	stage, err := ParseStage(body.Stage)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if !hasLead(h.registry.For(userID).GetState(), id) {
		http.Error(w, "Lead not found", http.StatusNotFound)
		return
	}
	h.dispatch(w, userID, MoveLead{ID: id, Stage: stage})
}

func hasLead(s State, id string) bool {
	for _, l := range s.Leads {
		if l.ID == id {
			return true
		}
	}
	return false
}

func (h *Handlers) SetupRoutes(sessions middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(sessions))

	r.Get("/", h.StateHandler)
	r.Post("/actions", h.ActionHandler)
	r.Post("/messages/read", h.MessagesReadHandler)
	r.Post("/leads/{id}/move", h.MoveLeadHandler)

	return r
}
