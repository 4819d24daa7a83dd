package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AirLinkPros/airlink-backend/internal/logging"
	"github.com/AirLinkPros/airlink-backend/internal/metrics"
	"github.com/AirLinkPros/airlink-backend/internal/middleware"
	"github.com/AirLinkPros/airlink-backend/internal/utils"
	"github.com/AirLinkPros/airlink-backend/internal/workspace"
)

const SessionTTL = 6 * time.Hour

// BcryptCost is the work factor for new password hashes.
var BcryptCost = 12

// Workspaces receives sign-in and sign-out transitions for a user's
// workspace.
type Workspaces interface {
	Dispatch(userID string, a workspace.Action) workspace.State
}

type Deps struct {
	Store      Store
	Workspaces Workspaces
	// Limiter guards POST /login; nil disables rate limiting.
	Limiter *middleware.RateLimiter
	Metrics *metrics.Metrics
	Log     *zap.Logger
	// SecureCookies marks the session cookie Secure with SameSite=None.
	SecureCookies bool
}

type Handlers struct {
	Deps
	now func() time.Time
}

func NewHandlers(d Deps) *Handlers {
	d.Log = logging.OrNop(d.Log)
	if d.Limiter != nil && d.Limiter.OnLimited == nil {
		m := d.Metrics
		d.Limiter.OnLimited = func(*http.Request) { m.ObserveLogin("limited") }
	}
	return &Handlers{Deps: d, now: time.Now}
}

type signupResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (h *Handlers) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, signupResponse{Error: "Invalid request"})
		return
	}

	if err := req.Validate(); err != nil {
		var ve *utils.ValidationError
		msg := err.Error()
		if errors.As(err, &ve) {
			msg = ve.Message
		}
		utils.WriteJSON(w, http.StatusBadRequest, signupResponse{Error: msg})
		return
	}

	ctx := r.Context()
	if _, err := h.Store.FindUserByEmail(ctx, req.Email); err == nil {
		utils.WriteJSON(w, http.StatusConflict, signupResponse{Error: "Email is already registered."})
		return
	} else if !errors.Is(err, ErrUserNotFound) {
		h.Log.Error("[sign-up] lookup failed", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, signupResponse{Error: "Server error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(req.Password)), BcryptCost)
	if err != nil {
		h.Log.Error("[sign-up] hash failed", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, signupResponse{Error: "Server error hashing password"})
		return
	}

	if _, err := h.Store.InsertUser(ctx, req.Email, req.Name, string(hashed), req.Role); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			utils.WriteJSON(w, http.StatusConflict, signupResponse{Error: "Email is already registered."})
			return
		}
		h.Log.Error("[sign-up] insert failed", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, signupResponse{Error: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, signupResponse{OK: true})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	user, err := h.Store.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			h.Log.Error("[login] lookup failed", zap.Error(err))
			http.Error(w, "Server error", http.StatusInternalServerError)
			return
		}
		h.Metrics.ObserveLogin("invalid")
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(strings.TrimSpace(req.Password)))
	if err != nil {
		h.Metrics.ObserveLogin("invalid")
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.Store.CreateSession(ctx, user.UserID, h.now().Add(SessionTTL))
	if err != nil {
		h.Log.Error("[login] session failed", zap.Error(err), zap.String("user_id", user.UserID))
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, h.sessionCookie(sessionID, int(SessionTTL.Seconds())))

	if h.Workspaces != nil {
		h.Workspaces.Dispatch(user.UserID, workspace.SignIn{
			Name: user.Name,
			Role: workspace.Role(user.Role),
		})
	}
	h.Metrics.ObserveLogin("ok")

	utils.WriteJSON(w, http.StatusOK, user.me())
}

func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookie)
	if err != nil {
		http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
		return
	}

	if err := h.Store.DeleteSession(r.Context(), cookie.Value); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "Couldn't find session", http.StatusUnauthorized)
			return
		}
		h.Log.Error("[logout] delete failed", zap.Error(err))
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, h.sessionCookie("", -1))

	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok && h.Workspaces != nil {
		h.Workspaces.Dispatch(userID, workspace.SignOut{})
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Logout successful")
}

func (h *Handlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
		return
	}

	user, err := h.Store.FindUserByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "Couldn't find user", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, http.StatusOK, user.me())
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handlers) UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
		return
	}

	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		http.Error(w, "Current and new password are required", http.StatusBadRequest)
		return
	}
	newPassword := strings.TrimSpace(req.NewPassword)
	if len([]rune(newPassword)) < MinPasswordLength {
		http.Error(w, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength), http.StatusBadRequest)
		return
	}

	user, err := h.Store.FindUserByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "Couldn't find user", http.StatusUnauthorized)
		return
	}

	// Make sure the current password matches before replacing it.
	err = bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(strings.TrimSpace(req.CurrentPassword)))
	if err != nil {
		http.Error(w, "Invalid current password", http.StatusUnauthorized)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), BcryptCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}

	if err := h.Store.UpdatePassword(r.Context(), userID, string(hashed)); err != nil {
		h.Log.Error("[password] update failed", zap.Error(err), zap.String("user_id", userID))
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Password updated")
}

// sessionCookie builds the session cookie. Hosted environments serve the
// frontend from another origin, which needs SameSite=None and Secure; local
// development over plain HTTP uses Lax.
func (h *Handlers) sessionCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if h.SecureCookies {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
