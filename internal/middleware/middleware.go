package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

// SessionCookie is the name of the cookie carrying the session ID.
const SessionCookie = "session_id"

type SessionFetcher interface {
	FindSessionByID(id string) (utils.SessionData, error)
}

func SessionMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
				return
			}

			session, err := fetcher.FindSessionByID(cookie.Value)
			if err != nil {
				http.Error(w, "Couldn't find session", http.StatusUnauthorized)
				return
			}

			if session.Expired(time.Now()) {
				http.Error(w, "Session expired", http.StatusUnauthorized)
				return
			}

			ctx := utils.WithUserID(r.Context(), session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var allowed = map[string]struct{}{
	"http://localhost:3000":       {},
	"http://localhost:5173":       {},
	"https://airlinkpros.com":     {},
	"https://www.airlinkpros.com": {},
	"https://app.airlinkpros.com": {},
	"https://dev.airlinkpros.com": {},
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Echo the origin back only if it's on the allow-list.
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods",
				"GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, Authorization")
		}

		w.Header().Set("Access-Control-Expose-Headers", "Server-Timing, Retry-After, Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RoleFetcher resolves a user's role, e.g. "CONTRACTOR".
type RoleFetcher interface {
	FindRoleByUserID(id string) (string, error)
}

// RoleMiddleware admits only users whose role is one of roles. It must run
// after SessionMiddleware.
func RoleMiddleware(fetcher RoleFetcher, roles ...string) func(http.Handler) http.Handler {
	want := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		want[strings.ToUpper(r)] = struct{}{}
	}
	forbidden := "Forbidden: " + strings.ToLower(strings.Join(roles, " or ")) + " access required"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
				return
			}

			role, err := fetcher.FindRoleByUserID(userID)
			if err != nil {
				http.Error(w, "Unauthorized: user not found", http.StatusUnauthorized)
				return
			}

			if _, ok := want[strings.ToUpper(role)]; !ok {
				http.Error(w, forbidden, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
