package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AirLinkPros/airlink-backend/internal/metrics"
	"github.com/AirLinkPros/airlink-backend/internal/middleware"
	"github.com/AirLinkPros/airlink-backend/internal/utils"
	"github.com/AirLinkPros/airlink-backend/internal/workspace"
)

type memStore struct {
	mu       sync.Mutex
	users    map[string]*User
	sessions map[string]Session
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*User{}, sessions: map[string]Session{}}
}

func (s *memStore) FindUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == NormalizeEmail(email) {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memStore) FindUserByID(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *memStore) InsertUser(ctx context.Context, email, name, hash, role string) (*User, error) {
	if _, err := s.FindUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &User{UserID: utils.GenerateUUID(), Email: NormalizeEmail(email), Name: strings.TrimSpace(name), HashedPassword: hash, Role: role}
	s.users[u.UserID] = u
	return u, nil
}

func (s *memStore) UpdatePassword(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.HashedPassword = hash
	return nil
}

func (s *memStore) CreateSession(_ context.Context, userID string, exp time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	id := utils.GenerateUUID()
	s.sessions[id] = Session{SessionID: id, UserID: userID, ExpiresAt: exp}
	return id, nil
}

func (s *memStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *memStore) FindSessionByID(id string) (utils.SessionData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return utils.SessionData{}, errors.New("record not found")
	}
	return utils.SessionData{UserID: sess.UserID, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *memStore) FindRoleByUserID(id string) (string, error) {
	u, err := s.FindUserByID(context.Background(), id)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

type testEnv struct {
	store   *memStore
	reg     *workspace.Registry
	metrics *metrics.Metrics
	handler http.Handler
}

func newTestEnv(t *testing.T, limiter *middleware.RateLimiter) *testEnv {
	t.Helper()
	BcryptCost = bcrypt.MinCost

	reg, err := workspace.NewRegistry(8, func() workspace.State { return workspace.NewState(nil, nil) })
	require.NoError(t, err)

	env := &testEnv{store: newMemStore(), reg: reg, metrics: metrics.New()}
	h := NewHandlers(Deps{
		Store:      env.store,
		Workspaces: reg,
		Limiter:    limiter,
		Metrics:    env.metrics,
	})
	env.handler = h.SetupRoutes()
	return env
}

func (e *testEnv) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func sessionFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", middleware.SessionCookie)
	return nil
}

func TestSignupHandler(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/signup", `{"email":"Ana@Example.com","password":"  hunter22  ","name":"Ana"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	u, err := env.store.FindUserByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, RoleHomeowner, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("hunter22")), "password is trimmed before hashing")

	rec = env.do(http.MethodPost, "/signup", `{"email":"ana@example.com","password":"hunter22","name":"Ana"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Email is already registered."}`, rec.Body.String())
}

func TestSignupHandler_ValidationErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/signup", `{"email":"ana@example.com","password":"short","name":"Ana"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Password must be at least 8 characters"}`, rec.Body.String())

	rec = env.do(http.MethodPost, "/signup", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Invalid request"}`, rec.Body.String())
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, "/signup", `{"email":"sam@brightspark.com","password":"panel-200A","name":"Sam R.","role":"contractor"}`).Code)

	rec := env.do(http.MethodPost, "/login", `{"email":"SAM@brightspark.com","password":"panel-200A"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "Sam R.", me.Name)
	assert.Equal(t, RoleContractor, me.Role)

	cookie := sessionFrom(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, int(SessionTTL.Seconds()), cookie.MaxAge)

	state := env.reg.For(me.UserID).GetState()
	assert.True(t, state.User.SignedIn)
	assert.Equal(t, "Sam R.", state.User.Name)
	assert.Equal(t, workspace.RoleContractor, state.User.Role)

	rec = env.do(http.MethodGet, "/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"sam@brightspark.com"`)

	rec = env.do(http.MethodPost, "/logout", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful\n", rec.Body.String())
	assert.False(t, env.reg.For(me.UserID).GetState().User.SignedIn)

	rec = env.do(http.MethodGet, "/me", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.LoginAttempts.WithLabelValues("ok")))
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, "/signup", `{"email":"ana@example.com","password":"hunter22","name":"Ana"}`).Code)

	for _, body := range []string{
		`{"email":"ana@example.com","password":"wrong-pass"}`,
		`{"email":"nobody@example.com","password":"hunter22"}`,
	} {
		rec := env.do(http.MethodPost, "/login", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid Credentials\n", rec.Body.String())
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.LoginAttempts.WithLabelValues("invalid")))
}

func TestLoginHandler_RateLimited(t *testing.T) {
	env := newTestEnv(t, middleware.NewRateLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		rec := env.do(http.MethodPost, "/login", `{"email":"x@example.com","password":"whatever1"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := env.do(http.MethodPost, "/login", `{"email":"x@example.com","password":"whatever1"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.LoginAttempts.WithLabelValues("limited")))
}

func TestUpdatePasswordHandler(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodPost, "/signup", `{"email":"ana@example.com","password":"hunter22","name":"Ana"}`)
	cookie := sessionFrom(t, env.do(http.MethodPost, "/login", `{"email":"ana@example.com","password":"hunter22"}`))

	rec := env.do(http.MethodPost, "/password", `{"current_password":"nope-nope","new_password":"better-pass"}`, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/password", `{"current_password":"hunter22","new_password":"short"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/password", `{"current_password":"hunter22","new_password":"better-pass"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/login", `{"email":"ana@example.com","password":"better-pass"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionRoutes_RequireCookie(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Couldn't find cookie\n", rec.Body.String())

	rec = env.do(http.MethodPost, "/logout", "", &http.Cookie{Name: middleware.SessionCookie, Value: "stale"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Couldn't find session\n", rec.Body.String())
}

func TestSessionCookie_Secure(t *testing.T) {
	h := NewHandlers(Deps{SecureCookies: true})
	c := h.sessionCookie("abc", 60)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)

	h = NewHandlers(Deps{})
	c = h.sessionCookie("", -1)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, -1, c.MaxAge)
}
