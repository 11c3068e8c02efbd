package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-events/internal/cache"
	"github.com/weiawesome/wes-events/internal/config"
	"github.com/weiawesome/wes-events/internal/domain"
	"github.com/weiawesome/wes-events/internal/hub"
	"github.com/weiawesome/wes-events/internal/notifier"
	"github.com/weiawesome/wes-events/internal/repository"
	"github.com/weiawesome/wes-events/internal/service"
	"github.com/weiawesome/wes-events/pkg/database"
	"github.com/weiawesome/wes-events/pkg/jwt"
	"github.com/weiawesome/wes-events/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server *httptest.Server
	hub    *hub.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     filepath.Join(t.TempDir(), "handler.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db, domain.Models()...))

	tokens, err := jwt.NewManager("handler-secret", time.Hour, "test")
	require.NoError(t, err)

	wsCfg := config.WebSocketConfig{
		PingInterval:   time.Second,
		PongWait:       2 * time.Second,
		WriteWait:      time.Second,
		MaxMessageSize: 1024,
		SendBuffer:     8,
	}
	h := hub.NewHub(wsCfg)

	attendance := repository.NewGormAttendanceRepository(db)
	userSvc := service.NewUserService(repository.NewGormUserRepository(db), tokens, service.GuestAccount{
		Enabled:  true,
		Email:    "guest@example.com",
		Password: "guest",
		Name:     "Guest",
	})
	eventSvc := service.NewEventService(repository.NewGormEventRepository(db), attendance, cache.NewNoopEventCache(), time.Minute)
	joinSvc := service.NewJoinCoordinator(attendance, notifier.New(h))

	api := NewHandler(userSvc, eventSvc, joinSvc, middleware.NewAuthMiddleware(tokens, "token"), CookieConfig{MaxAge: time.Hour})
	ws := NewWSHandler(h, wsCfg, nil)

	srv := httptest.NewServer(NewRouter(api, ws, zerolog.Nop(), []string{"http://localhost:3000"}))
	t.Cleanup(func() {
		h.Stop()
		srv.Close()
	})

	return &testEnv{server: srv, hub: h}
}

func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *testEnv) do(t *testing.T, c *http.Client, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (e *testEnv) signUp(t *testing.T, name, email string) *http.Client {
	t.Helper()
	c := e.client(t)
	status, _ := e.do(t, c, http.MethodPost, "/api/v1/auth/register", gin.H{"name": name, "email": email, "password": "pw"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = e.do(t, c, http.MethodPost, "/api/v1/auth/login", gin.H{"email": email, "password": "pw"})
	require.Equal(t, http.StatusOK, status)
	return c
}

func (e *testEnv) createEvent(t *testing.T, c *http.Client, title string, restricted bool) domain.Event {
	t.Helper()
	status, env := e.do(t, c, http.MethodPost, "/api/v1/events", gin.H{
		"title":                 title,
		"date":                  time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"is_for_logged_in_only": restricted,
	})
	require.Equal(t, http.StatusCreated, status)
	var ev domain.Event
	require.NoError(t, json.Unmarshal(env.Data, &ev))
	return ev
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestJoinBroadcastsToAllConnections(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signUp(t, "Alice", "alice@example.com")
	bob := env.signUp(t, "Bob", "bob@example.com")
	ev := env.createEvent(t, alice, "Launch", false)

	conns := []*websocket.Conn{env.dial(t), env.dial(t), env.dial(t)}
	require.Eventually(t, func() bool { return env.hub.Count() == 3 }, 2*time.Second, 10*time.Millisecond)

	status, _ := env.do(t, alice, http.MethodPost, "/api/v1/events/join", gin.H{"event_id": ev.ID})
	require.Equal(t, http.StatusOK, status)
	for _, conn := range conns {
		msg := readJSON(t, conn)
		assert.Equal(t, "attendeeCountUpdate", msg["kind"])
		assert.Equal(t, ev.ID, msg["eventId"])
		assert.EqualValues(t, 1, msg["count"])
	}

	status, body := env.do(t, bob, http.MethodPost, "/api/v1/events/join", gin.H{"event_id": ev.ID})
	require.Equal(t, http.StatusOK, status)
	var result domain.JoinResult
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.EqualValues(t, 2, result.AttendeeCount)
	for _, conn := range conns {
		assert.EqualValues(t, 2, readJSON(t, conn)["count"])
	}

	status, body = env.do(t, alice, http.MethodPost, "/api/v1/events/join", gin.H{"event_id": ev.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_JOIN", body.Error.Code)

	status, body = env.do(t, alice, http.MethodGet, "/api/v1/events/"+ev.ID, nil)
	require.Equal(t, http.StatusOK, status)
	var detail domain.EventDetail
	require.NoError(t, json.Unmarshal(body.Data, &detail))
	assert.EqualValues(t, 2, detail.AttendeeCount)
	assert.True(t, detail.HasJoined)

	status, body = env.do(t, env.client(t), http.MethodGet, "/api/v1/events/"+ev.ID+"/attendees", nil)
	require.Equal(t, http.StatusOK, status)
	var attendees domain.AttendeesResponse
	require.NoError(t, json.Unmarshal(body.Data, &attendees))
	assert.Len(t, attendees.Attendees, 2)

	status, body = env.do(t, env.client(t), http.MethodGet, "/api/v1/events/attendees", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"counts":{"`+ev.ID+`":2}}`, string(body.Data))
}

func TestJoinRejections(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signUp(t, "Alice", "alice@example.com")
	ev := env.createEvent(t, alice, "Launch", false)

	status, body := env.do(t, env.client(t), http.MethodPost, "/api/v1/events/join", gin.H{"event_id": ev.ID})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)

	guest := env.client(t)
	status, body = env.do(t, guest, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "guest@example.com", "password": "guest"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body.Data), `"is_guest":true`)

	status, body = env.do(t, guest, http.MethodPost, "/api/v1/events/join", gin.H{"event_id": ev.ID})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "LOGIN_REQUIRED", body.Error.Code)

	status, _ = env.do(t, alice, http.MethodPost, "/api/v1/events/join", gin.H{"event_id": "missing"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, alice, http.MethodPost, "/api/v1/events/join", gin.H{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestEventVisibility(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signUp(t, "Alice", "alice@example.com")
	env.createEvent(t, alice, "Public", false)
	private := env.createEvent(t, alice, "Members", true)

	anon := env.client(t)
	status, body := env.do(t, anon, http.MethodGet, "/api/v1/events", nil)
	require.Equal(t, http.StatusOK, status)
	var list domain.ListEventsResponse
	require.NoError(t, json.Unmarshal(body.Data, &list))
	assert.Equal(t, 1, list.Total)

	status, body = env.do(t, alice, http.MethodGet, "/api/v1/events", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body.Data, &list))
	assert.Equal(t, 2, list.Total)

	status, body = env.do(t, anon, http.MethodGet, "/api/v1/events/"+private.ID, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "LOGIN_REQUIRED", body.Error.Code)

	status, _ = env.do(t, anon, http.MethodGet, "/api/v1/events/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	status, _ := env.do(t, c, http.MethodGet, "/api/v1/user", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, c, http.MethodPost, "/api/v1/auth/register", gin.H{"name": "Alice"})
	assert.Equal(t, http.StatusBadRequest, status)

	c = env.signUp(t, "Alice", "alice@example.com")

	status, body := env.do(t, env.client(t), http.MethodPost, "/api/v1/auth/register", gin.H{"name": "A", "email": "alice@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "EMAIL_EXISTS", body.Error.Code)

	status, _ = env.do(t, env.client(t), http.MethodPost, "/api/v1/auth/login", gin.H{"email": "alice@example.com", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = env.do(t, c, http.MethodGet, "/api/v1/user", nil)
	require.Equal(t, http.StatusOK, status)
	var me domain.Identity
	require.NoError(t, json.Unmarshal(body.Data, &me))
	assert.Equal(t, "Alice", me.Name)
	assert.NotEmpty(t, me.UserID)
	assert.False(t, me.IsGuest)

	status, _ = env.do(t, c, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, c, http.MethodGet, "/api/v1/user", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginSetsHTTPOnlyCookie(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "Alice", "alice@example.com")

	resp, err := http.Post(env.server.URL+"/api/v1/auth/login", "application/json",
		strings.NewReader(`{"email":"alice@example.com","password":"pw"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.NotEmpty(t, session.Value)
	assert.Equal(t, 3600, session.MaxAge)
}

func TestWebSocketPingPong(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	require.NoError(t, conn.WriteJSON(gin.H{"kind": "ping"}))
	assert.Equal(t, "pong", readJSON(t, conn)["kind"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, "error", readJSON(t, conn)["kind"])
}

func TestWebSocketDisconnectUnregisters(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	require.Eventually(t, func() bool { return env.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return env.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, env.client(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(r), "requests without Origin are allowed")

	r.Header.Set("Origin", "https://app.example")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(r))

	assert.True(t, originChecker([]string{"*"})(r))
}
