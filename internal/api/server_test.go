package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"encoding/json/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwinston/pushpickup/internal/auth"
	"github.com/dwinston/pushpickup/internal/domain"
	"github.com/dwinston/pushpickup/internal/mail"
	"github.com/dwinston/pushpickup/internal/notify"
	"github.com/dwinston/pushpickup/internal/search"
	"github.com/dwinston/pushpickup/internal/service"
	"github.com/dwinston/pushpickup/internal/sse"
	"github.com/dwinston/pushpickup/internal/store"
)

type nullMailer struct{}

func (nullMailer) Send(context.Context, mail.Message) error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	manager := sse.NewManager(logger)
	managerCtx, cancelManager := context.WithCancel(context.Background())
	go manager.Start(managerCtx)
	t.Cleanup(func() {
		cancelManager()
		_ = manager.Shutdown(context.Background())
	})

	st, err := store.New(filepath.Join(dir, "store"), logger, manager)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.EnsureDefaultOptions(context.Background()))

	index, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(dir, "index"),
		Logger:   logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	st.SetSearchIndexer(index)

	tokens, err := auth.NewTokenService(strings.Repeat("cd", 32), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	dispatcher := notify.NewDispatcher(st, nullMailer{}, logger, notify.Options{
		From:           "Push Pickup <support@pushpickup.com>",
		SupportAddress: "support@pushpickup.com",
		BaseURL:        "https://www.pushpickup.com",
		Workers:        1,
		QueueSize:      32,
	})

	sessions := service.NewSessionService(st, tokens, logger)
	games := service.NewGameService(st, dispatcher, logger)
	comments := service.NewCommentService(st, games, dispatcher, logger)
	t.Cleanup(comments.Stop)

	server := NewServer(st, tokens, Services{
		Auth:     service.NewAuthService(st, sessions, nullMailer{}, "https://www.pushpickup.com", "Push Pickup <support@pushpickup.com>", logger),
		Games:    games,
		Roster:   service.NewRosterService(st, games, dispatcher, logger),
		Comments: comments,
		Options:  service.NewOptionsService(st, logger),
		Feedback: service.NewFeedbackService(st, dispatcher, logger),
		Search:   service.NewSearchService(index, st, logger),
	}, sse.NewHandler(manager, logger), logger)
	t.Cleanup(server.Close)

	return server
}

func doJSON(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Data    T      `json:"data"`
		Error   string `json:"error"`
		Success bool   `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

// registerUser creates an account through the API and returns its access token and user ID.
func registerUser(t *testing.T, server *Server, name, email string) (string, string) {
	t.Helper()

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "correct horse battery",
		"name":     name,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeData[service.AuthResponse](t, w)
	return resp.AccessToken, resp.User.ID
}

func gameBody() map[string]any {
	return map[string]any{
		"type":      "soccer",
		"starts_at": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"utc_offset": -7,
		"location": map[string]any{
			"name":      "Golden Gate Park",
			"longitude": -122.48,
			"latitude":  37.77,
		},
		"note":              "Bring both colors",
		"requested_players": 10,
	}
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRegisterAndGetCurrentUser(t *testing.T) {
	server := newTestServer(t)

	token, userID := registerUser(t, server, "Kim", "kim@example.com")

	w := doJSON(t, server, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	user := decodeData[domain.User](t, w)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "Kim", user.DisplayName)
}

func TestGetCurrentUser_NoToken(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGameLifecycle(t *testing.T) {
	server := newTestServer(t)
	token, _ := registerUser(t, server, "Sam", "sam@example.com")

	// Create.
	w := doJSON(t, server, http.MethodPost, "/api/v1/games", token, gameBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	game := decodeData[domain.Game](t, w)
	assert.Equal(t, domain.GameProposed, game.Status)

	// Anyone may read it.
	w = doJSON(t, server, http.MethodGet, "/api/v1/games/"+game.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Edit.
	body := gameBody()
	body["note"] = "Moved to the north field"
	w = doJSON(t, server, http.MethodPut, "/api/v1/games/"+game.ID, token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	edited := decodeData[domain.Game](t, w)
	assert.Equal(t, "Moved to the north field", edited.Note)

	// Cancel.
	w = doJSON(t, server, http.MethodDelete, "/api/v1/games/"+game.ID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/games/"+game.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateGame_RequiresAuth(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/games", "", gameBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEditGame_NonOrganizerForbidden(t *testing.T) {
	server := newTestServer(t)
	organizer, _ := registerUser(t, server, "Sam", "sam@example.com")
	other, _ := registerUser(t, server, "Kim", "kim@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/games", organizer, gameBody())
	require.Equal(t, http.StatusCreated, w.Code)
	game := decodeData[domain.Game](t, w)

	w = doJSON(t, server, http.MethodPut, "/api/v1/games/"+game.ID, other, gameBody())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateGame_OversizedNote(t *testing.T) {
	server := newTestServer(t)
	token, _ := registerUser(t, server, "Sam", "sam@example.com")

	body := gameBody()
	body["note"] = strings.Repeat("x", 300)

	w := doJSON(t, server, http.MethodPost, "/api/v1/games", token, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRosterFlow(t *testing.T) {
	server := newTestServer(t)
	organizer, _ := registerUser(t, server, "Sam", "sam@example.com")
	player, _ := registerUser(t, server, "Kim", "kim@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/games", organizer, gameBody())
	require.Equal(t, http.StatusCreated, w.Code)
	game := decodeData[domain.Game](t, w)

	// Join.
	w = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.ID+"/players", player, map[string]string{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeData[map[string]bool](t, w)["joined"])

	// Second join reports false.
	w = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.ID+"/players", player, map[string]string{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeData[map[string]bool](t, w)["joined"])

	// Bring friends.
	w = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.ID+"/players/friends", player,
		map[string]any{"names": []string{"Pat", "Lee"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	withFriends := decodeData[domain.Game](t, w)
	assert.Len(t, withFriends.Players, 3)

	// Leave takes the friends along.
	w = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.ID+"/leave", player, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/games/"+game.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	final := decodeData[domain.Game](t, w)
	assert.Empty(t, final.Players)
}

func TestCommentFlow(t *testing.T) {
	server := newTestServer(t)
	organizer, _ := registerUser(t, server, "Sam", "sam@example.com")
	commenter, _ := registerUser(t, server, "Kim", "kim@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/games", organizer, gameBody())
	require.Equal(t, http.StatusCreated, w.Code)
	game := decodeData[domain.Game](t, w)

	w = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.ID+"/comments", commenter,
		map[string]string{"message": "Is there parking?"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decodeData[domain.Comment](t, w)
	assert.Equal(t, "Kim", comment.UserName)

	// The organizer may remove it.
	w = doJSON(t, server, http.MethodDelete, "/api/v1/games/"+game.ID+"/comments", organizer, comment)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeData[map[string]bool](t, w)["removed"])
}

func TestListGames_Paginated(t *testing.T) {
	server := newTestServer(t)
	token, _ := registerUser(t, server, "Sam", "sam@example.com")

	for i := range 3 {
		body := gameBody()
		body["starts_at"] = time.Now().Add(time.Duration(24+i) * time.Hour).Format(time.RFC3339)
		w := doJSON(t, server, http.MethodPost, "/api/v1/games", token, body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, server, http.MethodGet, "/api/v1/games/?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	result := decodeData[store.PaginatedResult[*domain.Game]](t, w)
	assert.Len(t, result.Items, 2)
	assert.True(t, result.HasMore)

	w = doJSON(t, server, http.MethodGet, "/api/v1/games/?limit=2&cursor="+result.NextCursor, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rest := decodeData[store.PaginatedResult[*domain.Game]](t, w)
	assert.Len(t, rest.Items, 1)
	assert.False(t, rest.HasMore)
}

func TestSearchGames(t *testing.T) {
	server := newTestServer(t)
	token, _ := registerUser(t, server, "Sam", "sam@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/games", token, gameBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/games/search?q=golden+gate", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeData[search.SearchResult](t, w)
	assert.EqualValues(t, 1, result.Total)
}

func TestNearbyGames(t *testing.T) {
	server := newTestServer(t)
	token, _ := registerUser(t, server, "Sam", "sam@example.com")

	w := doJSON(t, server, http.MethodPost, "/api/v1/games", token, gameBody())
	require.Equal(t, http.StatusCreated, w.Code)

	// Mission Dolores is about 4km from Golden Gate Park's east end.
	w = doJSON(t, server, http.MethodGet, "/api/v1/games/nearby?lng=-122.4262&lat=37.7597&radius_km=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeData[search.SearchResult](t, w)
	assert.EqualValues(t, 1, result.Total)

	w = doJSON(t, server, http.MethodGet, "/api/v1/games/nearby", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptions(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/options/type", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	option := decodeData[domain.GameOption](t, w)
	assert.Equal(t, domain.DefaultGameTypes, option.Values)
}

func TestUpdateOption_NonAdminForbidden(t *testing.T) {
	server := newTestServer(t)
	token, _ := registerUser(t, server, "Kim", "kim@example.com")

	w := doJSON(t, server, http.MethodPut, "/api/v1/options/type", token,
		map[string]any{"values": []string{"soccer"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFeedback(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/feedback", "",
		map[string]string{"type": "bug", "message": "The map is blank."})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestVerifyEmailEndpoint(t *testing.T) {
	server := newTestServer(t)
	_, userID := registerUser(t, server, "Kim", "kim@example.com")

	stored, err := server.store.GetUser(context.Background(), userID)
	require.NoError(t, err)

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/verify-email", "",
		map[string]string{"token": stored.VerificationToken})
	require.Equal(t, http.StatusOK, w.Code)

	verified := decodeData[domain.User](t, w)
	assert.True(t, verified.Emails[0].Verified)
}

func TestAuthRateLimit(t *testing.T) {
	server := newTestServer(t)

	// Burn through the burst from one address.
	var last int
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(fmt.Sprintf(`{"email":"probe%d@example.com","password":"wrong password"}`, i)))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.9:1234"
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestAdminEndpoints(t *testing.T) {
	server := newTestServer(t)
	_, userID := registerUser(t, server, "Admin", "admin@example.com")

	// Promote, then log in again so the token carries the admin claim.
	ctx := context.Background()
	user, err := server.store.GetUser(ctx, userID)
	require.NoError(t, err)
	user.IsAdmin = true
	require.NoError(t, server.store.UpdateUser(ctx, user))

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, w.Code)
	adminToken := decodeData[service.AuthResponse](t, w).AccessToken

	w = doJSON(t, server, http.MethodPut, "/api/v1/options/type", adminToken,
		map[string]any{"values": []string{"soccer", "cricket"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, server, http.MethodPost, "/api/v1/admin/reindex", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "kim@example.com",
		"password": "correct horse battery",
		"name":     "Kim",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeData[service.AuthResponse](t, w)

	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/logout", resp.AccessToken,
		map[string]string{"session_id": resp.SessionID})
	require.Equal(t, http.StatusNoContent, w.Code)

	// The refresh token died with the session.
	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", "",
		map[string]string{"refresh_token": resp.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBadToken(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
