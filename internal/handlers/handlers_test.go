package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/internal/auth"
	"taskboard/internal/handlers"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	"taskboard/internal/repository/inmemory"
	"taskboard/internal/service"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// newTestServer wires the real services over the in-memory store behind
// the same route tree the app serves, with real token auth.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := inmemory.NewStore()
	hasher := auth.NewPasswordHasher()
	tokens := auth.NewTokenManager("test-secret", "taskboard-test")

	resolver := service.NewAccessResolver(store, store)
	taskService := service.NewTaskService(store, resolver)
	invitationService := service.NewInvitationService(store, store, resolver)
	authService := service.NewAuthService(store, hasher, tokens, time.Hour, 24*time.Hour)

	taskHandler := handlers.NewTaskHandler(taskService, invitationService)
	authHandler := handlers.NewAuthHandler(authService)

	r := chi.NewRouter()
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens))
			r.Post("/verify", authHandler.Verify)
			r.Put("/profile", authHandler.UpdateProfile)
		})
	})
	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(middleware.Authenticate(tokens))
		r.Get("/", taskHandler.List)
		r.Post("/", taskHandler.Create)
		r.Get("/share-invitations/pending", taskHandler.ListPendingInvitations)
		r.Patch("/share-invitations/{invitationId}", taskHandler.RespondInvitation)
		r.Put("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
		r.Patch("/{id}/pin", taskHandler.TogglePin)
		r.Patch("/{id}/complete", taskHandler.ToggleComplete)
		r.Patch("/{id}/position", taskHandler.Move)
		r.Post("/{id}/share", taskHandler.Share)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &payload))
	} else if len(raw) > 0 {
		payload["_list"] = decodeList(t, raw)
	}
	return resp, payload
}

func decodeList(t *testing.T, raw []byte) []map[string]any {
	t.Helper()
	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	return list
}

func registerAndLogin(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username,
		"password": "Abcdef1!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": username,
		"password": "Abcdef1!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	token := registerAndLogin(t, srv, "alice@example.com")

	resp, body := doJSON(t, srv, http.MethodPost, "/api/auth/verify", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["userId"])

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/verify", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/verify", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "bob@example.com",
		"password": "weak",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTaskEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice@example.com")

	resp, body := doJSON(t, srv, http.MethodPost, "/api/tasks/", token, map[string]any{
		"title": "first task",
		"color": "#ff0000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 1, body["position"])
	taskID := int64(body["id"].(float64))

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/tasks/", token, map[string]any{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/tasks/%d", taskID), token, map[string]any{
		"description": "some details",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "first task", body["title"])
	assert.Equal(t, "some details", body["description"])

	resp, body = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/pin", taskID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_pinned"])

	resp, body = doJSON(t, srv, http.MethodGet, "/api/tasks/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := body["_list"].([]map[string]any)
	require.Len(t, list, 1)
	assert.Equal(t, "owner", list[0]["access_level"])

	resp, _ = doJSON(t, srv, http.MethodPut, "/api/tasks/999", token, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPut, "/api/tasks/abc", token, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", taskID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMoveEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice@example.com")

	ids := make([]int64, 0, 3)
	for _, title := range []string{"t1", "t2", "t3"} {
		resp, body := doJSON(t, srv, http.MethodPost, "/api/tasks/", token, map[string]any{"title": title})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		ids = append(ids, int64(body["id"].(float64)))
	}

	resp, _ := doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/position", ids[0]), token, map[string]any{
		"newPosition": 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, srv, http.MethodGet, "/api/tasks/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := body["_list"].([]map[string]any)
	require.Len(t, list, 3)
	assert.Equal(t, "t2", list[0]["title"])
	assert.Equal(t, "t3", list[1]["title"])
	assert.Equal(t, "t1", list[2]["title"])
}

func TestShareFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := registerAndLogin(t, srv, "alice@example.com")
	bobToken := registerAndLogin(t, srv, "bob@example.com")

	resp, body := doJSON(t, srv, http.MethodPost, "/api/tasks/", aliceToken, map[string]any{"title": "shared task"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	taskID := int64(body["id"].(float64))

	resp, body = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tasks/%d/share", taskID), aliceToken, map[string]any{
		"shareWithUsername": "bob@example.com",
		"permissionLevel":   "edit",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", body["status"])
	invitationID := int64(body["id"].(float64))

	resp, body = doJSON(t, srv, http.MethodGet, "/api/tasks/share-invitations/pending", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pending := body["_list"].([]map[string]any)
	require.Len(t, pending, 1)
	assert.Equal(t, "shared task", pending[0]["task_title"])
	assert.Equal(t, "alice@example.com", pending[0]["from_username"])

	resp, body = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/tasks/share-invitations/%d", invitationID), bobToken, map[string]any{
		"accept": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "accepted", body["status"])

	// The invitation is resolved; answering again reads as gone.
	resp, _ = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/tasks/share-invitations/%d", invitationID), bobToken, map[string]any{
		"accept": true,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, srv, http.MethodGet, "/api/tasks/", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := body["_list"].([]map[string]any)
	require.Len(t, list, 1)
	assert.Equal(t, "edit", list[0]["access_level"])
	assert.Equal(t, "alice@example.com", list[0]["owner_name"])

	// Editors may complete but never delete or pin.
	resp, _ = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/complete", taskID), bobToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", taskID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/pin", taskID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
