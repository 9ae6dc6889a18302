// internal/api/handlers_test.go
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simforge/studio3d/internal/di"
	"github.com/simforge/studio3d/internal/models"
	"github.com/simforge/studio3d/internal/parser"
	"github.com/simforge/studio3d/internal/scene"
	"github.com/simforge/studio3d/internal/services"
	"github.com/simforge/studio3d/internal/storage"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Message string          `json:"message"`
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fs, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	scenes := services.NewSceneService(fs, time.Second)
	hub := NewHub()
	scenes.SetOnChange(hub.BroadcastState)
	prompts := services.NewPromptService(
		parser.NewParser(parser.NewResolver(), parser.StandardDefaults()),
		scenes,
		scene.NewHistoryLog(10),
	)

	container := di.GetContainer()
	container.Clear()
	container.Register("scene", scenes)
	container.Register("prompt", prompts)
	container.Register("hub", hub)

	return SetupRouter(NewHandler())
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealthEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doJSON(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestGetScene(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doJSON(t, router, http.MethodGet, "/api/scene", "")
	require.Equal(t, http.StatusOK, w.Code)

	var state models.SceneState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Len(t, state.Objects, 2)
	assert.True(t, state.HasObject("conveyor_1"))
}

func TestExecutePromptEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/prompt", `{"prompt":"add a blue box"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var data struct {
		Result models.ActionResponse `json:"result"`
		Scene  models.SceneState     `json:"scene"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Result.Success)
	assert.Len(t, data.Scene.Objects, 3)
}

func TestExecutePromptNotUnderstoodIsStill200(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/prompt", `{"prompt":"utter nonsense"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Result models.ActionResponse `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.Result.Success)
	assert.Equal(t, parser.FailureHint, data.Result.Message)
}

func TestExecutePromptEmptyIs400(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/prompt", `{"prompt":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrorBadRequest, env.Error.Code)
}

func TestParsePromptDoesNotMutate(t *testing.T) {
	router := setupTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/prompt/parse", `{"prompt":"add a box"}`)
	require.Equal(t, http.StatusOK, w.Code)

	_, env := doJSON(t, router, http.MethodGet, "/api/scene", "")
	var state models.SceneState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Len(t, state.Objects, 2)
}

func TestApplyActionsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	body := `{"actions":[{"action":"rotate_object","target":"robot_arm_1","params":{"axis":"y","degrees":45}}]}`
	w, env := doJSON(t, router, http.MethodPost, "/api/scene/actions", body)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Scene   models.SceneState `json:"scene"`
		Applied int               `json:"applied"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Applied)
	assert.Equal(t, float64(45), data.Scene.FindObject("robot_arm_1").Rotation.Y)
}

func TestApplyActionsEmptyBatchIs400(t *testing.T) {
	router := setupTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/scene/actions", `{"actions":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetSceneEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/scene/reset", `{"keep_defaults":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	var state models.SceneState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Empty(t, state.Objects)
}

func TestHistoryEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/prompt", `{"prompt":"add a box"}`)

	_, env := doJSON(t, router, http.MethodGet, "/api/history", "")
	var entries []models.PromptHistoryEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "add a box", entries[0].Prompt)

	doJSON(t, router, http.MethodPost, "/api/history/clear", "")

	_, env = doJSON(t, router, http.MethodGet, "/api/history", "")
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Empty(t, entries)
}

func TestSceneSnapshotEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/scenes/floor-1", "")
	assert.Equal(t, http.StatusCreated, w.Code)

	_, env := doJSON(t, router, http.MethodGet, "/api/scenes", "")
	var data struct {
		Scenes []string `json:"scenes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, []string{"floor-1"}, data.Scenes)

	w, _ = doJSON(t, router, http.MethodPost, "/api/scenes/floor-1/load", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodDelete, "/api/scenes/floor-1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, router, http.MethodPost, "/api/scenes/floor-1/load", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrorSceneNotFound, env.Error.Code)
}

func TestStatsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doJSON(t, router, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Contains(t, stats, "counters")
	assert.Contains(t, stats, "websocket_clients")
}

func TestRequestIDHeader(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "test-id-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "test-id-123", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), "test-id-123")
}
