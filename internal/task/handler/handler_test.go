package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/task/usecase"
	"github.com/fekuna/omnipos-warehouse/internal/testutil"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	boards := testutil.NewMemBoards()
	require.NoError(t, boards.Create(context.Background(), &model.Board{
		ID: "b1", Name: "Floor", CreatorID: "owner", MemberIDs: []string{"owner", "alice"},
	}))
	uc := usecase.NewTaskUseCase(testutil.NewMemTasks(), boards, logger.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), &auth.Actor{UserID: uid}))
		}
		c.Next()
	})
	NewTaskHandler(uc, logger.NewNop()).Register(r.Group("/api"))
	return r
}

func do(r *gin.Engine, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) model.Task {
	t.Helper()
	var env struct {
		Data model.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data
}

func TestTaskEndpoints(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/tasks", "alice", map[string]interface{}{
		"board_id": "b1", "title": "Count pallets", "due_date": "2026-11-01", "assigned_to": []string{"owner"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeTask(t, w)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, 2026, created.DueDate.Year())
	assert.Equal(t, []string{"owner"}, created.AssignedTo)

	w = do(r, http.MethodPost, "/api/tasks", "alice", map[string]interface{}{"board_id": "b1", "title": "Count pallets"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/tasks", "alice", map[string]interface{}{"board_id": "b1", "title": "Bad", "due_date": "soon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/tasks/"+created.ID, "mallory", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPut, "/api/tasks/"+created.ID+"/assign", "owner", map[string]interface{}{"user_ids": []string{"mallory"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPut, "/api/tasks/"+created.ID+"/assign", "owner", map[string]interface{}{"user_ids": []string{}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeTask(t, w).Unassigned)

	w = do(r, http.MethodPost, "/api/tasks/"+created.ID+"/toggle", "owner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeTask(t, w).Completed)

	w = do(r, http.MethodPut, "/api/tasks/"+created.ID, "alice", map[string]interface{}{"title": "Count all pallets"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Count all pallets", decodeTask(t, w).Title)

	w = do(r, http.MethodGet, "/api/tasks", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/tasks?board_id=b1", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []model.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)

	w = do(r, http.MethodDelete, "/api/tasks/"+created.ID, "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodGet, "/api/tasks/"+created.ID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
