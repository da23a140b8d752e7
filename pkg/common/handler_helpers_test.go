package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		handled    bool
		wantStatus int
		wantCode   string
	}{
		{"nil", nil, false, http.StatusOK, ""},
		{"app error", NewNotFoundError("user not found", nil), true, http.StatusNotFound, "not_found"},
		{"transient", NewTransientError("store unavailable", errors.New("dial tcp")), true, http.StatusServiceUnavailable, "transient_failure"},
		{"plain error", errors.New("unexpected"), true, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handled := HandleServiceError(c, tt.err, "failed to assess risk")
			assert.Equal(t, tt.handled, handled)
			if !tt.handled {
				assert.Zero(t, w.Body.Len())
				return
			}

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.ErrorCode)
		})
	}
}

func TestHandleServiceError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleServiceError(c, errors.New("pq: password authentication failed"), "failed to assess risk")

	assert.NotContains(t, w.Body.String(), "password")
	assert.Equal(t, "failed to assess risk", decode(t, w).Error.Message)
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	r := gin.New()
	r.GET("/users/:id", func(c *gin.Context) {
		got, ok := ParseUUIDParam(c, "id", "user ID")
		if ok {
			SuccessResponse(c, got)
		}
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid user ID", decode(t, w).Error.Message)
}

func TestBindJSON(t *testing.T) {
	var body struct {
		UserID string `json:"user_id" binding:"required"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	assert.False(t, BindJSON(c, &body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReadinessProbe(t *testing.T) {
	r := gin.New()
	r.GET("/ready", ReadinessProbe("fraud-service", "1.0.0", map[string]func() error{
		"database": func() error { return nil },
		"redis":    func() error { return errors.New("connection refused") },
	}))
	r.GET("/healthz", HealthCheck("fraud-service", "1.0.0"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "not ready", health.Status)
	assert.Equal(t, "healthy", health.Checks["database"].Status)
	assert.Equal(t, "unhealthy", health.Checks["redis"].Status)
	assert.Equal(t, "connection refused", health.Checks["redis"].Message)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
