package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"telehealth/internal/domain"
	"telehealth/internal/handler"
	"telehealth/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setAuthContext sets what AuthMiddleware would put on the context.
func setAuthContext(c *gin.Context, userID uuid.UUID, role domain.UserRole) {
	c.Set(middleware.ContextKeyUserID, userID)
	c.Set(middleware.ContextKeyRole, string(role))
}

func newContext(method, target string, body io.Reader) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == nil {
		body = http.NoBody
	}
	c.Request, _ = http.NewRequest(method, target, body)
	return c, w
}

func jsonContext(t *testing.T, method, target string, payload any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	c, w := newContext(method, target, bytes.NewReader(b))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
