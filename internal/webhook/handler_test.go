package webhook

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *recordingSender) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, sender, _ := newTestService(t)
	router := gin.New()
	NewHandler(svc).Register(router)
	return router, sender
}

func TestWebhookEndpoint(t *testing.T) {
	router, sender := newTestRouter(t)

	body := `{
		"event_name": "user_send_text",
		"sender": {"id": "user-1"},
		"message": {"msg_id": "m1", "text": "Đặt hàng"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/zalo-order/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"processed"}`, w.Body.String())
	assert.Equal(t, 1, sender.count())
}

func TestWebhookEndpointMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/zalo-order/webhook", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookEndpointUnsupportedEvent(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"event_name": "user_send_image", "sender": {"id": "user-1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/zalo-order/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ignored"}`, w.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/zalo-order/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
