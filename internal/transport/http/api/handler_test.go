package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/chatbot/internal/config"
	"github.com/xiaot623/chatbot/internal/domain"
	"github.com/xiaot623/chatbot/internal/service"
	"github.com/xiaot623/chatbot/internal/store"
	"github.com/xiaot623/chatbot/tests/helpers"
)

func newTestHandler(t *testing.T) (*Handler, *store.SQLiteStore) {
	t.Helper()
	db := helpers.NewTestSQLiteStore(t)
	svc := service.New(db, helpers.NewTestValidator(t), &config.Config{DatabaseNameSet: true})
	return NewHandler(svc), db
}

func TestRoot(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Root(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"AI Chatbot Backend is running"}`, rec.Body.String())
}

func TestDiagnostics(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Diagnostics(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Diagnostics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "✅ Running", resp.Backend)
	assert.Equal(t, "✅ Connected & Working", resp.Database)
	assert.Equal(t, "❌ Not Set", resp.DatabaseURL)
	assert.Equal(t, "✅ Set", resp.DatabaseName)
	assert.Equal(t, "Connected", resp.ConnectionStatus)
	assert.Contains(t, resp.Collections, "chatsession")
}

func TestRoutesRegistered(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/chat/sessions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/chat/abc/messages", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
