package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, "User created", Envelope{"user": map[string]any{"id": "u1"}})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	require.Equal(t, true, body["success"])
	require.Equal(t, "User created", body["message"])
	require.NotNil(t, body["user"])
}

func TestJSONOmitsEmptyMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, "", Envelope{"count": 2})

	body := decode(t, rec)
	require.NotContains(t, body, "message")
	require.Equal(t, float64(2), body["count"])
}

func TestErrorDetailInDevelopment(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	Error(rec, req, http.StatusInternalServerError, "Server error", errors.New("boom"), "development")

	body := decode(t, rec)
	require.Equal(t, false, body["success"])
	require.Equal(t, "boom", body["error"])
}

func TestErrorDetailHiddenInProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	Error(rec, req, http.StatusInternalServerError, "Server error", errors.New("boom"), "production")

	body := decode(t, rec)
	require.NotContains(t, body, "error")
	require.Equal(t, "Server error", body["message"])
}
