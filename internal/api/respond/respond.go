package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Envelope is the uniform response body: {success, message?, error?, ...payload}.
type Envelope map[string]any

// JSON writes a success envelope. Extra payload fields are merged in; the
// "success" key is always set.
func JSON(w http.ResponseWriter, status int, message string, payload Envelope) {
	body := Envelope{"success": true}
	if message != "" {
		body["message"] = message
	}
	for key, value := range payload {
		body[key] = value
	}
	write(w, status, body)
}

// Error writes a failure envelope and logs it with the request-scoped logger.
// The underlying error detail is only exposed outside production.
func Error(w http.ResponseWriter, r *http.Request, status int, message string, err error, env string) {
	body := Envelope{
		"success": false,
		"message": message,
	}
	if err != nil && (env == "development" || env == "test") {
		body["error"] = err.Error()
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	write(w, status, body)
}

func write(w http.ResponseWriter, status int, body Envelope) {
	payload, err := json.Marshal(body)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
