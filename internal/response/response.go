// Package response provides the gateway's JSON envelope helpers to eliminate
// per-handler encoding boilerplate.
//
// Every reply carries the envelope: success responses serialize as
// {"success": true, ...fields}, failures as {"success": false, "error": msg}.
package response

import (
	"encoding/json"
	"net/http"
)

// Fields holds the endpoint-specific keys merged into the envelope next to
// "success".
type Fields map[string]any

// OK writes a 200 success envelope with the given fields.
func OK(w http.ResponseWriter, fields Fields) {
	JSON(w, http.StatusOK, fields)
}

// JSON writes a success envelope with the given status code.
func JSON(w http.ResponseWriter, status int, fields Fields) {
	body := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		body[key] = value
	}
	body["success"] = true

	write(w, status, body)
}

// Fail writes an error envelope with the given status code and message.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

// write marshals before touching the ResponseWriter; the status line cannot
// change once the body has started.
func write(w http.ResponseWriter, status int, body map[string]any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
