package serviceutil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJson writes value as the json body of a response with the given status.
func WriteJson(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		slog.Warn("write json response", "err", err)
	}
}

// WriteError writes {"error": "<message>"}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJson(w, status, map[string]string{"error": message})
}
