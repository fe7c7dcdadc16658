package web

import (
	"encoding/json"
	"net/http"
)

// ErrorJSON is the body of every non-2xx JSON response.
type ErrorJSON struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	data, _ := json.Marshal(ErrorJSON{Error: msg})
	writeJSON(w, code, data)
}
