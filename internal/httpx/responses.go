package httpx

import (
	"encoding/json"
	"net/http"

	"bookcatalog/internal/logger"
)

// ErrorResponse is the error body of every JSON endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.For(r.Context()).WithError(err).Warn("encode response")
	}
}

func JSONSuccess(w http.ResponseWriter, r *http.Request, v any) {
	JSON(w, r, http.StatusOK, v)
}

func JSONCreated(w http.ResponseWriter, r *http.Request, v any) {
	JSON(w, r, http.StatusCreated, v)
}

// JSONError writes an {error, message} body. errName is a short title such as "Not found".
func JSONError(w http.ResponseWriter, r *http.Request, status int, errName, message string) {
	if errName == "" {
		errName = http.StatusText(status)
	}
	JSON(w, r, status, ErrorResponse{Error: errName, Message: message})
}
