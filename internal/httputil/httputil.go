// Package httputil provides utility functions for HTTP servers.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ErrInvalidPosition is returned when a position is not a positive integer.
var ErrInvalidPosition = errors.New("invalid position")

// IndexFromPosition converts a 1-based position, as shown to users, into a 0-based index.
func IndexFromPosition(s string) (int, error) {
	pos, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: error parsing %q: %w", ErrInvalidPosition, s, err)
	}
	if pos < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}

	return pos - 1, nil
}

// ParseIndexFromPath parses the 1-based position in the named path value into a 0-based index.
// It returns the index and true if the parsing was successful.
// It logs the problem and returns false otherwise; the caller decides what to render.
func ParseIndexFromPath(r *http.Request, logger *slog.Logger, name string) (int, bool) {
	index, err := IndexFromPosition(r.PathValue(name))
	if err != nil {
		logger.InfoContext(r.Context(), "error parsing "+name, slog.Any("err", err))

		return 0, false
	}

	return index, true
}

// EncodeJSON encodes v to JSON, sets status, and writes it to w.
func EncodeJSON[T any](w http.ResponseWriter, statusCode int, v T) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}

	return nil
}

// DecodeJSON decodes JSON from r.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode json: %w", err)
	}

	return v, nil
}

// Error writes a JSON error body with the given status.
func Error(w http.ResponseWriter, statusCode int, msg string) {
	type errorResponse struct {
		Error string `json:"error"`
	}
	_ = EncodeJSON(w, statusCode, errorResponse{Error: msg})
}
