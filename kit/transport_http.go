package kit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// StatusFunc maps an endpoint error to an HTTP status code.
type StatusFunc func(error) int

// HTTPHandler serves an Endpoint over HTTP. decode failures answer 400;
// endpoint failures answer status(err), or 500 when status is nil. Successful
// responses are encoded as JSON with 200.
func HTTPHandler(endpoint Endpoint, decode func(*http.Request) (any, error), status StatusFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decode(r)
		if err != nil {
			code := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				code = http.StatusRequestEntityTooLarge
			}
			WriteError(w, code, err)
			return
		}
		ctx := WithTransport(r.Context(), "http")
		resp, err := endpoint(ctx, req)
		if err != nil {
			code := http.StatusInternalServerError
			if status != nil {
				code = status(err)
			}
			WriteError(w, code, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// DecodeJSON returns a decoder reading the body into a fresh T. Unknown
// fields are rejected.
func DecodeJSON[T any]() func(*http.Request) (any, error) {
	return func(r *http.Request) (any, error) {
		var v T
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("empty request body")
			}
			return nil, fmt.Errorf("decode body: %w", err)
		}
		return &v, nil
	}
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": err} with code.
func WriteError(w http.ResponseWriter, code int, err error) {
	WriteJSON(w, code, map[string]string{"error": err.Error()})
}
