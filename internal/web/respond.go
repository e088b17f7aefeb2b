package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jobtrack-app/jobtrack/internal/auth"
	"github.com/jobtrack-app/jobtrack/internal/errorz"
)

// maxBodyBytes caps request bodies, nothing in this API legitimately
// sends large payloads.
const maxBodyBytes = 1 << 20

type errJSON struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

type messageJSON struct {
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// The status line is already out, all we can do is log.
		s.deps.Logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) readJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errorz.InvalidInput{fmt.Errorf("malformed request body: %w", err)}
	}

	return nil
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errorz.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, errJSON{Error: "not found"})
		return
	}

	var invalidInput errorz.InvalidInput
	if errors.As(err, &invalidInput) {
		out := errJSON{Error: "invalid input"}
		for _, fieldErr := range invalidInput {
			out.Fields = append(out.Fields, fieldErr.Error())
		}
		s.writeJSON(w, http.StatusBadRequest, out)
		return
	}

	if errors.Is(err, auth.ErrWrongPassword) {
		s.writeJSON(w, http.StatusUnauthorized, errJSON{Error: "wrong password"})
		return
	}

	if errors.Is(err, auth.ErrInvalidToken) {
		s.unauthenticated(w)
		return
	}

	// Anything else is an internal failure, typically the store. Log
	// the details, keep the response generic.
	s.deps.Logger.Error("internal server error", "url", r.URL.String(), "error", err)
	s.writeJSON(w, http.StatusInternalServerError, errJSON{Error: "internal server error"})
}
