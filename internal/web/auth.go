package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

func (s *Server) public(pattern string, handler http.HandlerFunc) {
	s.mux.Handle(pattern, handler)
}

// bearer registers a handler that requires a verified bearer token.
// Requests without a token, with a malformed header or with a token
// that fails verification all get the same response, callers must not
// be able to probe why they were rejected.
func (s *Server) bearer(pattern string, handler http.HandlerFunc) {
	s.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			s.unauthenticated(w)
			return
		}

		claims, err := s.deps.Tokens.Verify(raw)
		if err != nil {
			s.unauthenticated(w)
			return
		}

		ctx := ContextWithUserID(r.Context(), claims.UserID)
		handler.ServeHTTP(w, r.WithContext(ctx))
	}))
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}

	return token, true
}

func (s *Server) unauthenticated(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusUnauthorized, errJSON{Error: "unauthenticated"})
}

type ctxKey string

const userIDKey ctxKey = "jobtrackUserID"

func ContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}

	return userID, true
}
