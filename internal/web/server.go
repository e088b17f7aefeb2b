// Package web exposes the tracker as a JSON HTTP API.
package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/jobtrack-app/jobtrack/internal/auth"
	"github.com/jobtrack-app/jobtrack/internal/jobs"
)

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	JobService  *jobs.Service
	Tokens      *auth.TokenService
}

type Server struct {
	deps    *ServerDeps
	mux     *http.ServeMux
	decoder *schema.Decoder
}

func NewServer(deps *ServerDeps) *Server {
	s := &Server{
		deps:    deps,
		mux:     http.NewServeMux(),
		decoder: schema.NewDecoder(),
	}

	// The frontend sends query parameters we don't care about (cache
	// busters and the like), don't fail on them.
	s.decoder.IgnoreUnknownKeys(true)

	s.public("POST /login", s.login)

	// Every /jobs endpoint requires a bearer token and only ever
	// operates on the caller's own jobs.
	s.bearer("GET /jobs", s.listJobs)
	s.bearer("POST /jobs", s.createJob)
	s.bearer("GET /jobs/stats", s.jobStats)
	s.bearer("GET /jobs/{id}", s.getJob)
	s.bearer("PATCH /jobs/{id}", s.updateJobFields)
	s.bearer("PATCH /jobs/{id}/status", s.updateJobStatus)
	s.bearer("DELETE /jobs/{id}", s.deleteJob)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
