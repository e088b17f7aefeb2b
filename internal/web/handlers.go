package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jobtrack-app/jobtrack/internal/auth"
	"github.com/jobtrack-app/jobtrack/internal/email"
	"github.com/jobtrack-app/jobtrack/internal/errorz"
	"github.com/jobtrack-app/jobtrack/internal/jobs"
)

// jobJSON is the wire representation of a job.
type jobJSON struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	Company        string    `json:"company"`
	Position       string    `json:"position"`
	Detail         string    `json:"detail,omitempty"`
	ApplyVia       string    `json:"applyVia,omitempty"`
	Type           string    `json:"type,omitempty"`
	City           string    `json:"city,omitempty"`
	Description    string    `json:"description,omitempty"`
	Qualifications []string  `json:"qualifications"`
	Status         string    `json:"status"`
	AppliedAt      time.Time `json:"appliedAt"`
}

func toJobJSON(j jobs.Job) jobJSON {
	return jobJSON{
		ID:             j.ID,
		UserID:         j.UserID,
		Company:        j.Company,
		Position:       j.Position,
		Detail:         j.Detail,
		ApplyVia:       j.ApplyVia,
		Type:           j.Type,
		City:           j.City,
		Description:    j.Description,
		Qualifications: j.Qualifications,
		Status:         string(j.Status),
		AppliedAt:      j.AppliedAt,
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	var invalid errorz.InvalidInput

	addr, err := email.ParseAddress(req.Email)
	if err != nil {
		invalid = append(invalid, errorz.Keyed{Key: "email", Err: err})
	}

	pwd, err := auth.ParsePassword(req.Password)
	if err != nil {
		invalid = append(invalid, errorz.Keyed{Key: "password", Err: err})
	}

	if len(invalid) > 0 {
		s.handleError(w, r, invalid)
		return
	}

	result, err := s.deps.AuthService.Login(r.Context(), auth.Credentials{
		Email:    addr,
		Password: pwd,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		Token string `json:"token"`
		Name  string `json:"name"`
	}{
		Token: result.Token,
		Name:  result.Name,
	})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserIDFromContext(r.Context())
	if !ok {
		s.unauthenticated(w)
		return
	}

	var query struct {
		Status string `schema:"status"`
	}
	if err := s.decoder.Decode(&query, r.URL.Query()); err != nil {
		s.handleError(w, r, errorz.InvalidInput{err})
		return
	}

	found, err := s.deps.JobService.List(r.Context(), owner, jobs.ListFilter{
		Status: jobs.Status(query.Status),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	out := make([]jobJSON, 0, len(found))
	for _, j := range found {
		out = append(out, toJobJSON(j))
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserIDFromContext(r.Context())
	if !ok {
		s.unauthenticated(w)
		return
	}

	var req struct {
		Company  string `json:"company"`
		Position string `json:"position"`
		Detail   string `json:"detail"`
		ApplyVia string `json:"applyVia"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	job, err := s.deps.JobService.Create(r.Context(), owner, jobs.NewJob{
		Company:  req.Company,
		Position: req.Position,
		Detail:   req.Detail,
		ApplyVia: req.ApplyVia,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toJobJSON(job))
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserIDFromContext(r.Context())
	if !ok {
		s.unauthenticated(w)
		return
	}

	id, err := jobID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	job, err := s.deps.JobService.Get(r.Context(), owner, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toJobJSON(job))
}

func (s *Server) updateJobFields(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserIDFromContext(r.Context())
	if !ok {
		s.unauthenticated(w)
		return
	}

	id, err := jobID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req struct {
		Company        *string   `json:"company"`
		Position       *string   `json:"position"`
		Detail         *string   `json:"detail"`
		ApplyVia       *string   `json:"applyVia"`
		Type           *string   `json:"type"`
		City           *string   `json:"city"`
		Description    *string   `json:"description"`
		Qualifications *[]string `json:"qualifications"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	job, err := s.deps.JobService.UpdateFields(r.Context(), owner, id, jobs.FieldsPatch{
		Company:        req.Company,
		Position:       req.Position,
		Detail:         req.Detail,
		ApplyVia:       req.ApplyVia,
		Type:           req.Type,
		City:           req.City,
		Description:    req.Description,
		Qualifications: req.Qualifications,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toJobJSON(job))
}

func (s *Server) updateJobStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserIDFromContext(r.Context())
	if !ok {
		s.unauthenticated(w)
		return
	}

	id, err := jobID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	err = s.deps.JobService.UpdateStatus(r.Context(), owner, id, jobs.Status(req.Status))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, messageJSON{Message: "status updated"})
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserIDFromContext(r.Context())
	if !ok {
		s.unauthenticated(w)
		return
	}

	id, err := jobID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if err := s.deps.JobService.Delete(r.Context(), owner, id); err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, messageJSON{Message: "deleted"})
}

func (s *Server) jobStats(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserIDFromContext(r.Context())
	if !ok {
		s.unauthenticated(w)
		return
	}

	stats, err := s.deps.JobService.Stats(r.Context(), owner)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	type dayJSON struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	}
	type statusJSON struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
	}

	out := struct {
		PerDay    []dayJSON    `json:"perDay"`
		PerStatus []statusJSON `json:"perStatus"`
	}{
		PerDay:    make([]dayJSON, 0, len(stats.PerDay)),
		PerStatus: make([]statusJSON, 0, len(stats.PerStatus)),
	}

	for _, d := range stats.PerDay {
		out.PerDay = append(out.PerDay, dayJSON{Date: d.Date, Count: d.Count})
	}
	for _, c := range stats.PerStatus {
		out.PerStatus = append(out.PerStatus, statusJSON{Status: string(c.Status), Count: c.Count})
	}

	s.writeJSON(w, http.StatusOK, out)
}

// jobID parses the id path segment. An id that is not a valid uuid can
// never match a job, report it the same way as a missing one.
func jobID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errorz.ErrNotFound
	}

	return id, nil
}
