package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jonathan/job-tracker/internal/tracker"
	"github.com/jonathan/job-tracker/internal/types"
)

// addApplicationRequest is the POST /applications body. DateApplied is YYYY-MM-DD.
type addApplicationRequest struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Status      string `json:"status,omitempty"`
	DateApplied string `json:"date_applied,omitempty"`
	Location    string `json:"location,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func (req addApplicationRequest) draft() (types.Draft, error) {
	d := types.Draft{
		Company:  req.Company,
		Position: req.Position,
		Status:   types.ApplicationStatus(req.Status),
		Location: req.Location,
		Notes:    req.Notes,
	}
	if date := strings.TrimSpace(req.DateApplied); date != "" {
		t, err := time.Parse(tracker.DateLayout, date)
		if err != nil {
			return types.Draft{}, &ErrValidation{Field: "date_applied", Message: "must be YYYY-MM-DD"}
		}
		d.DateApplied = &t
	}
	return d, nil
}

type applicationsResponse struct {
	Applications []types.Application `json:"applications"`
	Count        int                 `json:"count"`
	Loading      bool                `json:"loading"`
}

// ownerID resolves the caller's identity. On failure it has already written
// the response.
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.session.Resolving(r.Context()) {
		s.errorResponse(w, http.StatusServiceUnavailable, "identity is still being resolved")
		return "", false
	}
	identity, ok := s.session.Current(r.Context())
	if !ok {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return identity.OwnerID, true
}

// manager resolves the caller's identity and returns its loaded Manager.
// On failure it has already written the response.
func (s *Server) manager(w http.ResponseWriter, r *http.Request) (*tracker.Manager, string, bool) {
	owner, ok := s.ownerID(w, r)
	if !ok {
		return nil, "", false
	}

	m, err := s.registry.Get(r.Context(), owner)
	if err != nil {
		s.failure(w, err)
		return nil, "", false
	}
	return m, owner, true
}

// handleListApplications returns the caller's applications, filtered by ?q=.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	m, _, ok := s.manager(w, r)
	if !ok {
		return
	}

	apps := m.Filter(r.URL.Query().Get("q"))
	if apps == nil {
		apps = []types.Application{}
	}
	s.jsonResponse(w, http.StatusOK, applicationsResponse{
		Applications: apps,
		Count:        len(apps),
		Loading:      m.IsLoading(),
	})
}

// handleStatistics returns per-status counts over the full list.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	m, _, ok := s.manager(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, m.Statistics())
}

// handleAddApplication records a new application.
func (s *Server) handleAddApplication(w http.ResponseWriter, r *http.Request) {
	var req addApplicationRequest
	if !decodeBody(w, r, s.log, &req) {
		return
	}
	draft, err := req.draft()
	if err != nil {
		s.failure(w, err)
		return
	}

	m, owner, ok := s.manager(w, r)
	if !ok {
		return
	}

	app, err := m.Add(r.Context(), owner, draft)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

// handleDeleteApplication removes an application by id.
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	m, _, ok := s.manager(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if err := m.Delete(r.Context(), id); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Application deleted successfully", "id": id})
}

// handleReload refetches the caller's list from the store.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	m, err := s.registry.Reload(r.Context(), owner)
	if err != nil {
		s.failure(w, err)
		return
	}

	apps := m.List()
	s.jsonResponse(w, http.StatusOK, applicationsResponse{
		Applications: apps,
		Count:        len(apps),
		Loading:      m.IsLoading(),
	})
}

// handleLogout drops the caller's cached list. Tokens are stateless, so the
// client discards its own token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	s.registry.Forget(owner)
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// handleUpdatePassword handles password update requests.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	s.authHandler.UpdatePassword(w, r)
}

// handleGetProfile returns the caller's profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	profile, err := s.profiles.Get(r.Context(), userID)
	if err != nil {
		s.failure(w, err)
		return
	}
	if profile == nil {
		s.errorResponse(w, http.StatusNotFound, "profile not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleUpdateProfile replaces the caller's editable profile fields.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if !decodeBody(w, r, s.log, &req) {
		return
	}

	profile, err := s.profiles.Update(r.Context(), userID, req)
	if err != nil {
		s.failure(w, err)
		return
	}
	if profile == nil {
		s.errorResponse(w, http.StatusNotFound, "profile not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

func (s *Server) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	identity, ok := s.session.Current(r.Context())
	if !ok {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(identity.OwnerID)
	if err != nil {
		s.failure(w, errors.New("session identity is not a user id"))
		return uuid.Nil, false
	}
	return id, true
}
