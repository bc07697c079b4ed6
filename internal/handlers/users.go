package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskd/internal/service"
)

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	summary, err := a.users.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, summary)
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	summaries, err := a.users.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (a *API) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)

	profile, err := a.users.GetProfile(r.Context(), p.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)

	var req service.UpdateProfileInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	summary, err := a.users.UpdateProfile(r.Context(), p.ID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (a *API) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)

	var req struct {
		Preferences json.RawMessage `json:"preferences"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	profile, err := a.users.UpdatePreferences(r.Context(), p.ID, req.Preferences)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":          profile.ID,
		"preferences": profile.Preferences,
	})
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid user id is required"))
		return
	}

	summary, err := a.users.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid user id is required"))
		return
	}

	if err := a.users.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
