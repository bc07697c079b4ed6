package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskd/internal/service"
	"taskd/internal/store"
)

func (a *API) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)

	var req service.CreateTodoInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	todo, err := a.todos.Create(r.Context(), p.ID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	a.publishEvent(r.Context(), todoCreatedTopic, map[string]any{
		"todo_id": todo.ID,
		"user_id": todo.UserID,
		"title":   todo.Title,
	})

	respondJSON(w, http.StatusCreated, todo)
}

func (a *API) handleListTodos(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)

	query, err := parseTodoQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	page, err := a.todos.List(r.Context(), p.ID, query)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (a *API) handleTodoStats(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)

	stats, err := a.todos.Stats(r.Context(), p.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (a *API) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)

	id, err := todoID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	todo, err := a.todos.Get(r.Context(), p.ID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, todo)
}

func (a *API) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)

	id, err := todoID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req service.UpdateTodoInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	todo, err := a.todos.Update(r.Context(), p.ID, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if req.IsCompleted != nil && *req.IsCompleted {
		a.publishEvent(r.Context(), todoCompletedTopic, map[string]any{
			"todo_id": todo.ID,
			"user_id": todo.UserID,
		})
	}

	respondJSON(w, http.StatusOK, todo)
}

func (a *API) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)

	id, err := todoID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.todos.Delete(r.Context(), p.ID, id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// handleCreateAttachment issues presigned upload/download URLs for a file
// tied to one todo. 424 when no object store is configured.
func (a *API) handleCreateAttachment(w http.ResponseWriter, r *http.Request) {
	if a.s3 == nil || a.config.AttachmentBucket == "" {
		respondError(w, http.StatusFailedDependency, errors.New("object store not configured"))
		return
	}

	p, _ := principal(r)

	id, err := todoID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Filename string `json:"filename"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	req.Filename = strings.TrimSpace(req.Filename)
	if req.Filename == "" {
		respondError(w, http.StatusBadRequest, errors.New("filename is required"))
		return
	}

	// Ownership gate before handing out URLs.
	if _, err := a.todos.Get(r.Context(), p.ID, id); err != nil {
		respondServiceError(w, err)
		return
	}

	key := fmt.Sprintf("attachments/%s/%s", id, uuid.New())

	uploadURL, err := a.s3.PresignPut(r.Context(), a.config.AttachmentBucket, key, attachmentURLExpiry)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Errorf("presign put: %w", err))
		return
	}
	downloadURL, err := a.s3.PresignGet(r.Context(), a.config.AttachmentBucket, key, attachmentURLExpiry)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Errorf("presign get: %w", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"key":          key,
		"filename":     req.Filename,
		"upload_url":   uploadURL,
		"download_url": downloadURL,
	})
}

func todoID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		return uuid.Nil, errors.New("valid todo id is required")
	}
	return id, nil
}

func parseTodoQuery(r *http.Request) (store.TodoQuery, error) {
	q := store.TodoQuery{
		Priority:  strings.TrimSpace(r.URL.Query().Get("priority")),
		Search:    strings.TrimSpace(r.URL.Query().Get("search")),
		Tag:       strings.TrimSpace(r.URL.Query().Get("tag")),
		SortBy:    strings.TrimSpace(r.URL.Query().Get("sortBy")),
		SortOrder: strings.TrimSpace(r.URL.Query().Get("sortOrder")),
	}

	if raw := r.URL.Query().Get("isCompleted"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return store.TodoQuery{}, errors.New("isCompleted must be a boolean")
		}
		q.IsCompleted = &parsed
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return store.TodoQuery{}, errors.New("page must be a positive integer")
		}
		q.Page = parsed
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			return store.TodoQuery{}, errors.New("limit must be between 1 and 100")
		}
		q.Limit = parsed
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		return store.TodoQuery{}, errors.New("sortOrder must be asc or desc")
	}

	return q, nil
}
