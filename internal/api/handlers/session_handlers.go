package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/posinsight/posinsight/internal/sessions"
	"github.com/posinsight/posinsight/pkg/models"
)

// respondSessionError maps the uninitialized-session failure to 409 and
// everything else to 500.
func respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, sessions.ErrUninitialized) {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

type sessionInitRequest struct {
	UserID string `json:"userId"`
}

// SessionInit creates or resumes a session. Repeated calls refresh
// last-activity without discarding history.
func (h *Handlers) SessionInit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req sessionInitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.Sessions.Init(r.Context(), sessionID, req.UserID)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

type sessionMessageRequest struct {
	Role    models.ChatRole `json:"role"`
	Content string          `json:"content"`
}

// SessionMessage appends one message to the transcript.
func (h *Handlers) SessionMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req sessionMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAssistant {
		respondError(w, http.StatusBadRequest, "role must be user or assistant")
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	msg, err := h.Sessions.AddMessage(r.Context(), sessionID, req.Role, req.Content)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, msg)
}

// SessionMessages returns the transcript, optionally only messages strictly
// newer than the RFC 3339 `since` query parameter.
func (h *Handlers) SessionMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var (
		msgs []models.ChatMessage
		err  error
	)
	if since := r.URL.Query().Get("since"); since != "" {
		ts, parseErr := time.Parse(time.RFC3339, since)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		msgs, err = h.Sessions.MessagesSince(r.Context(), sessionID, ts)
	} else {
		msgs, err = h.Sessions.Messages(r.Context(), sessionID)
	}
	if err != nil {
		respondSessionError(w, err)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	respondJSON(w, http.StatusOK, msgs)
}

// SessionInfo returns the condensed session view (last 10 messages).
func (h *Handlers) SessionInfo(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.Sessions.Info(r.Context(), sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// SessionClear empties the transcript but keeps the session record.
func (h *Handlers) SessionClear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.Sessions.Clear(r.Context(), sessionID); err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// SessionMetadata merges a metadata patch into the session.
func (h *Handlers) SessionMetadata(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var patch sessions.MetadataPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Sessions.UpdateMetadata(r.Context(), sessionID, patch); err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"updated": true})
}
