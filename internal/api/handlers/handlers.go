// Package handlers implements the HTTP handlers for the POS Insight API.
// Every JSON endpoint responds with the uniform envelope
// {success, data?, error?, timestamp}.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/posinsight/posinsight/internal/cache"
	"github.com/posinsight/posinsight/internal/prompts"
	"github.com/posinsight/posinsight/internal/sessions"
	"github.com/posinsight/posinsight/internal/workflow"
	"github.com/posinsight/posinsight/pkg/models"
)

// estimatedSeconds is the generation estimate returned with 202 responses.
const estimatedSeconds = 5

// Chatter is the completion dependency for the chat endpoints.
type Chatter interface {
	Complete(ctx context.Context, system string, history []models.ChatMessage, userMessage string) models.LLMResult
	Stream(ctx context.Context, system string, history []models.ChatMessage, userMessage string) <-chan string
}

// Handlers holds all handler dependencies.
type Handlers struct {
	Sessions sessions.Store
	Reports  cache.ReportCache
	Workflow *workflow.Engine
	LLM      Chatter
}

// New creates a Handlers instance.
func New(sess sessions.Store, reports cache.ReportCache, wf *workflow.Engine, llm Chatter) *Handlers {
	return &Handlers{
		Sessions: sess,
		Reports:  reports,
		Workflow: wf,
		LLM:      llm,
	}
}

// ── Chat ────────────────────────────────────────────────────

type chatRequest struct {
	Message    string            `json:"message"`
	SessionID  string            `json:"sessionId,omitempty"`
	ReportType models.ReportType `json:"reportType,omitempty"`
}

// Chat answers a conversational message. Upstream completion failures are
// embedded in the assistant's reply, so this endpoint returns 200 even when
// the completion service is down.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("session-%d", time.Now().UnixMilli())
	}

	var history []models.ChatMessage
	if h.Sessions.Exists(r.Context(), sessionID) {
		msgs, err := h.Sessions.Messages(r.Context(), sessionID)
		if err == nil {
			history = msgs
		}
	}

	system := prompts.SystemPrompt
	if req.ReportType != "" {
		system = prompts.ForReportType(req.ReportType)
	}
	result := h.LLM.Complete(r.Context(), system, history, req.Message)

	if h.Sessions.Exists(r.Context(), sessionID) {
		if _, err := h.Sessions.AddMessage(r.Context(), sessionID, models.RoleUser, req.Message); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to record user message")
		}
		if _, err := h.Sessions.AddMessage(r.Context(), sessionID, models.RoleAssistant, result.Content); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to record assistant message")
		}
	}

	respondJSON(w, http.StatusOK, models.ChatResult{
		Response:  result.Content,
		SessionID: sessionID,
		ReportID:  fmt.Sprintf("report-%d", time.Now().UnixMilli()),
	})
}

// ChatStream answers a message as a chunked plain-text stream. The chunks
// are a presentation affordance over the final text, not incremental
// generation.
func (h *Handlers) ChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	var history []models.ChatMessage
	if req.SessionID != "" && h.Sessions.Exists(r.Context(), req.SessionID) {
		if msgs, err := h.Sessions.Messages(r.Context(), req.SessionID); err == nil {
			history = msgs
		}
	}

	system := prompts.SystemPrompt
	if req.ReportType != "" {
		system = prompts.ForReportType(req.ReportType)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	for chunk := range h.LLM.Stream(r.Context(), system, history, req.Message) {
		if _, err := w.Write([]byte(chunk)); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// ── Reports ─────────────────────────────────────────────────

type reportFiltersRequest struct {
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
	Department    string  `json:"department,omitempty"`
	Category      string  `json:"category,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	MinAmount     float64 `json:"minAmount,omitempty"`
	MaxAmount     float64 `json:"maxAmount,omitempty"`
}

type reportRequest struct {
	ReportType models.ReportType     `json:"reportType"`
	Filters    *reportFiltersRequest `json:"filters"`
	SessionID  string                `json:"sessionId,omitempty"`
	UserID     string                `json:"userId,omitempty"`
}

// parseDate accepts both plain dates and full RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// Report accepts a report request, responds 202 immediately, and runs the
// generation workflow detached from this request. The caller observes
// completion by fetching the report id from the cache.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ReportType == "" || req.Filters == nil {
		respondError(w, http.StatusBadRequest, "reportType and filters are required")
		return
	}

	start, err := parseDate(req.Filters.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "filters.startDate is required (YYYY-MM-DD)")
		return
	}
	end, err := parseDate(req.Filters.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "filters.endDate is required (YYYY-MM-DD)")
		return
	}
	if end.Before(start) {
		respondError(w, http.StatusBadRequest, "filters.endDate must not precede startDate")
		return
	}

	filters := models.ReportFilters{
		StartDate:     start,
		EndDate:       end,
		Department:    req.Filters.Department,
		Category:      req.Filters.Category,
		PaymentMethod: models.PaymentMethod(req.Filters.PaymentMethod),
		MinAmount:     req.Filters.MinAmount,
		MaxAmount:     req.Filters.MaxAmount,
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("session-%d", time.Now().UnixMilli())
	}

	reportID := workflow.NewReportID()

	// The identifier is freshly generated above, so this lookup can only hit
	// if an earlier run cached a report under the very same id.
	if cached, err := h.Reports.Get(r.Context(), reportID); err == nil {
		respondJSON(w, http.StatusOK, models.ReportStatus{
			ReportID: reportID,
			Status:   "completed",
			Report:   cached,
		})
		return
	}

	wfCtx := &models.WorkflowContext{
		SessionID:  sessionID,
		UserID:     req.UserID,
		ReportType: req.ReportType,
		Filters:    filters,
		Status:     models.WorkflowPending,
	}
	h.Workflow.ExecuteAsync(reportID, wfCtx)

	h.bumpSessionReportCount(r, sessionID, req.ReportType)

	respondJSON(w, http.StatusAccepted, models.ReportStatus{
		ReportID:      reportID,
		Status:        "generating",
		EstimatedTime: estimatedSeconds,
	})
}

func (h *Handlers) bumpSessionReportCount(r *http.Request, sessionID string, rt models.ReportType) {
	if !h.Sessions.Exists(r.Context(), sessionID) {
		return
	}
	info, err := h.Sessions.Info(r.Context(), sessionID)
	if err != nil {
		return
	}
	count := info.Metadata.ReportCount + 1
	patch := sessions.MetadataPatch{ReportCount: &count, LastReportType: &rt}
	if err := h.Sessions.UpdateMetadata(r.Context(), sessionID, patch); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to update session metadata")
	}
}

// GetReport returns a cached report by id, or 404 while generation is still
// in flight (or after a failed run, which leaves no cache entry).
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	rep, err := h.Reports.Get(r.Context(), reportID)
	if err != nil {
		var nf *cache.ErrNotFound
		if errors.As(err, &nf) {
			respondError(w, http.StatusNotFound, "report not found: "+reportID)
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, models.ReportStatus{
		ReportID: reportID,
		Status:   "completed",
		Report:   rep,
	})
}

// ── Health ──────────────────────────────────────────────────

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ── Respond helpers ─────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.APIResponse{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC(),
	})
}
