// Package notify pushes report lifecycle events to an external webhook.
// Report generation runs detached from the originating request, so a
// configured webhook is the only push-style signal that a report finished;
// without one, callers poll the report endpoint.
//
// Payloads are JSON, optionally signed with HMAC-SHA256 so receivers can
// verify origin.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/posinsight/posinsight/pkg/models"
)

// EventType describes what happened to a report workflow.
type EventType string

const (
	EventReportCompleted EventType = "report_completed"
	EventReportFailed    EventType = "report_failed"
)

// Event is the webhook payload.
type Event struct {
	Type       EventType         `json:"type"`
	ReportID   string            `json:"reportId"`
	ReportType models.ReportType `json:"reportType"`
	SessionID  string            `json:"sessionId,omitempty"`
	Error      string            `json:"error,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewEvent creates an Event stamped with the current time.
func NewEvent(eventType EventType, reportID string, reportType models.ReportType, sessionID, errMsg string) Event {
	return Event{
		Type:       eventType,
		ReportID:   reportID,
		ReportType: reportType,
		SessionID:  sessionID,
		Error:      errMsg,
		Timestamp:  time.Now().UTC(),
	}
}

// Service delivers events to a single configured webhook URL.
type Service struct {
	url    string
	secret string
	client *http.Client
}

// NewService creates a webhook notifier. An empty URL yields a disabled
// service whose Dispatch is a no-op.
func NewService(url, secret string) *Service {
	return &Service{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether a webhook URL is configured.
func (s *Service) Enabled() bool { return s.url != "" }

// Dispatch posts the event to the webhook. Delivery is best-effort with up
// to 3 attempts; a final failure is logged, never propagated, because
// notification must not affect the workflow outcome.
func (s *Service) Dispatch(ctx context.Context, event Event) {
	if !s.Enabled() {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal webhook payload")
		return
	}

	if err := s.sendWithRetries(ctx, body, event); err != nil {
		log.Warn().
			Err(err).
			Str("event", string(event.Type)).
			Str("report_id", event.ReportID).
			Msg("Webhook delivery failed")
		return
	}
	log.Info().
		Str("event", string(event.Type)).
		Str("report_id", event.ReportID).
		Msg("Webhook dispatched")
}

// sendWithRetries posts the payload with up to 3 attempts and linear
// backoff. The request is rebuilt per attempt because a consumed body cannot
// be resent.
func (s *Service) sendWithRetries(ctx context.Context, body []byte, event Event) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt*2) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "POSInsight-Webhook/1.0")
		req.Header.Set("X-POSInsight-Event", string(event.Type))
		if s.secret != "" {
			mac := hmac.New(sha256.New, []byte(s.secret))
			mac.Write(body)
			req.Header.Set("X-POSInsight-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("webhook HTTP %d from %s", resp.StatusCode, s.url)
	}
	return fmt.Errorf("webhook failed after 3 attempts: %w", lastErr)
}
