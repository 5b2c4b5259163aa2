// Package sessions persists bounded conversation transcripts keyed by
// session ID. The in-memory implementation mirrors the per-key atomic
// semantics of the hosted durable store it stands in for: operations on a
// single session are serialized, and there are no cross-session guarantees.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/posinsight/posinsight/pkg/models"
)

// MaxMessages caps the transcript length. The oldest messages are evicted
// FIFO once the cap is exceeded.
const MaxMessages = 50

// infoMessages is how many trailing messages Info exposes.
const infoMessages = 10

// ErrUninitialized is returned by every operation invoked before Init for
// that session ID.
var ErrUninitialized = errors.New("session not initialized")

// MetadataPatch carries a partial metadata update. Nil fields are left
// untouched; map entries are merged key by key.
type MetadataPatch struct {
	ReportCount    *int               `json:"reportCount,omitempty"`
	LastReportType *models.ReportType `json:"lastReportType,omitempty"`
	Preferences    map[string]string  `json:"preferences,omitempty"`
	Extra          map[string]string  `json:"extra,omitempty"`
}

// Store is the conversation store contract. Implementations must serialize
// operations per session ID.
type Store interface {
	// Init creates the session on first contact or resumes it, refreshing
	// last-activity without discarding history. Idempotent.
	Init(ctx context.Context, sessionID, userID string) (*models.ChatSession, error)

	// AddMessage appends a message, evicting the oldest beyond MaxMessages.
	AddMessage(ctx context.Context, sessionID string, role models.ChatRole, content string) (*models.ChatMessage, error)

	// Messages returns the full transcript in order.
	Messages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)

	// MessagesSince returns messages strictly newer than the timestamp.
	MessagesSince(ctx context.Context, sessionID string, since time.Time) ([]models.ChatMessage, error)

	// Clear empties the transcript but keeps the session record.
	Clear(ctx context.Context, sessionID string) error

	// UpdateMetadata merges a metadata patch into the session.
	UpdateMetadata(ctx context.Context, sessionID string, patch MetadataPatch) error

	// Info returns a condensed view exposing only the most recent messages.
	Info(ctx context.Context, sessionID string) (*models.ChatSession, error)

	// Exists reports whether the session has been initialized.
	Exists(ctx context.Context, sessionID string) bool
}

// MemoryStore is a thread-safe in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.ChatSession
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.ChatSession),
		now:      time.Now,
	}
}

func (s *MemoryStore) Init(_ context.Context, sessionID, userID string) (*models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	sess, ok := s.sessions[sessionID]
	if ok {
		sess.LastActivity = now
	} else {
		sess = &models.ChatSession{
			ID:           sessionID,
			UserID:       userID,
			Messages:     []models.ChatMessage{},
			CreatedAt:    now,
			LastActivity: now,
			Metadata: models.SessionMetadata{
				Preferences: map[string]string{},
			},
		}
		s.sessions[sessionID] = sess
	}

	cp := copySession(sess, len(sess.Messages))
	return &cp, nil
}

func (s *MemoryStore) AddMessage(_ context.Context, sessionID string, role models.ChatRole, content string) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrUninitialized)
	}

	msg := models.ChatMessage{
		ID:        "msg-" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UTC(),
		SessionID: sessionID,
	}
	sess.Messages = append(sess.Messages, msg)
	if len(sess.Messages) > MaxMessages {
		sess.Messages = sess.Messages[len(sess.Messages)-MaxMessages:]
	}
	sess.LastActivity = msg.Timestamp

	return &msg, nil
}

func (s *MemoryStore) Messages(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrUninitialized)
	}
	out := make([]models.ChatMessage, len(sess.Messages))
	copy(out, sess.Messages)
	return out, nil
}

func (s *MemoryStore) MessagesSince(_ context.Context, sessionID string, since time.Time) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrUninitialized)
	}
	var out []models.ChatMessage
	for _, msg := range sess.Messages {
		if msg.Timestamp.After(since) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, ErrUninitialized)
	}
	sess.Messages = []models.ChatMessage{}
	sess.LastActivity = s.now().UTC()
	return nil
}

func (s *MemoryStore) UpdateMetadata(_ context.Context, sessionID string, patch MetadataPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, ErrUninitialized)
	}

	if patch.ReportCount != nil {
		sess.Metadata.ReportCount = *patch.ReportCount
	}
	if patch.LastReportType != nil {
		sess.Metadata.LastReportType = *patch.LastReportType
	}
	if len(patch.Preferences) > 0 {
		if sess.Metadata.Preferences == nil {
			sess.Metadata.Preferences = map[string]string{}
		}
		for k, v := range patch.Preferences {
			sess.Metadata.Preferences[k] = v
		}
	}
	if len(patch.Extra) > 0 {
		if sess.Metadata.Extra == nil {
			sess.Metadata.Extra = map[string]string{}
		}
		for k, v := range patch.Extra {
			sess.Metadata.Extra[k] = v
		}
	}
	sess.LastActivity = s.now().UTC()
	return nil
}

func (s *MemoryStore) Info(_ context.Context, sessionID string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrUninitialized)
	}
	cp := copySession(sess, infoMessages)
	return &cp, nil
}

// PurgeIdle removes sessions whose last activity is strictly before cutoff
// and returns how many were removed.
func (s *MemoryStore) PurgeIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged
}

func (s *MemoryStore) Exists(_ context.Context, sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[sessionID]
	return ok
}

// copySession returns a value copy with at most tail trailing messages.
func copySession(sess *models.ChatSession, tail int) models.ChatSession {
	cp := *sess
	msgs := sess.Messages
	if len(msgs) > tail {
		msgs = msgs[len(msgs)-tail:]
	}
	cp.Messages = make([]models.ChatMessage, len(msgs))
	copy(cp.Messages, msgs)
	return cp
}
