package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/civiceye/internal/domain"
)

// ErrSessionNotFound reports a missing or expired session.
var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "session:"

// Session is the server-side record an opaque cookie points at. A session
// belongs to exactly one subject: user or authority, never both.
type Session struct {
	ID          string             `json:"id"`
	SubjectType domain.SubjectType `json:"subject_type"`
	SubjectID   int64              `json:"subject_id"`
	CreatedAt   time.Time          `json:"created_at"`
}

// SessionStore keeps sessions in Redis with a sliding expiry.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore builds the store.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Create issues a new opaque session for the subject.
func (s *SessionStore) Create(ctx context.Context, subjectType domain.SubjectType, subjectID int64) (*Session, error) {
	session := &Session{
		ID:          uuid.NewString(),
		SubjectType: subjectType,
		SubjectID:   subjectID,
		CreatedAt:   time.Now(),
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, payload, s.ttl).Err(); err != nil {
		return nil, err
	}
	return session, nil
}

// Get resolves a session ID, refreshing its expiry.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	_ = s.client.Expire(ctx, sessionKeyPrefix+sessionID, s.ttl).Err()
	return &session, nil
}

// Destroy removes the session; destroying an absent session is not an error.
func (s *SessionStore) Destroy(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
