// internal/booking/sessions.go
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/logger"
)

// Session is the persisted state of one cab search. Hold requests are
// checked against it so a stale or fabricated searchId cannot reserve a cab.
type Session struct {
	SearchID        string    `json:"searchId"`
	SourceAddress   string    `json:"sourceAddress"`
	DestinationAddr string    `json:"destinationAddress"`
	PickupTimeMs    int64     `json:"pickupTimeMs"`
	Cabs            []Cab     `json:"cabs"`
	CreatedAt       time.Time `json:"createdAt"`
}

// FindCab returns the session cab matching id and category.
func (s *Session) FindCab(cabID, category string) (*Cab, bool) {
	for i := range s.Cabs {
		if s.Cabs[i].CabID == cabID && s.Cabs[i].Category == category {
			return &s.Cabs[i], true
		}
	}
	return nil, false
}

// SessionStore keeps search sessions in Redis with a TTL.
type SessionStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    logger.Logger
}

func NewSessionStore(client *redis.Client, ttl time.Duration, keyPrefix string, log logger.Logger) *SessionStore {
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	if keyPrefix == "" {
		keyPrefix = "trip:search:"
	}
	return &SessionStore{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		logger:    log.With(map[string]interface{}{"component": "session-store"}),
	}
}

func (s *SessionStore) key(searchID string) string {
	return s.keyPrefix + searchID
}

// Save persists the session under its search id.
func (s *SessionStore) Save(ctx context.Context, session *Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(session.SearchID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", session.SearchID, err)
	}
	return nil
}

// Get loads a session; an unknown or expired search id yields
// SESSION_NOT_FOUND.
func (s *SessionStore) Get(ctx context.Context, searchID string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(searchID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cerrors.NewSessionNotFoundError(searchID)
		}
		s.logger.Error("session lookup failed", map[string]interface{}{
			"searchId": searchID,
			"error":    err.Error(),
		})
		return nil, cerrors.NewUpstreamTransientError("redis", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", searchID, err)
	}
	return &session, nil
}

// Delete removes a session, typically after a successful hold.
func (s *SessionStore) Delete(ctx context.Context, searchID string) error {
	return s.client.Del(ctx, s.key(searchID)).Err()
}
