package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultSessionTTL = 24 * time.Hour

// ErrSessionNotFound is returned when no session exists for a conversation.
var ErrSessionNotFound = errors.New("conversation: session not found")

// SessionStore persists booking sessions in Redis between dialogue turns.
// The Dialogue Engine may abandon a conversation at any time, so every
// session carries a TTL instead of explicit cleanup.
type SessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("tramites.internal.conversation.sessions"),
	}
}

// Save persists the session and refreshes its TTL.
func (st *SessionStore) Save(ctx context.Context, s *Session) error {
	ctx, span := st.tracer.Start(ctx, "conversation.save_session")
	defer span.End()

	data, err := json.Marshal(s)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: marshal session: %w", err)
	}
	if err := st.redis.Set(ctx, sessionKey(s.ID), data, st.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: persist session: %w", err)
	}
	return nil
}

// Load returns the session for a conversation, ErrSessionNotFound on a miss.
func (st *SessionStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	ctx, span := st.tracer.Start(ctx, "conversation.load_session")
	defer span.End()

	data, err := st.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: decode session: %w", err)
	}
	return &s, nil
}

// Delete drops the session, e.g. after an explicit reset.
func (st *SessionStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := st.tracer.Start(ctx, "conversation.delete_session")
	defer span.End()

	if err := st.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: delete session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
