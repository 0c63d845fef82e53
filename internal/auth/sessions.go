package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
)

// SessionStore keeps session credentials server-side in redis. Looking a
// credential up is the round trip that makes revocation effective
// immediately instead of waiting for token expiry.
type SessionStore struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewSessionStore(client *redisv9.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Create mints an opaque session credential bound to the principal.
func (s *SessionStore) Create(ctx context.Context, p *Principal) (string, error) {
	record := *p
	record.IssuedAt = time.Now()
	record.ExpiresAt = record.IssuedAt.Add(s.ttl)

	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal session failed: %w", err)
	}

	token := uuid.NewString()
	if err := s.client.Set(ctx, s.sessionKey(token), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set session failed: %w", err)
	}
	return token, nil
}

// Get resolves a session credential to its principal. Unknown or expired
// credentials return nil with no error; infrastructure failures return err.
func (s *SessionStore) Get(ctx context.Context, token string) (*Principal, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(token)).Result()
	if err == redisv9.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session failed: %w", err)
	}

	var p Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	if !p.ExpiresAt.IsZero() && time.Now().After(p.ExpiresAt) {
		return nil, nil
	}
	return &p, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete session failed: %w", err)
	}
	return nil
}

// RevokeSubject marks a subject's account access as revoked. Both the
// session-cookie path and the bearer-token path reject revoked subjects
// until the marker expires (kept as long as the longest credential).
func (s *SessionStore) RevokeSubject(ctx context.Context, subject string) error {
	if err := s.client.Set(ctx, s.revokedKey(subject), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set revocation marker failed: %w", err)
	}
	return nil
}

func (s *SessionStore) IsRevoked(ctx context.Context, subject string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.revokedKey(subject)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check revocation failed: %w", err)
	}
	return exists > 0, nil
}

func (s *SessionStore) sessionKey(token string) string {
	return "auth:session:" + token
}

func (s *SessionStore) revokedKey(subject string) string {
	return "auth:revoked:" + subject
}
