// Copyright (c) 2026 Nomik. All rights reserved.

package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/apperr"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/constants"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/sec"
)

// RedisSessionStore implements [SessionStore] using Redis.
//
// Keys are SHA-256 digests of the raw token, so a Redis snapshot never
// contains usable session tokens. Values are JSON. The key TTL is derived
// from the session's ExpiresAt, making storage eviction line up with the
// lazy expiry check in the service.
type RedisSessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed [SessionStore].
func NewSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(token string) string {
	return constants.RedisPrefixRegistration + sec.HashToken(token)
}

/*
Save writes the session under its token with a TTL from ExpiresAt.

Parameters:
  - context: context.Context
  - token: string
  - session: *Session

Returns:
  - error: apperr.StorageUnavailable on execution errors
*/
func (store *RedisSessionStore) Save(context context.Context, token string, session *Session) error {

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_store_marshal_failed: %w", err)
	}

	timeToLive := time.Until(session.ExpiresAt)
	if timeToLive <= 0 {
		// An already-expired session is never written back.
		return errSessionNotFound()
	}

	if err := store.client.Set(context, sessionKey(token), payload, timeToLive).Err(); err != nil {
		return apperr.StorageUnavailable(err)
	}

	return nil
}

/*
Get returns the session for a token.

Description: Returns SESSION_NOT_FOUND if the key is absent or already
evicted by TTL.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Session: Hydrated draft
  - error: SESSION_NOT_FOUND or apperr.StorageUnavailable
*/
func (store *RedisSessionStore) Get(context context.Context, token string) (*Session, error) {

	payload, err := store.client.Get(context, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errSessionNotFound()
		}
		return nil, apperr.StorageUnavailable(err)
	}

	return unmarshalSession(payload)
}

/*
Claim atomically removes and returns the session for a token.

Description: GETDEL makes the read-and-remove a single Redis command, so
of two concurrent commits on the same token exactly one receives the
session and the other receives SESSION_NOT_FOUND.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Session: The claimed draft
  - error: SESSION_NOT_FOUND or apperr.StorageUnavailable
*/
func (store *RedisSessionStore) Claim(context context.Context, token string) (*Session, error) {

	payload, err := store.client.GetDel(context, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errSessionNotFound()
		}
		return nil, apperr.StorageUnavailable(err)
	}

	return unmarshalSession(payload)
}

/*
Delete removes the session for a token. Idempotent.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: apperr.StorageUnavailable on execution errors
*/
func (store *RedisSessionStore) Delete(context context.Context, token string) error {

	if err := store.client.Del(context, sessionKey(token)).Err(); err != nil {
		return apperr.StorageUnavailable(err)
	}

	return nil
}

// unmarshalSession decodes a stored session value.
func unmarshalSession(payload []byte) (*Session, error) {
	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("redis_session_store_unmarshal_failed: %w", err)
	}
	return session, nil
}
