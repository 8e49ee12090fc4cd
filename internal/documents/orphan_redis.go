// Copyright (c) 2026 Nomik. All rights reserved.

package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/constants"
)

// RedisOrphanTracker implements [OrphanTracker] on a Redis sorted set.
//
// Each member is a blob handle scored by its attach time (unix seconds),
// which makes "everything attached before the cutoff" a single ZRANGEBYSCORE.
type RedisOrphanTracker struct {
	client *redis.Client
}

// NewOrphanTracker creates a new Redis-backed [OrphanTracker].
func NewOrphanTracker(client *redis.Client) *RedisOrphanTracker {
	return &RedisOrphanTracker{client: client}
}

/*
Track records a handle as attached at the given time.

Parameters:
  - context: context.Context
  - handle: string
  - attachedAt: time.Time

Returns:
  - error: Execution errors
*/
func (tracker *RedisOrphanTracker) Track(context context.Context, handle string, attachedAt time.Time) error {

	member := redis.Z{
		Score:  float64(attachedAt.Unix()),
		Member: handle,
	}

	if err := tracker.client.ZAdd(context, constants.RedisPrefixOrphanDocs, member).Err(); err != nil {
		return fmt.Errorf("redis_orphan_tracker_track_failed: %w", err)
	}

	return nil
}

/*
Clear removes handles adopted by a committed account.

Parameters:
  - context: context.Context
  - handles: ...string

Returns:
  - error: Execution errors
*/
func (tracker *RedisOrphanTracker) Clear(context context.Context, handles ...string) error {
	if len(handles) == 0 {
		return nil
	}

	members := make([]interface{}, len(handles))
	for index, handle := range handles {
		members[index] = handle
	}

	if err := tracker.client.ZRem(context, constants.RedisPrefixOrphanDocs, members...).Err(); err != nil {
		return fmt.Errorf("redis_orphan_tracker_clear_failed: %w", err)
	}

	return nil
}

// reclaimScript pops the stale score range in one server-side step. Read
// and remove execute inside a single EVAL, so two concurrent sweeps can
// never both observe (and reclaim) the same handle.
var reclaimScript = redis.NewScript(`
local stale = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if #stale > 0 then
	redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
end
return stale
`)

/*
Reclaim removes and returns handles attached before the cutoff.

Description: Atomic pop of the stale score range, so two concurrent reapers
never reclaim the same handle twice.

Parameters:
  - context: context.Context
  - cutoff: time.Time

Returns:
  - []string: Reclaimed handles
  - error: Execution errors
*/
func (tracker *RedisOrphanTracker) Reclaim(context context.Context, cutoff time.Time) ([]string, error) {

	stale, err := reclaimScript.Run(context, tracker.client,
		[]string{constants.RedisPrefixOrphanDocs}, cutoff.Unix()).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("redis_orphan_tracker_reclaim_failed: %w", err)
	}

	return stale, nil
}
