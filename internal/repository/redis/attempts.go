package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Redabouizer/crealik-auth/internal/core/port"
)

const defaultAttemptPrefix = "login_attempts"

// checkAndRecordScript applies the fixed-window rules in one round trip so the
// counter stays correct under concurrent logins across instances. A window is
// elapsed only strictly past its length; the boundary instant still belongs to
// the old window. A count at or above the limit denies without incrementing,
// anything else increments and allows.
var checkAndRecordScript = red.NewScript(`
local start = tonumber(redis.call('HGET', KEYS[1], 'window_start'))
local count = tonumber(redis.call('HGET', KEYS[1], 'count'))
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

if start == nil or now - start > window then
	redis.call('HSET', KEYS[1], 'window_start', now, 'count', 1)
	redis.call('EXPIRE', KEYS[1], window * 2)
	return 1
end

if count ~= nil and count >= limit then
	return 0
end

redis.call('HINCRBY', KEYS[1], 'count', 1)
redis.call('EXPIRE', KEYS[1], window * 2)
return 1
`)

// AttemptRepository implements port.AttemptStore on Redis hashes keyed by the
// email and client address pair.
type AttemptRepository struct {
	client *red.Client
	prefix string
}

// NewAttemptRepository constructs a repository with the provided Redis client and key prefix.
func NewAttemptRepository(client *red.Client, keyPrefix string) *AttemptRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultAttemptPrefix
	}

	return &AttemptRepository{client: client, prefix: prefix}
}

// CheckAndRecord atomically applies the window rules for the key.
func (r *AttemptRepository) CheckAndRecord(ctx context.Context, email, clientAddr string, limit int, window time.Duration, now time.Time) (bool, error) {
	if limit <= 0 {
		return false, errors.New("limit must be positive")
	}
	if window <= 0 {
		return false, errors.New("window must be positive")
	}

	res, err := checkAndRecordScript.Run(ctx, r.client,
		[]string{r.key(email, clientAddr)},
		limit,
		int64(window/time.Second),
		now.Unix(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("redis check login attempts: %w", err)
	}

	return res == 1, nil
}

// ResetOnSuccess zeroes the counter while keeping the current window start, so
// a success inside a window does not extend it.
func (r *AttemptRepository) ResetOnSuccess(ctx context.Context, email, clientAddr string) error {
	if err := r.client.HSet(ctx, r.key(email, clientAddr), "count", 0).Err(); err != nil {
		return fmt.Errorf("redis reset login attempts: %w", err)
	}
	return nil
}

func (r *AttemptRepository) key(email, clientAddr string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(clientAddr))
}

var _ port.AttemptStore = (*AttemptRepository)(nil)
