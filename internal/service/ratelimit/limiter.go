package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the admission budget. State itself lives in Redis.
type Config struct {
	Points    int
	Window    time.Duration
	Block     time.Duration
	KeyPrefix string
	FailOpen  bool
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// consumeScript increments the caller counter. The first consumption opens
// the window, the first over-budget call extends the key to the block
// duration. Returns {count, pttl}.
var consumeScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
elseif n == tonumber(ARGV[3]) + 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// Limiter is a fixed-window counter with a penalty block, shared across
// instances through Redis.
type Limiter struct {
	rdb redis.Scripter
	cfg Config
}

// New creates a Redis backed limiter.
func New(rdb redis.Scripter, cfg Config) *Limiter {
	if cfg.Points <= 0 {
		cfg.Points = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Block <= 0 {
		cfg.Block = cfg.Window
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rl"
	}
	return &Limiter{rdb: rdb, cfg: cfg}
}

// FailOpen reports whether store failures should admit the caller.
func (l *Limiter) FailOpen() bool { return l.cfg.FailOpen }

// Admit consumes one point for callerID. A store failure returns an error;
// the caller decides how to degrade.
func (l *Limiter) Admit(ctx context.Context, callerID string) (Decision, error) {
	key := l.cfg.KeyPrefix + ":" + callerID
	res, err := consumeScript.Run(ctx, l.rdb, []string{key},
		l.cfg.Window.Milliseconds(), l.cfg.Block.Milliseconds(), l.cfg.Points).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limiter: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limiter: unexpected reply %v", res)
	}

	n, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if n <= l.cfg.Points {
		return Decision{Allowed: true, Remaining: l.cfg.Points - n}, nil
	}
	if ttl <= 0 {
		ttl = l.cfg.Block
	}
	return Decision{Allowed: false, RetryAfter: ttl}, nil
}
