package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingScript trims the window, admits the event only while under max and
// reports the oldest surviving score. Rejected events are not recorded.
var slidingScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[2])
local count = redis.call("ZCARD", KEYS[1])
local allowed = 0
if count < tonumber(ARGV[3]) then
  redis.call("ZADD", KEYS[1], ARGV[1], ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call("PEXPIRE", KEYS[1], ARGV[5])
local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
return {allowed, count, oldest[2] or ARGV[1]}
`)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter implements a sliding window rate limiter backed by Redis sorted
// sets. Scores are unix milliseconds.
type Limiter struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

// Allow registers an event for key and reports whether it fits in the window.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (Decision, error) {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	if l.Client == nil || max <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: max, ResetAt: now.Add(window)}, nil
	}

	nowMs := now.UnixMilli()
	args := []any{
		strconv.FormatInt(nowMs, 10),
		strconv.FormatInt(nowMs-window.Milliseconds(), 10),
		max,
		fmt.Sprintf("%d:%s", nowMs, uuid.NewString()),
		window.Milliseconds(),
	}
	raw, err := slidingScript.Run(ctx, l.Client, []string{l.Prefix + key}, args...).Slice()
	if err != nil {
		return Decision{ResetAt: now.Add(window)}, fmt.Errorf("ratelimit: %w", err)
	}
	if len(raw) != 3 {
		return Decision{ResetAt: now.Add(window)}, errors.New("ratelimit: unexpected script reply")
	}
	allowed, _ := raw[0].(int64)
	count, _ := raw[1].(int64)
	oldest, err := strconv.ParseFloat(fmt.Sprint(raw[2]), 64)
	if err != nil {
		oldest = float64(nowMs)
	}

	remaining := max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   allowed == 1,
		Remaining: remaining,
		ResetAt:   time.UnixMilli(int64(oldest)).Add(window),
	}, nil
}
