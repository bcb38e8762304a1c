package stock

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/toko-checkout/internal/cart"
)

// decrementScript debits all keys by their ARGV quantity, or nothing when any
// key is missing or short.
var decrementScript = redis.NewScript(`
for i = 1, #KEYS do
  local have = tonumber(redis.call("GET", KEYS[i]) or "-1")
  if have < tonumber(ARGV[i]) then
    return 0
  end
end
for i = 1, #KEYS do
  redis.call("DECRBY", KEYS[i], ARGV[i])
end
return 1
`)

// RedisStore keeps per-product stock levels as Redis integers.
type RedisStore struct {
	R      *redis.Client
	Prefix string
}

func (s RedisStore) key(productID int64) string {
	return fmt.Sprintf("%sstock:%d", s.Prefix, productID)
}

// SetLevel overwrites the stock level of a product.
func (s RedisStore) SetLevel(ctx context.Context, productID int64, qty int) error {
	if s.R == nil {
		return errors.New("stock: redis client not configured")
	}
	return s.R.Set(ctx, s.key(productID), qty, 0).Err()
}

// Level returns the stock level of a product; unknown products have none.
func (s RedisStore) Level(ctx context.Context, productID int64) (int, error) {
	if s.R == nil {
		return 0, errors.New("stock: redis client not configured")
	}
	n, err := s.R.Get(ctx, s.key(productID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// CheckAvailability implements Service.
func (s RedisStore) CheckAvailability(ctx context.Context, lines []cart.Line) (bool, error) {
	if s.R == nil {
		return false, errors.New("stock: redis client not configured")
	}
	ids, qty := demand(lines)
	if len(ids) == 0 {
		return true, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.R.MGet(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("stock: read levels: %w", err)
	}
	for i, raw := range values {
		str, ok := raw.(string)
		if !ok {
			return false, nil
		}
		have, err := strconv.Atoi(str)
		if err != nil {
			return false, fmt.Errorf("stock: level of product %d: %w", ids[i], err)
		}
		if have < qty[ids[i]] {
			return false, nil
		}
	}
	return true, nil
}

// Decrement implements Service.
func (s RedisStore) Decrement(ctx context.Context, lines []cart.Line) (bool, error) {
	if s.R == nil {
		return false, errors.New("stock: redis client not configured")
	}
	ids, qty := demand(lines)
	if len(ids) == 0 {
		return true, nil
	}
	keys := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
		args[i] = qty[id]
	}
	debited, err := decrementScript.Run(ctx, s.R, keys, args...).Int()
	if err != nil {
		return false, fmt.Errorf("stock: decrement: %w", err)
	}
	return debited == 1, nil
}
