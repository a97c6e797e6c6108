package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "geniust:session:"

// swapScript replaces the value at KEYS[1] with ARGV[2] only while it still holds ARGV[1].
// ARGV[3] is the expiry in milliseconds, 0 for none.
const swapScript = `
local current = redis.call("GET", KEYS[1])
if current ~= ARGV[1] then
	return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ttl)
else
	redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`

const maxSwapAttempts = 3

// redisCommands is the part of the go-redis client the store uses.
type redisCommands interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *goredis.Cmd
}

// RedisStore keeps sessions as JSON strings with an expiry, so state survives restarts
// and is shared between server replicas.
type RedisStore struct {
	rdb redisCommands
	ttl time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl stores sessions without expiry.
func NewRedisStore(rdb redisCommands, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// DialRedis connects to the server in cfg and verifies it answers.
func DialRedis(ctx context.Context, cfg shared.SessionConfig) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", shared.ErrServiceUnavailable, err)
	}

	return NewRedisStore(rdb, cfg.TTL()), nil
}

func key(chatID int64) string {
	return keyPrefix + strconv.FormatInt(chatID, 10)
}

func (r *RedisStore) Get(ctx context.Context, chatID int64) (*models.Session, error) {
	raw, err := r.rdb.Get(ctx, key(chatID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return &models.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Set(ctx context.Context, chatID int64, s *models.Session) error {
	raw, err := json.Marshal(s.Clone())
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, key(chatID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, chatID int64) error {
	if err := r.rdb.Del(ctx, key(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// ConsumeState decodes the session, checks the nonce and writes the cleared session back
// with [swapScript]. A concurrent write between the read and the swap makes the swap miss,
// and the next attempt sees the new value.
func (r *RedisStore) ConsumeState(ctx context.Context, want models.PendingAuthState) (*models.Session, error) {
	k := key(want.ChatID)
	for range maxSwapAttempts {
		raw, err := r.rdb.Get(ctx, k).Result()
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("%w: chat %d", shared.ErrStateMismatch, want.ChatID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read session: %w", err)
		}

		var s models.Session
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("failed to decode session: %w", err)
		}
		if err := pendingMatches(&s, want); err != nil {
			return nil, err
		}

		s.ClearState()
		next, err := json.Marshal(&s)
		if err != nil {
			return nil, fmt.Errorf("failed to encode session: %w", err)
		}

		swapped, err := r.rdb.Eval(ctx, swapScript, []string{k}, raw, string(next), r.ttl.Milliseconds()).Int()
		if err != nil {
			return nil, fmt.Errorf("failed to consume state: %w", err)
		}
		if swapped == 1 {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: chat %d: session kept changing", shared.ErrStateMismatch, want.ChatID)
}
