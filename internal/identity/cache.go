package identity

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "directory:v1:"

// CachedDirectory is a Redis read-through cache in front of a Directory.
// Cached listings expire after ttl and are dropped when a user is created.
type CachedDirectory struct {
	next   Directory
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedDirectory wraps next. A nil cache disables caching.
func NewCachedDirectory(next Directory, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedDirectory{next: next, cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(q UserQuery) string {
	switch {
	case q.ID != "" && q.ExternalID != "":
		return cachePrefix + "id:" + q.ID + ":ext:" + q.ExternalID
	case q.ID != "":
		return cachePrefix + "id:" + q.ID
	case q.ExternalID != "":
		return cachePrefix + "ext:" + q.ExternalID
	default:
		return cachePrefix + "all"
	}
}

// ListUsers serves from cache when possible. Cache errors fall through to
// the backing directory.
func (d *CachedDirectory) ListUsers(ctx context.Context, query UserQuery) ([]User, error) {
	if d.cache == nil {
		return d.next.ListUsers(ctx, query)
	}

	key := cacheKey(query)
	raw, err := d.cache.Get(ctx, key).Bytes()
	if err == nil {
		var users []User
		if err := json.Unmarshal(raw, &users); err == nil {
			return users, nil
		}
		d.warn("decode cached users", key, err)
	} else if err != redis.Nil {
		d.warn("read cached users", key, err)
	}

	return d.ListUsersFresh(ctx, query)
}

// ListUsersFresh always asks the backing directory and refreshes the cached
// listing with the answer. Callers about to write use it instead of ListUsers.
func (d *CachedDirectory) ListUsersFresh(ctx context.Context, query UserQuery) ([]User, error) {
	users, err := d.next.ListUsers(ctx, query)
	if err != nil {
		return nil, err
	}
	if d.cache == nil {
		return users, nil
	}

	key := cacheKey(query)
	if len(users) == 0 && (query.ID != "" || query.ExternalID != "") {
		// A miss for one identity may be filled by another replica at any
		// moment, so it is not remembered.
		if err := d.cache.Del(ctx, key).Err(); err != nil {
			d.warn("drop cached miss", key, err)
		}
		return users, nil
	}

	payload, err := json.Marshal(users)
	if err != nil {
		d.warn("encode users", key, err)
		return users, nil
	}
	if err := d.cache.Set(ctx, key, payload, d.ttl).Err(); err != nil {
		d.warn("store users", key, err)
	}
	return users, nil
}

// CreateUser writes through and invalidates listings the new user belongs to.
func (d *CachedDirectory) CreateUser(ctx context.Context, input NewUser) (User, error) {
	user, err := d.next.CreateUser(ctx, input)
	if err != nil {
		return User{}, err
	}
	if d.cache != nil {
		keys := []string{
			cacheKey(UserQuery{}),
			cacheKey(UserQuery{ExternalID: user.ExternalID}),
			cacheKey(UserQuery{ID: user.ID}),
		}
		if err := d.cache.Del(ctx, keys...).Err(); err != nil {
			d.warn("invalidate users", keys[0], err)
		}
	}
	return user, nil
}

func (d *CachedDirectory) warn(msg, key string, err error) {
	if d.logger == nil {
		return
	}
	d.logger.Warn("directory cache: "+msg, slog.String("key", key), slog.Any("error", err))
}
