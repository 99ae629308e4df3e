package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"altdata_backend/internal/feature/approval/domain/entity"
	"altdata_backend/internal/feature/approval/usecase"
)

// CachingProfileRepository はプロフィール参照をRedisにキャッシュします。
// 承認ゲートは全データリクエストで参照されるため、DBへの往復を減らします。
// Approve は書き込み後にキャッシュを削除し、次の参照で承認済みの値が読まれます。
type CachingProfileRepository struct {
	inner     usecase.ProfileRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ProfileRepository = (*CachingProfileRepository)(nil)

// NewCachingProfileRepository decorates a ProfileRepository with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "profile".
func NewCachingProfileRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ProfileRepository, namespace string) *CachingProfileRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "profile"
	}
	return &CachingProfileRepository{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

// FindByID はキャッシュを優先してプロフィールを返します。
// 未作成のプロフィールはキャッシュしません（サインアップ直後に作成されるため）。
func (c *CachingProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var p entity.Profile
		if err := json.Unmarshal(b, &p); err == nil {
			return &p, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	p, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return p, nil
}

// Approve は承認を書き込み、キャッシュ済みのプロフィールを破棄します。
func (c *CachingProfileRepository) Approve(ctx context.Context, id string, at time.Time) error {
	if err := c.inner.Approve(ctx, id, at); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		// TTL経過後には整合するため、エラーは返さない
		slog.Warn("failed to invalidate cached profile", "user_id", id, "error", err)
	}
	return nil
}

func (c *CachingProfileRepository) cacheKey(id string) string {
	return c.namespace + ":" + safe(id)
}
