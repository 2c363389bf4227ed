package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	HiddenSetTTL       = 12 * time.Hour
	HiddenSetKeyPrefix = "feed:hidden:user"
	// 空集合在 Redis 中不存在，用占位成员标记“已回填”
	hiddenPlaceholder = "-"
)

// HiddenCacheRepository 用户隐藏列表缓存
type HiddenCacheRepository struct {
	RDB *redis.Client
	ttl time.Duration
}

func NewHiddenCacheRepository(rdb *redis.Client) *HiddenCacheRepository {
	return &HiddenCacheRepository{RDB: rdb, ttl: HiddenSetTTL}
}

func (r *HiddenCacheRepository) key(userID uint64) string {
	return fmt.Sprintf("%s:%d", HiddenSetKeyPrefix, userID)
}

// Get 返回 (引用列表, 是否命中, error)
func (r *HiddenCacheRepository) Get(ctx context.Context, userID uint64) ([]string, bool, error) {
	members, err := r.RDB.SMembers(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	refs := make([]string, 0, len(members))
	for _, m := range members {
		if m != hiddenPlaceholder {
			refs = append(refs, m)
		}
	}
	return refs, true, nil
}

// Fill 回源后整体回填
func (r *HiddenCacheRepository) Fill(ctx context.Context, userID uint64, refs []string) error {
	k := r.key(userID)
	members := make([]any, 0, len(refs)+1)
	members = append(members, hiddenPlaceholder)
	for _, ref := range refs {
		members = append(members, ref)
	}
	_, err := r.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, k)
		p.SAdd(ctx, k, members...)
		p.Expire(ctx, k, r.ttl)
		return nil
	})
	return err
}

// Add 惰性追加：只在集合已存在时写入，否则等下次读时整体回填
func (r *HiddenCacheRepository) Add(ctx context.Context, userID uint64, ref string) error {
	k := r.key(userID)
	n, err := r.RDB.Exists(ctx, k).Result()
	if err != nil || n == 0 {
		return err
	}
	if err = r.RDB.SAdd(ctx, k, ref).Err(); err != nil {
		return err
	}
	return r.RDB.Expire(ctx, k, r.ttl).Err()
}

func (r *HiddenCacheRepository) Invalidate(ctx context.Context, userID uint64) error {
	return r.RDB.Del(ctx, r.key(userID)).Err()
}
