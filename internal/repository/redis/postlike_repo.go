package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	LikeSetTTL       = 24 * time.Hour
	LikeCntTTL       = 24 * time.Hour
	LockTTL          = 300 * time.Millisecond
	LikeSetKeyPrefix = "like:set:post" // 某个帖子已点赞的用户ID集合
	LikeCntKeyPrefix = "like:cnt:post" // 某个帖子的点赞计数
	LockKeyPrefix    = "lock:like:post"
)

// likerPlaceholder 空集合占位，用户 id 从 1 开始
const likerPlaceholder = 0

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// addIfCachedScript 集合已回填时才追加，否则集合只含部分点赞者
var addIfCachedScript = redis.NewScript(`
if redis.call("exists", KEYS[1]) == 1 then
  redis.call("sadd", KEYS[1], ARGV[1])
  redis.call("pexpire", KEYS[1], ARGV[2])
  return 1
end
return 0`)

// incrIfCachedScript 计数只在已缓存时自增
var incrIfCachedScript = redis.NewScript(`
if redis.call("exists", KEYS[1]) == 1 then
  redis.call("incr", KEYS[1])
  redis.call("pexpire", KEYS[1], ARGV[1])
  return 1
end
return 0`)

type LikeCacheRepository struct {
	RDB        *redis.Client
	likeSetTTL time.Duration
	likeCntTTL time.Duration
}

type DistLock struct {
	RDB *redis.Client
}

func NewLikeCacheRepository(rdb *redis.Client) *LikeCacheRepository {
	return &LikeCacheRepository{
		RDB:        rdb,
		likeSetTTL: LikeSetTTL,
		likeCntTTL: LikeCntTTL,
	}
}

func NewDistLock(rdb *redis.Client) *DistLock {
	return &DistLock{RDB: rdb}
}

func (r *LikeCacheRepository) likeSetKey(postID uint64) string {
	return fmt.Sprintf("%s:%d", LikeSetKeyPrefix, postID)
}
func (r *LikeCacheRepository) likeCntKey(postID uint64) string {
	return fmt.Sprintf("%s:%d", LikeCntKeyPrefix, postID)
}

// AddLike 写路径：成功写MySQL后再调用；集合与计数都只在已缓存时更新
func (r *LikeCacheRepository) AddLike(ctx context.Context, userID, postID uint64) error {
	if err := addIfCachedScript.Run(ctx, r.RDB, []string{r.likeSetKey(postID)},
		userID, r.likeSetTTL.Milliseconds()).Err(); err != nil {
		return err
	}
	return incrIfCachedScript.Run(ctx, r.RDB, []string{r.likeCntKey(postID)},
		r.likeCntTTL.Milliseconds()).Err()
}

// FillLikers 回源后整体回填点赞集合
func (r *LikeCacheRepository) FillLikers(ctx context.Context, postID uint64, userIDs []uint64) error {
	k := r.likeSetKey(postID)
	members := make([]any, 0, len(userIDs)+1)
	members = append(members, likerPlaceholder)
	for _, id := range userIDs {
		members = append(members, id)
	}
	_, err := r.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, k)
		p.SAdd(ctx, k, members...)
		p.Expire(ctx, k, r.likeSetTTL)
		return nil
	})
	return err
}

func (r *LikeCacheRepository) RemoveLike(ctx context.Context, userID, postID uint64) error {
	if err := r.RDB.SRem(ctx, r.likeSetKey(postID), userID).Err(); err != nil {
		return err
	}
	ck := r.likeCntKey(postID)
	// 计数防负数
	return r.RDB.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, ck).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if val <= 0 {
			// 若不存在或<=0，交给读侧回源
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Decr(ctx, ck)
			return nil
		})
		return err
	}, ck)
}

// IsLikedCached 返回 (是否点赞, 是否命中缓存, error)
func (r *LikeCacheRepository) IsLikedCached(ctx context.Context, userID, postID uint64) (bool, bool, error) {
	k := r.likeSetKey(postID)
	exists, err := r.RDB.Exists(ctx, k).Result()
	if err != nil {
		return false, false, err
	}
	if exists == 0 {
		return false, false, nil
	}
	b, err := r.RDB.SIsMember(ctx, k, userID).Result()
	return b, true, err
}

// GetLikeCountCached 从缓存读取帖子的点赞数量
func (r *LikeCacheRepository) GetLikeCountCached(ctx context.Context, postID uint64) (int64, bool, error) {
	val, err := r.RDB.Get(ctx, r.likeCntKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	return val, err == nil, err
}

// SetLikeCount 回填帖子点赞数
func (r *LikeCacheRepository) SetLikeCount(ctx context.Context, postID uint64, cnt int64) error {
	return r.RDB.Set(ctx, r.likeCntKey(postID), cnt, r.likeCntTTL).Err()
}

// WarmIsLiked 惰性回填：只在集合已存在时写，避免集合无界扩张
func (r *LikeCacheRepository) WarmIsLiked(ctx context.Context, userID, postID uint64, liked bool) {
	k := r.likeSetKey(postID)
	if liked {
		_ = addIfCachedScript.Run(ctx, r.RDB, []string{k}, userID, r.likeSetTTL.Milliseconds()).Err()
		return
	}
	if ok, _ := r.RDB.Exists(ctx, k).Result(); ok > 0 {
		_ = r.RDB.SRem(ctx, k, userID).Err()
	}
}

// DeleteCount 删除计数缓存，交给读侧回源
func (r *LikeCacheRepository) DeleteCount(ctx context.Context, postID uint64) error {
	if err := r.RDB.Del(ctx, r.likeCntKey(postID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func lockKey(postID uint64) string {
	return fmt.Sprintf("%s:%d", LockKeyPrefix, postID)
}

// Acquire 请求加分布式锁
func (l *DistLock) Acquire(ctx context.Context, postID uint64, token string) (bool, error) {
	return l.RDB.SetNX(ctx, lockKey(postID), token, LockTTL).Result()
}

// Release 用lua保证只释放自己持有的锁
func (l *DistLock) Release(ctx context.Context, postID uint64, token string) error {
	return releaseScript.Run(ctx, l.RDB, []string{lockKey(postID)}, token).Err()
}
