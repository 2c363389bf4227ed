package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"club_portal/internal/pkg"
	"club_portal/internal/repository/mysql"
	"club_portal/internal/repository/redis"
)

type PostLikeService struct {
	repo      *mysql.PostLikeRepository
	posts     *mysql.PostRepository
	likeCache *redis.LikeCacheRepository
	lock      *redis.DistLock
}

func NewPostLikeService(repo *mysql.PostLikeRepository, posts *mysql.PostRepository,
	likeCache *redis.LikeCacheRepository, lock *redis.DistLock) *PostLikeService {
	return &PostLikeService{repo: repo, posts: posts, likeCache: likeCache, lock: lock}
}

// Like 先写库，再更新缓存集合；计数缓存在 AddLike 中按需自增
func (s *PostLikeService) Like(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 || postID == 0 {
		return false, pkg.BadRequest("invalid id")
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkg.NotFound("post not found")
		}
		return false, err
	}

	changed, err := s.repo.Like(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if !changed {
		// 幂等命中时，尽量惰性回填集合
		s.likeCache.WarmIsLiked(ctx, userID, postID, true)
		return false, nil
	}
	if err = s.likeCache.AddLike(ctx, userID, postID); err != nil {
		zap.L().Warn("like cache update failed", zap.Uint64("post_id", postID), zap.Error(err))
		_ = s.likeCache.DeleteCount(ctx, postID)
	}
	return true, nil
}

// Unlike 同样先写库；缓存失败则删计数 Key 交给读侧回源
func (s *PostLikeService) Unlike(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 || postID == 0 {
		return false, pkg.BadRequest("invalid id")
	}
	changed, err := s.repo.Unlike(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if !changed {
		s.likeCache.WarmIsLiked(ctx, userID, postID, false)
		return false, nil
	}
	if err = s.likeCache.RemoveLike(ctx, userID, postID); err != nil {
		zap.L().Warn("unlike cache update failed", zap.Uint64("post_id", postID), zap.Error(err))
		_ = s.likeCache.DeleteCount(ctx, postID)
	}
	return true, nil
}

// IsLiked 缓存未命中时从库里整体回填点赞集合
func (s *PostLikeService) IsLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 || postID == 0 {
		return false, pkg.BadRequest("invalid id")
	}
	if b, ok, err := s.likeCache.IsLikedCached(ctx, userID, postID); err == nil && ok {
		return b, nil
	}
	likers, err := s.repo.LikerIDs(ctx, postID)
	if err != nil {
		return false, err
	}
	if err = s.likeCache.FillLikers(ctx, postID, likers); err != nil {
		zap.L().Warn("fill like set failed", zap.Uint64("post_id", postID), zap.Error(err))
	}
	for _, id := range likers {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// Count 缓存未命中时加锁回源，避免并发请求同时打到 DB
func (s *PostLikeService) Count(ctx context.Context, postID uint64) (int64, error) {
	if v, ok, err := s.likeCache.GetLikeCountCached(ctx, postID); err == nil && ok {
		return v, nil
	}
	token := uuid.NewString()
	got, _ := s.lock.Acquire(ctx, postID, token)
	if got {
		defer func() {
			if err := s.lock.Release(ctx, postID, token); err != nil {
				zap.L().Warn("release like lock failed", zap.Uint64("post_id", postID), zap.Error(err))
			}
		}()
		// 第二次检查
		if v, ok, err := s.likeCache.GetLikeCountCached(ctx, postID); err == nil && ok {
			return v, nil
		}
		v, err := s.repo.GetLikeCount(ctx, postID)
		if err != nil {
			return 0, err
		}
		_ = s.likeCache.SetLikeCount(ctx, postID, v)
		return v, nil
	}
	// 没拿到锁直接回源但不回填
	return s.repo.GetLikeCount(ctx, postID)
}
