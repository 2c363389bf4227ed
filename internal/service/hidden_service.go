package service

import (
	"context"

	"go.uber.org/zap"

	"club_portal/internal/repository/mysql"
	"club_portal/internal/repository/redis"
)

// HiddenService 隐藏列表：MySQL 为准，Redis 旁路缓存
type HiddenService struct {
	repo  *mysql.HiddenPostRepository
	cache *redis.HiddenCacheRepository
}

func NewHiddenService(repo *mysql.HiddenPostRepository, cache *redis.HiddenCacheRepository) *HiddenService {
	return &HiddenService{repo: repo, cache: cache}
}

// Refs 先读缓存，未命中或缓存异常时回源并回填
func (s *HiddenService) Refs(ctx context.Context, userID uint64) ([]string, error) {
	refs, hit, err := s.cache.Get(ctx, userID)
	if err == nil && hit {
		return refs, nil
	}
	if err != nil {
		zap.L().Warn("hidden cache read failed", zap.Uint64("user_id", userID), zap.Error(err))
	}
	refs, err = s.repo.Refs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Fill(ctx, userID, refs); err != nil {
		zap.L().Warn("hidden cache fill failed", zap.Uint64("user_id", userID), zap.Error(err))
	}
	return refs, nil
}

func (s *HiddenService) Hide(ctx context.Context, userID uint64, ref string) error {
	if err := s.repo.Add(ctx, userID, ref); err != nil {
		return err
	}
	if err := s.cache.Add(ctx, userID, ref); err != nil {
		// 追加失败则删缓存，下次读时回源
		_ = s.cache.Invalidate(ctx, userID)
	}
	return nil
}
