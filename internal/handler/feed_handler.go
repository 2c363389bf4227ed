package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"club_portal/internal/middleware"
	"club_portal/internal/model"
)

// FeedLoader 组装某个用户的首页信息流，userID 为 0 表示匿名
type FeedLoader interface {
	Feed(ctx context.Context, userID uint64) ([]*model.FeedPost, error)
}

type FeedHandler struct {
	svc FeedLoader
}

func NewFeedHandler(svc FeedLoader) *FeedHandler {
	return &FeedHandler{svc: svc}
}

// Feed 首页信息流，任何一步失败都不返回部分结果
func (h *FeedHandler) Feed(c *gin.Context) {
	uid := middleware.UserID(c)
	posts, err := h.svc.Feed(c.Request.Context(), uid)
	if err != nil {
		_ = c.Error(err)
		zap.L().Error("assemble feed failed", zap.Uint64("user_id", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to load feed"})
		return
	}
	if posts == nil {
		posts = []*model.FeedPost{}
	}
	c.JSON(http.StatusOK, posts)
}
