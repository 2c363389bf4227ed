package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"club_portal/internal/middleware"
	"club_portal/internal/service"
)

type FollowHandler struct {
	svc *service.FollowService
}

func NewFollowHandler(svc *service.FollowService) *FollowHandler {
	return &FollowHandler{svc: svc}
}

type followReq struct {
	Action string `json:"action" binding:"required,oneof=follow unfollow"`
}

// Follow 关注/取关俱乐部
func (h *FollowHandler) Follow(c *gin.Context) {
	var req followReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	uid := middleware.UserID(c)
	slug := c.Param("slug")
	var (
		changed bool
		err     error
	)
	if req.Action == "follow" {
		changed, err = h.svc.Follow(c.Request.Context(), uid, slug)
	} else {
		changed, err = h.svc.Unfollow(c.Request.Context(), uid, slug)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}
