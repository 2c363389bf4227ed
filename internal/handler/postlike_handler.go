package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"club_portal/internal/middleware"
	"club_portal/internal/service"
)

type PostLikeHandler struct {
	svc *service.PostLikeService
}

func NewPostLikeHandler(svc *service.PostLikeService) *PostLikeHandler {
	return &PostLikeHandler{svc: svc}
}

func (h *PostLikeHandler) Like(c *gin.Context) {
	pid, ok := paramID(c, "id")
	if !ok {
		return
	}
	changed, err := h.svc.Like(c.Request.Context(), middleware.UserID(c), pid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *PostLikeHandler) Unlike(c *gin.Context) {
	pid, ok := paramID(c, "id")
	if !ok {
		return
	}
	changed, err := h.svc.Unlike(c.Request.Context(), middleware.UserID(c), pid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// Status 点赞数以及当前用户是否已点赞
func (h *PostLikeHandler) Status(c *gin.Context) {
	pid, ok := paramID(c, "id")
	if !ok {
		return
	}
	cnt, err := h.svc.Count(c.Request.Context(), pid)
	if err != nil {
		fail(c, err)
		return
	}
	liked := false
	if uid := middleware.UserID(c); uid != 0 {
		if liked, err = h.svc.IsLiked(c.Request.Context(), uid, pid); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"count": cnt, "liked": liked})
}
