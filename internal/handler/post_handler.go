package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"club_portal/internal/middleware"
	"club_portal/internal/service"
)

type PostHandler struct {
	svc *service.PostService
}

type CreatePostReq struct {
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content"`
	MediaURL   string `json:"mediaUrl"`
	MediaType  string `json:"mediaType"`
	ClubName   string `json:"clubname"`
	Visibility string `json:"visibility"`
	IsGlobal   bool   `json:"isGlobal"`
}

type CommentReq struct {
	Text     string `json:"text" binding:"required"`
	ParentID uint64 `json:"parent_id"`
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// CreatePost 创建帖子接口
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), middleware.UserID(c), service.CreatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		MediaURL:   req.MediaURL,
		MediaType:  req.MediaType,
		ClubName:   req.ClubName,
		Visibility: req.Visibility,
		IsGlobal:   req.IsGlobal,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": post.ID})
}

// DeletePost 删除帖子接口
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePost(c.Request.Context(), middleware.UserID(c), postID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

// Comment 评论或回复
func (h *PostHandler) Comment(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	cm, err := h.svc.AddComment(c.Request.Context(), middleware.UserID(c), postID, req.ParentID, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": cm.ID})
}

// Hide 从当前用户的信息流中隐藏
func (h *PostHandler) Hide(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.HidePost(c.Request.Context(), middleware.UserID(c), postID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "hidden"})
}
