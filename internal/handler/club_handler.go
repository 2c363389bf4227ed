package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"club_portal/internal/middleware"
	"club_portal/internal/model"
	"club_portal/internal/service"
)

type ClubHandler struct {
	svc *service.ClubService
}

func NewClubHandler(svc *service.ClubService) *ClubHandler {
	return &ClubHandler{svc: svc}
}

// CreateClubReq category 可以是字符串也可以是数组，数组取第一个
type CreateClubReq struct {
	Name        string         `json:"name" binding:"required"`
	Slug        string         `json:"urlSlug"`
	Description string         `json:"description"`
	Category    model.Category `json:"category"`
	Logo        string         `json:"logo"`
	Banner      string         `json:"banner"`
	ThemeColor  string         `json:"themeColor"`
}

// Create 创建俱乐部
func (h *ClubHandler) Create(c *gin.Context) {
	var req CreateClubReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	club, err := h.svc.CreateClub(c.Request.Context(), middleware.UserID(c), service.CreateClubInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Category:    req.Category,
		Logo:        req.Logo,
		Banner:      req.Banner,
		ThemeColor:  req.ThemeColor,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, club)
}

// List 俱乐部列表，页码分页
func (h *ClubHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListClubs(c.Request.Context(), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list, "page": page, "size": size})
}

func (h *ClubHandler) Detail(c *gin.Context) {
	club, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, club)
}

// Join 加入俱乐部
func (h *ClubHandler) Join(c *gin.Context) {
	changed, err := h.svc.Join(c.Request.Context(), middleware.UserID(c), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// Leave 退出俱乐部
func (h *ClubHandler) Leave(c *gin.Context) {
	changed, err := h.svc.Leave(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}
