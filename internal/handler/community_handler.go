package handler

import (
	"net/http"

	"github.com/halit2001/post-platform-backend/internal/model"
	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommunityHandler struct {
	svc *service.CommunityService
}

func NewCommunityHandler(db *gorm.DB) *CommunityHandler {
	return &CommunityHandler{svc: service.NewCommunityService(db)}
}

type CommunityCreateReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Topics      []string `json:"topics"`
	AccessLevel string   `json:"access_level"`
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, pkg.InvalidArgumentf("invalid params"))
		return
	}
	community, err := h.svc.Create(currentUsername(c), req.Name, req.Description, req.Topics, req.AccessLevel)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, communityJSON(community))
}

func (h *CommunityHandler) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	community, err := h.svc.Get(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, communityJSON(community))
}

func (h *CommunityHandler) GetByName(c *gin.Context) {
	community, err := h.svc.GetByName(c.Param("name"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, communityJSON(community))
}

func (h *CommunityHandler) List(c *gin.Context) {
	list, err := h.svc.List(queryInt(c, "page", 1), queryInt(c, "size", 20))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"communities": list})
}

type CommunityUpdateReq struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Topics      []string `json:"topics"`
	AccessLevel *string  `json:"access_level"`
}

func (h *CommunityHandler) Update(c *gin.Context) {
	var req CommunityUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, pkg.InvalidArgumentf("invalid params"))
		return
	}
	community, err := h.svc.Update(c.Param("name"), service.UpdateCommunityRequest{
		Name:        req.Name,
		Description: req.Description,
		Topics:      req.Topics,
		AccessLevel: req.AccessLevel,
	}, currentUsername(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, communityJSON(community))
}

func (h *CommunityHandler) Members(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	members, err := h.svc.Members(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *CommunityHandler) MembersCount(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	count, err := h.svc.MembersCount(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

type AddModeratorReq struct {
	UserID uint64 `json:"user_id"`
}

func (h *CommunityHandler) AddModerator(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req AddModeratorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, pkg.InvalidArgumentf("invalid params"))
		return
	}
	if err := h.svc.AddModerator(id, req.UserID, currentUsername(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func communityJSON(community *model.Community) gin.H {
	return gin.H{
		"id":           community.ID,
		"name":         community.Name,
		"description":  community.Description,
		"topics":       community.TopicList(),
		"access_level": community.AccessLevel,
		"creator_id":   community.CreatorID,
	}
}
