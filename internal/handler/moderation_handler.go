package handler

import (
	"net/http"

	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/service"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type ModerationHandler struct {
	svc *service.ModerationService
}

func NewModerationHandler(db *gorm.DB, rdb *goredis.Client) *ModerationHandler {
	return &ModerationHandler{svc: service.NewModerationService(db, rdb)}
}

// RequestToJoin 公开社区直接入会，私有社区排队等审批
func (h *ModerationHandler) RequestToJoin(c *gin.Context) {
	communityID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	joined, req, err := h.svc.RequestToJoin(c.Request.Context(), communityID, currentUserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	if joined {
		c.JSON(http.StatusOK, gin.H{"status": "joined"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "pending", "request": req})
}

func (h *ModerationHandler) ListJoinRequests(c *gin.Context) {
	communityID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.ListPendingJoinRequests(c.Request.Context(), communityID, currentUsername(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *ModerationHandler) ApproveJoin(c *gin.Context) {
	communityID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "userId")
	if !ok {
		return
	}
	audit, err := h.svc.ApproveJoinRequest(c.Request.Context(), communityID, userID, currentUsername(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok", "audit_id": audit.ID})
}

func (h *ModerationHandler) RejectJoin(c *gin.Context) {
	communityID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "userId")
	if !ok {
		return
	}
	audit, err := h.svc.RejectJoinRequest(c.Request.Context(), communityID, userID, currentUsername(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok", "audit_id": audit.ID})
}

type SubmitPostReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SubmitPost 公开社区或版主直接发 active 帖子，私有社区普通成员进待审队列
func (h *ModerationHandler) SubmitPost(c *gin.Context) {
	communityID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req SubmitPostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, pkg.InvalidArgumentf("invalid params"))
		return
	}
	post, pending, err := h.svc.SubmitPost(c.Request.Context(), communityID, currentUsername(c), req.Title, req.Content)
	if err != nil {
		respondErr(c, err)
		return
	}
	if post != nil {
		c.JSON(http.StatusOK, gin.H{"status": "active", "post": post})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "pending", "request": pending})
}

func (h *ModerationHandler) ListPendingPosts(c *gin.Context) {
	communityID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.ListPendingPosts(c.Request.Context(), communityID, currentUsername(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *ModerationHandler) ApprovePost(c *gin.Context) {
	communityID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	post, err := h.svc.ApprovePostRequest(c.Request.Context(), communityID, c.Param("token"), currentUsername(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok", "post": post})
}

func (h *ModerationHandler) RejectPost(c *gin.Context) {
	communityID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RejectPostRequest(c.Request.Context(), communityID, c.Param("token"), currentUsername(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
