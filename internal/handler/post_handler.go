package handler

import (
	"net/http"

	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct {
	svc *service.PostService
}

func NewPostHandler(db *gorm.DB) *PostHandler {
	return &PostHandler{svc: service.NewPostService(db)}
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	post, err := h.svc.Get(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) ListByCommunity(c *gin.Context) {
	communityID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.ListByCommunity(communityID, currentUserID(c), queryInt(c, "page", 1), queryInt(c, "size", 20))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": list})
}

type PostUpdateReq struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req PostUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, pkg.InvalidArgumentf("invalid params"))
		return
	}
	post, err := h.svc.Update(id, currentUserID(c), service.UpdatePostRequest{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(id, currentUserID(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *PostHandler) Revisions(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	chain, err := h.svc.Revisions(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revisions": chain})
}

func (h *PostHandler) ApproveRevision(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	post, err := h.svc.ApproveRevision(id, currentUsername(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
