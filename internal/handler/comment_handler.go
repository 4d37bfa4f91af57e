package handler

import (
	"net/http"

	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct {
	svc *service.CommentService
}

func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{svc: service.NewCommentService(db)}
}

type CommentReq struct {
	Content string `json:"content"`
}

func (h *CommentHandler) Add(c *gin.Context) {
	postID, ok := paramUint(c, "postId")
	if !ok {
		return
	}
	var req CommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, pkg.InvalidArgumentf("invalid params"))
		return
	}
	comment, err := h.svc.Add(postID, currentUserID(c), req.Content)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Reply(c *gin.Context) {
	postID, ok := paramUint(c, "postId")
	if !ok {
		return
	}
	parentID, ok := paramUint(c, "commentId")
	if !ok {
		return
	}
	var req CommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, pkg.InvalidArgumentf("invalid params"))
		return
	}
	comment, err := h.svc.Reply(postID, parentID, currentUserID(c), req.Content)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Get(c *gin.Context) {
	commentID, ok := paramUint(c, "commentId")
	if !ok {
		return
	}
	tree, err := h.svc.Get(commentID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// ListByPost sort 参数取 new/old/top
func (h *CommentHandler) ListByPost(c *gin.Context) {
	postID, ok := paramUint(c, "postId")
	if !ok {
		return
	}
	list, err := h.svc.ListByPost(postID, c.DefaultQuery("sort", "new"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": list})
}

func (h *CommentHandler) Like(c *gin.Context) {
	postID, ok := paramUint(c, "postId")
	if !ok {
		return
	}
	commentID, ok := paramUint(c, "commentId")
	if !ok {
		return
	}
	count, err := h.svc.Like(c.Request.Context(), currentUserID(c), postID, commentID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"like_count": count})
}

func (h *CommentHandler) Unlike(c *gin.Context) {
	postID, ok := paramUint(c, "postId")
	if !ok {
		return
	}
	commentID, ok := paramUint(c, "commentId")
	if !ok {
		return
	}
	count, err := h.svc.Unlike(c.Request.Context(), currentUserID(c), postID, commentID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unlike_count": count})
}
