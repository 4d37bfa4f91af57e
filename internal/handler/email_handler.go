package handler

import (
	"net/http"

	"github.com/halit2001/post-platform-backend/internal/pkg"
	"github.com/halit2001/post-platform-backend/internal/service"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

type EmailHandler struct {
	svc *service.EmailService
}

func NewEmailHandler(cfg pkg.SMTPConfig, rdb *goredis.Client) *EmailHandler {
	return &EmailHandler{svc: service.NewEmailService(cfg, rdb)}
}

type SendCodeReq struct {
	Email string `json:"email"`
}

func (h *EmailHandler) SendCode(c *gin.Context) {
	var req SendCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, pkg.InvalidArgumentf("invalid params"))
		return
	}
	if err := h.svc.SendCode(c.Request.Context(), c.Param("scope"), req.Email); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
