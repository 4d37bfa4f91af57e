package handler

import (
	"strconv"

	"github.com/halit2001/post-platform-backend/internal/pkg"

	"github.com/gin-gonic/gin"
)

// respondErr 按领域错误分类映射状态码
func respondErr(c *gin.Context, err error) {
	c.JSON(pkg.HTTPStatus(err), gin.H{"msg": err.Error()})
}

func currentUserID(c *gin.Context) uint64 {
	v, _ := c.Get("user_id")
	id, _ := v.(uint64)
	return id
}

func currentUsername(c *gin.Context) string {
	v, _ := c.Get("username")
	name, _ := v.(string)
	return name
}

func paramUint(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondErr(c, pkg.InvalidArgumentf("invalid %s", name))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return n
}
