package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"club_portal/internal/pkg"
)

// fail 业务错误按其状态码返回，其余统一 500 并记录日志
func fail(c *gin.Context, err error) {
	if appErr, ok := pkg.AsAppError(err); ok {
		c.JSON(appErr.Code, gin.H{"msg": appErr.Msg})
		return
	}
	_ = c.Error(err)
	zap.L().Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
}

// paramID 解析路径中的数字 id
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid " + name})
		return 0, false
	}
	return id, true
}
