package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"club_portal/internal/pkg"
	"club_portal/internal/repository/redis"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "role"
)

// TokenStore 登录态存储，access token 必须与 redis 中一致
type TokenStore interface {
	GetUserToken(ctx context.Context, userID uint64) (string, error)
	ExtendUserToken(ctx context.Context, userID uint64) error
}

// authenticate 返回 claims；失败时给出提示信息
func authenticate(c *gin.Context, tokens TokenStore) (*pkg.Claims, int, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, http.StatusUnauthorized, "missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, http.StatusUnauthorized, "invalid authorization format"
	}
	tokenStr := strings.TrimSpace(parts[1])

	claims, err := pkg.ParseAccess(tokenStr)
	if err != nil {
		return nil, http.StatusUnauthorized, "invalid or expired token"
	}

	// redis校验是否是正确的token
	origin, err := tokens.GetUserToken(c.Request.Context(), claims.UserID)
	if errors.Is(err, redis.ErrRedisUnavailable) {
		zap.L().Error("token store unavailable", zap.Error(err))
		return nil, http.StatusInternalServerError, "internal error"
	}
	if err != nil || origin != tokenStr {
		return nil, http.StatusUnauthorized, "Account has been logging elsewhere"
	}

	// 校验通过后更新过期时间
	if err := tokens.ExtendUserToken(c.Request.Context(), claims.UserID); err != nil {
		zap.L().Warn("extend token ttl failed", zap.Uint64("user_id", claims.UserID), zap.Error(err))
	}
	return claims, http.StatusOK, ""
}

// AuthMiddleware 必须登录
func AuthMiddleware(tokens TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, status, msg := authenticate(c, tokens)
		if claims == nil {
			c.AbortWithStatusJSON(status, gin.H{"msg": msg})
			return
		}

		// 注入 user_id
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// OptionalAuth 令牌缺失或无效时按匿名用户继续
func OptionalAuth(tokens TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		claims, _, msg := authenticate(c, tokens)
		if claims == nil {
			zap.L().Debug("optional auth degraded to anonymous", zap.String("reason", msg))
			c.Next()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// UserID 取当前登录用户，匿名返回 0
func UserID(c *gin.Context) uint64 {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(uint64)
	return id
}
