package middleware

import (
	"strings"

	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Query("token")
}

// AuthMiddleware 要求有效 token
func AuthMiddleware(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.Secret, cfg.Issuer)
		if err != nil {
			logger.L().Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		util.SetClaims(c, claims)
		c.Next()
	}
}

// TryAuthMiddleware 有 token 时解析身份，没有或无效时按匿名处理
func TryAuthMiddleware(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := util.ParseJWT(tokenString, cfg.Secret, cfg.Issuer); err == nil {
				util.SetClaims(c, claims)
			}
		}
		c.Next()
	}
}
