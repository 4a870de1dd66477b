package security

import (
	"context"
	"net/http"
	"sync"
	"time"

	"interview_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORS 中间件 仅允许白名单中的Origin，"*" 表示放行所有来源（不带 Credentials）
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}
	wildcard := originSet["*"]

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case origin != "" && originSet[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		case wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
		}

		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Secure 中间件
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 防止MIME嗅探
		c.Header("X-Content-Type-Options", "nosniff")
		// 防止点击劫持
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按IP限流；ctx 结束时停止清理协程
func RateLimiter(ctx context.Context, maxRequests int, window time.Duration) gin.HandlerFunc {
	if maxRequests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	store := make(map[string]*visitor)
	var mu sync.Mutex

	expiry := window * 3
	if expiry < time.Minute {
		expiry = time.Minute
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mu.Lock()
				for ip, v := range store {
					if time.Since(v.lastSeen) > expiry {
						delete(store, ip)
					}
				}
				mu.Unlock()
			}
		}
	}()

	every := rate.Every(window / time.Duration(maxRequests))

	return func(c *gin.Context) {
		key := c.ClientIP()

		mu.Lock()
		v, ok := store[key]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(every, maxRequests)}
			store[key] = v
		}
		v.lastSeen = time.Now()
		mu.Unlock()

		if !v.limiter.Allow() {
			util.Error(c, http.StatusTooManyRequests, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
