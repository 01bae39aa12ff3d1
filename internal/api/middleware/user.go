package middleware

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// UserHeader 使用者分區標頭
	UserHeader = "X-User-ID"
	// DefaultUser 未帶標頭時的分區
	DefaultUser = "default"

	userKey = "user_id"
)

var userPattern = regexp.MustCompile(`^[A-Za-z0-9_.@-]{1,64}$`)

// UserScope 從標頭取得使用者分區
func UserScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := strings.TrimSpace(c.GetHeader(UserHeader))
		if user == "" {
			user = DefaultUser
		}
		if !userPattern.MatchString(user) {
			common.RespondError(c, common.ErrInvalidRequest.WithMessage("invalid "+UserHeader+" header"))
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// UserID 目前請求的使用者分區
func UserID(c *gin.Context) string {
	if v := c.GetString(userKey); v != "" {
		return v
	}
	return DefaultUser
}

// Timeout 為請求加上逾時，處理器未回應時回傳 408
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.Duration("timeout", d),
			)
			common.RespondError(c, common.ErrRequestTimeout)
		}
	}
}
