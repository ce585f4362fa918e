package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/pkg/logger"
	"github.com/d60-Lab/storefront/pkg/response"
)

// Recovery 捕获 panic，记录日志并上报 Sentry（未配置 DSN 时上报为空操作）
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if p := CurrentPrincipal(c); p != nil {
				hub.Scope().SetUser(sentry.User{ID: p.UserID, Email: p.Email})
			}
			hub.RecoverWithContext(c.Request.Context(), rec)
			logger.Error("panic recovered",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("panic", fmt.Sprint(rec)),
				zap.Stack("stack"),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.Error(c, http.StatusInternalServerError, "Internal server error")
		}()
		c.Next()
	}
}

// ReportErrors 把处理过程中记录的 500 错误上报 Sentry
func ReportErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusInternalServerError || len(c.Errors) == 0 {
			return
		}
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		hub.Scope().SetTag("route", c.FullPath())
		for _, e := range c.Errors {
			hub.CaptureException(e.Err)
		}
	}
}
