package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/logger"
	"github.com/d60-Lab/storefront/pkg/response"
)

const principalKey = "storefront.principal"

// SignInPath 登录页
const SignInPath = "/auth/signin"

// Auth 解析会话令牌（cookie 或 Bearer），成功时把调用者放入请求上下文；不拦截匿名请求
func Auth(auth service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			raw, _ = c.Cookie(cookieName)
		}
		if raw != "" {
			p, err := auth.Authenticate(c.Request.Context(), raw)
			switch {
			case err == nil:
				c.Set(principalKey, p)
			case errors.Is(err, service.ErrUnauthorized):
				// 过期或失效的令牌按匿名处理
			default:
				logger.Warn("authenticate failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			}
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// CurrentPrincipal 当前调用者，未登录时为 nil
func CurrentPrincipal(c *gin.Context) *service.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*service.Principal)
	return p
}

// RequireAuth 接口需要登录，否则 401
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c) == nil {
			response.Unauthorized(c, "Unauthorized")
			return
		}
		c.Next()
	}
}

// RequireAdmin 接口需要管理员：未登录 401，非管理员 403
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			response.Unauthorized(c, "Unauthorized")
			return
		}
		if !p.IsAdmin() {
			response.Forbidden(c, "Forbidden")
			return
		}
		c.Next()
	}
}

// RequirePageAuth 页面需要登录，否则跳转登录页
func RequirePageAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c) == nil {
			redirectToSignIn(c)
			return
		}
		c.Next()
	}
}

// RequirePageAdmin 后台页面，非管理员跳转登录页
func RequirePageAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentPrincipal(c).IsAdmin() {
			redirectToSignIn(c)
			return
		}
		c.Next()
	}
}

func redirectToSignIn(c *gin.Context) {
	target := SignInPath + "?callbackUrl=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}
