package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/logger"
	"github.com/d60-Lab/storefront/pkg/response"
)

const oauthStateCookie = "oauth_state"

type registerRequest struct {
	Name     string `json:"name" form:"name" binding:"required,max=120"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Phone    string `json:"phone" form:"phone" binding:"max=32"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type profileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=120"`
	Phone *string `json:"phone" binding:"omitempty,max=32"`
	Image *string `json:"image" binding:"omitempty,max=512"`
}

func (h *Handler) setSession(c *gin.Context, s *service.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, s.Token, int(h.opts.TokenTTL.Seconds()), "/", "", h.opts.CookieSecure, true)
}

// Register 注册
// @Summary 邮箱注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 200 {object} response.Response{data=service.Session}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sess, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.setSession(c, sess)
	response.Success(c, sess)
}

// Login 邮箱密码登录
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response{data=service.Session}
// @Failure 401 {object} response.Response
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sess, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.setSession(c, sess)
	response.Success(c, sess)
}

// Logout 清除会话 cookie
// @Summary 退出登录
// @Tags 认证
// @Success 200 {object} response.Response
// @Router /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(h.opts.CookieName, "", -1, "/", "", h.opts.CookieSecure, true)
	response.Success(c, nil)
}

// GoogleLogin 跳转 Google 授权
// @Summary Google 登录
// @Tags 认证
// @Param callbackUrl query string false "登录后跳转地址"
// @Success 302
// @Failure 404 {object} response.Response
// @Router /api/auth/google/login [get]
func (h *Handler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		response.NotFound(c, "Google sign-in is not configured")
		return
	}
	state, err := randomState()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	// state 与登录后的跳转地址一起保存在短期 cookie 中
	value := state + "|" + safeCallback(c.Query("callbackUrl"))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, value, 600, "/", "", h.opts.CookieSecure, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// GoogleCallback Google 授权回调
// @Summary Google 登录回调
// @Tags 认证
// @Param state query string true "state"
// @Param code query string true "授权码"
// @Success 302
// @Failure 400 {object} response.Response
// @Router /api/auth/google/callback [get]
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		response.NotFound(c, "Google sign-in is not configured")
		return
	}
	stored, _ := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.opts.CookieSecure, true)
	state, callback, _ := strings.Cut(stored, "|")
	if state == "" || c.Query("state") != state {
		response.BadRequest(c, "Invalid OAuth state")
		return
	}
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "Missing authorization code")
		return
	}
	id, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.Warn("google exchange failed", zap.Error(err))
		response.Unauthorized(c, "Google sign-in failed")
		return
	}
	sess, err := h.auth.SignInFederated(c.Request.Context(), *id)
	if err != nil {
		fail(c, err)
		return
	}
	h.setSession(c, sess)
	c.Redirect(http.StatusFound, safeCallback(callback))
}

// GetProfile 个人资料
// @Summary 获取个人资料
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=model.User}
// @Failure 401 {object} response.Response
// @Router /api/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.auth.Profile(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, u)
}

// UpdateProfile 修改个人资料
// @Summary 修改个人资料
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body profileRequest true "资料"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Router /api/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.auth.UpdateProfile(c.Request.Context(), userID(c), service.ProfileInput{
		Name:  req.Name,
		Phone: req.Phone,
		Image: req.Image,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, u)
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// safeCallback 只允许站内相对路径
func safeCallback(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || raw == "" || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	return u.RequestURI()
}
