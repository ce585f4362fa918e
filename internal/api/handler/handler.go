package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/storefront/internal/middleware"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/response"
)

// Services 处理器依赖的业务服务
type Services struct {
	Auth      service.AuthService
	Google    *service.GoogleProvider // 未配置时为 nil
	Catalog   service.CatalogService
	Cart      service.CartService
	Orders    service.OrderService
	Payments  service.PaymentService
	Addresses service.AddressService
	Reviews   service.ReviewService
	Admin     service.AdminService
}

// Options 会话 cookie 与站点信息
type Options struct {
	CookieName   string
	CookieSecure bool
	TokenTTL     time.Duration
	BaseURL      string
	Currency     string
}

// Handler HTTP 处理器集合
type Handler struct {
	auth      service.AuthService
	google    *service.GoogleProvider
	catalog   service.CatalogService
	cart      service.CartService
	orders    service.OrderService
	payments  service.PaymentService
	addresses service.AddressService
	reviews   service.ReviewService
	admin     service.AdminService
	opts      Options
}

func NewHandler(s Services, opts Options) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "session_token"
	}
	return &Handler{
		auth:      s.Auth,
		google:    s.Google,
		catalog:   s.Catalog,
		cart:      s.Cart,
		orders:    s.Orders,
		payments:  s.Payments,
		addresses: s.Addresses,
		reviews:   s.Reviews,
		admin:     s.Admin,
		opts:      opts,
	}
}

// RegisterValidators 注册自定义校验标签 orderstatus / paymentmethod
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	if err := v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
		return model.OrderStatus(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
		// 大小写由 service 统一规范
		m := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
		if m == "" {
			return true
		}
		for _, pm := range model.PaymentMethods {
			if m == pm {
				return true
			}
		}
		return false
	})
}

// Healthz 存活检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "storefront"})
}

// userID 当前登录用户；路由已挂 RequireAuth
func userID(c *gin.Context) string {
	if p := middleware.CurrentPrincipal(c); p != nil {
		return p.UserID
	}
	return ""
}

// fail 把业务错误映射为 HTTP 状态
func fail(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, reason(err))
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrDuplicateSlug), errors.Is(err, service.ErrAddressInUse):
		response.Conflict(c, reason(err))
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrAddressNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		response.NotFound(c, reason(err))
	case errors.As(err, &ve),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPaymentProof),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrCartEmpty):
		response.BadRequest(c, reason(err))
	default:
		response.InternalError(c, err)
	}
}

// bindFailed 绑定失败时按字段返回原因；reasons 的键为 "字段.标签" 或 "字段"
func bindFailed(c *gin.Context, err error, reasons map[string]string, fallback string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if msg, ok := reasons[fe.Field()+"."+fe.Tag()]; ok {
				response.BadRequest(c, msg)
				return
			}
			if msg, ok := reasons[fe.Field()]; ok {
				response.BadRequest(c, msg)
				return
			}
		}
	}
	response.BadRequest(c, fallback)
}

// reason 优先返回 ValidationError 的可读原因
func reason(err error) string {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return err.Error()
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}
