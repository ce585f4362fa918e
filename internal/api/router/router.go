package router

import (
	"html/template"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/storefront/config"
	"github.com/d60-Lab/storefront/internal/api/handler"
	"github.com/d60-Lab/storefront/internal/middleware"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/web"
)

// Options 路由装配参数
type Options struct {
	Mode       string
	CookieName string
	UploadURL  string
	Tracing    config.TracingConfig
	RateLimit  config.RateLimitConfig
	Templates  *template.Template // nil 时使用内嵌模板
	EnableDocs bool
}

// New 组装全部路由与中间件
func New(h *handler.Handler, auth service.AuthService, opts Options) (*gin.Engine, error) {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.ReportErrors())
	if opts.Tracing.Enabled {
		r.Use(otelgin.Middleware(opts.Tracing.ServiceName))
	}
	r.Use(middleware.Logger())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/uploads/"})))
	r.Use(middleware.Auth(auth, opts.CookieName))

	tmpl := opts.Templates
	if tmpl == nil {
		var err error
		if tmpl, err = web.Templates(); err != nil {
			return nil, err
		}
	}
	r.SetHTMLTemplate(tmpl)

	r.StaticFS("/static", http.FS(web.Static()))
	uploads := opts.UploadURL
	if uploads == "" {
		uploads = "/uploads"
	}
	// 上传目录只有付款凭证，按订单归属鉴权后再返回文件
	r.GET(uploads+"/*filepath", middleware.RequireAuth(), h.PaymentProofFile)
	if opts.EnableDocs {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/sitemap.xml", h.Sitemap)
	r.GET("/robots.txt", h.Robots)

	registerAPI(r, h, opts)
	registerPages(r, h)
	r.NoRoute(h.NoRoute)
	return r, nil
}

func registerAPI(r *gin.Engine, h *handler.Handler, opts Options) {
	api := r.Group("/api")

	authAPI := api.Group("/auth")
	if opts.RateLimit.Enabled {
		authAPI.Use(middleware.NewIPRateLimiter(opts.RateLimit.RPS, opts.RateLimit.Burst).Middleware())
	}
	{
		authAPI.POST("/register", h.Register)
		authAPI.POST("/login", h.Login)
		authAPI.POST("/logout", h.Logout)
		authAPI.GET("/google/login", h.GoogleLogin)
		authAPI.GET("/google/callback", h.GoogleCallback)
	}

	// 目录公开
	api.GET("/products", h.ListProducts)
	api.GET("/products/:slug", h.GetProduct)
	api.GET("/categories", h.ListCategories)
	api.GET("/categories/:slug", h.GetCategory)
	api.GET("/payment/bank-details", h.BankDetails)

	user := api.Group("", middleware.RequireAuth())
	{
		user.POST("/products/:slug/reviews", h.CreateReview)

		user.GET("/profile", h.GetProfile)
		user.PUT("/profile", h.UpdateProfile)

		user.GET("/cart", h.GetCart)
		user.POST("/cart", h.AddToCart)
		user.PUT("/cart", h.UpdateCart)
		user.DELETE("/cart", h.RemoveFromCart)

		user.GET("/addresses", h.ListAddresses)
		user.POST("/addresses", h.CreateAddress)
		user.PUT("/addresses/:id", h.UpdateAddress)
		user.DELETE("/addresses/:id", h.DeleteAddress)

		user.GET("/orders", h.ListOrders)
		user.POST("/orders", h.PlaceOrder)
		user.POST("/orders/payment-proof", h.UploadPaymentProof)
		user.GET("/orders/:id", h.GetOrder)
	}

	admin := api.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/dashboard", h.AdminDashboard)
		admin.GET("/orders", h.AdminListOrders)
		admin.GET("/orders/:id", h.AdminGetOrder)
		admin.PATCH("/orders/:id", h.AdminUpdateOrder)
		admin.GET("/products", h.AdminListProducts)
		admin.POST("/products", h.AdminCreateProduct)
		admin.PUT("/products/:id", h.AdminUpdateProduct)
		admin.PATCH("/products/:id/active", h.AdminSetProductActive)
	}
}

func registerPages(r *gin.Engine, h *handler.Handler) {
	r.GET("/", h.HomePage)
	r.GET("/categories", h.CategoriesPage)
	r.GET("/categories/:slug", h.CategoryPage)
	r.GET("/products/:slug", h.ProductPage)
	r.GET("/cart", h.CartPage)
	r.GET("/auth/signin", h.SignInPage)
	r.GET("/auth/register", h.RegisterPage)

	pages := r.Group("", middleware.RequirePageAuth())
	{
		pages.GET("/checkout", h.CheckoutPage)
		pages.GET("/orders", h.OrdersPage)
		pages.GET("/orders/:id", h.OrderPage(false))
		pages.GET("/orders/:id/confirm", h.OrderPage(true))
		pages.GET("/profile", h.ProfilePage)
	}

	adminPages := r.Group("/admin", middleware.RequirePageAdmin())
	{
		adminPages.GET("", h.AdminDashboardPage)
		adminPages.GET("/orders", h.AdminOrdersPage)
		adminPages.GET("/orders/:id", h.AdminOrderPage)
		adminPages.GET("/products", h.AdminProductsPage)
	}
}
