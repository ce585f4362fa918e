package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/internal/middleware"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/logger"
	"github.com/d60-Lab/storefront/pkg/response"
)

// render 渲染页面并带上公共数据
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	p := middleware.CurrentPrincipal(c)
	data["User"] = p
	if p != nil {
		if n, err := h.cart.Count(c.Request.Context(), p.UserID); err == nil {
			data["CartCount"] = n
		}
	}
	data["Currency"] = h.opts.Currency
	data["Year"] = time.Now().Year()
	data["Path"] = c.Request.URL.Path
	if _, ok := data["Title"]; !ok {
		data["Title"] = "Storefront"
	}
	c.HTML(status, name, data)
}

// degrade 页面取数失败时记录日志，按空数据渲染
func degrade(c *gin.Context, what string, err error) {
	logger.Warn("page data fetch failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("what", what),
		zap.Error(err),
	)
}

func (h *Handler) notFoundPage(c *gin.Context) {
	h.render(c, http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
}

// HomePage 首页
func (h *Handler) HomePage(c *gin.Context) {
	home, err := h.catalog.Home(c.Request.Context())
	if err != nil {
		degrade(c, "home", err)
		home = &service.HomePage{}
	}
	h.render(c, http.StatusOK, "home.html", gin.H{"Home": home})
}

// CategoriesPage 分类列表
func (h *Handler) CategoriesPage(c *gin.Context) {
	cats, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		degrade(c, "categories", err)
	}
	h.render(c, http.StatusOK, "categories.html", gin.H{"Title": "Categories", "Categories": cats})
}

// CategoryPage 分类页
func (h *Handler) CategoryPage(c *gin.Context) {
	page, err := h.catalog.Category(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if err == service.ErrCategoryNotFound {
			h.notFoundPage(c)
			return
		}
		degrade(c, "category", err)
		page = &service.CategoryPage{Category: &model.Category{Name: "Category"}}
	}
	h.render(c, http.StatusOK, "category.html", gin.H{"Title": page.Category.Name, "Page": page})
}

// ProductPage 商品详情页
func (h *Handler) ProductPage(c *gin.Context) {
	d, err := h.catalog.Product(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if err != service.ErrProductNotFound {
			degrade(c, "product", err)
		}
		h.notFoundPage(c)
		return
	}
	h.render(c, http.StatusOK, "product.html", gin.H{"Title": d.Product.Name, "Detail": d})
}

// CartPage 购物车页
func (h *Handler) CartPage(c *gin.Context) {
	data := gin.H{"Title": "Cart"}
	if uid := userID(c); uid != "" {
		view, err := h.cart.Get(c.Request.Context(), uid)
		if err != nil {
			degrade(c, "cart", err)
		}
		data["Cart"] = view
	}
	h.render(c, http.StatusOK, "cart.html", data)
}

// CheckoutPage 结算页；购物车为空时回到购物车
func (h *Handler) CheckoutPage(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.cart.Get(ctx, userID(c))
	if err != nil || len(view.Items) == 0 {
		if err != nil {
			degrade(c, "cart", err)
		}
		c.Redirect(http.StatusFound, "/cart")
		return
	}
	addrs, err := h.addresses.List(ctx, userID(c))
	if err != nil {
		degrade(c, "addresses", err)
	}
	h.render(c, http.StatusOK, "checkout.html", gin.H{
		"Title":          "Checkout",
		"Cart":           view,
		"Addresses":      addrs,
		"PaymentMethods": model.PaymentMethods,
	})
}

// OrdersPage 我的订单
func (h *Handler) OrdersPage(c *gin.Context) {
	orders, err := h.orders.ListForUser(c.Request.Context(), userID(c), "")
	if err != nil {
		degrade(c, "orders", err)
	}
	h.render(c, http.StatusOK, "orders.html", gin.H{"Title": "My orders", "Orders": orders})
}

// OrderPage 订单详情页；confirm 为下单后的确认页
func (h *Handler) OrderPage(confirm bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := h.orders.GetForUser(c.Request.Context(), c.Param("id"), userID(c))
		if err != nil {
			if err != service.ErrOrderNotFound {
				degrade(c, "order", err)
			}
			h.notFoundPage(c)
			return
		}
		h.render(c, http.StatusOK, "order.html", gin.H{
			"Title":   "Order " + o.OrderNumber,
			"Order":   o,
			"Confirm": confirm,
			"Bank":    h.payments.BankDetails(),
		})
	}
}

// ProfilePage 个人资料页
func (h *Handler) ProfilePage(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := h.auth.Profile(ctx, userID(c))
	if err != nil {
		degrade(c, "profile", err)
	}
	addrs, err := h.addresses.List(ctx, userID(c))
	if err != nil {
		degrade(c, "addresses", err)
	}
	h.render(c, http.StatusOK, "profile.html", gin.H{"Title": "Profile", "Profile": u, "Addresses": addrs})
}

// SignInPage 登录页
func (h *Handler) SignInPage(c *gin.Context) {
	h.render(c, http.StatusOK, "signin.html", gin.H{
		"Title":         "Sign in",
		"CallbackURL":   safeCallback(c.Query("callbackUrl")),
		"GoogleEnabled": h.google != nil,
	})
}

// RegisterPage 注册页
func (h *Handler) RegisterPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Create account"})
}

// AdminDashboardPage 后台首页
func (h *Handler) AdminDashboardPage(c *gin.Context) {
	d, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		degrade(c, "dashboard", err)
		d = &service.Dashboard{}
	}
	h.render(c, http.StatusOK, "admin_dashboard.html", gin.H{"Title": "Dashboard", "Dashboard": d})
}

// AdminOrdersPage 后台订单列表
func (h *Handler) AdminOrdersPage(c *gin.Context) {
	ctx := c.Request.Context()
	status := model.OrderStatus(c.Query("status"))
	if !status.Valid() {
		status = ""
	}
	orders, _, err := h.admin.ListOrders(ctx, repository.OrderFilter{Status: status, Search: c.Query("search"), Limit: 50})
	if err != nil {
		degrade(c, "orders", err)
	}
	stats, err := h.admin.OrderStats(ctx)
	if err != nil {
		degrade(c, "order stats", err)
		stats = &service.OrderStats{}
	}
	h.render(c, http.StatusOK, "admin_orders.html", gin.H{
		"Title":    "Orders",
		"Orders":   orders,
		"Stats":    stats,
		"Statuses": model.OrderStatuses,
		"Status":   string(status),
		"Search":   c.Query("search"),
	})
}

// AdminOrderPage 后台订单详情
func (h *Handler) AdminOrderPage(c *gin.Context) {
	o, err := h.admin.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err != service.ErrOrderNotFound {
			degrade(c, "order", err)
		}
		h.notFoundPage(c)
		return
	}
	h.render(c, http.StatusOK, "admin_order.html", gin.H{
		"Title":    "Order " + o.OrderNumber,
		"Order":    o,
		"Statuses": model.OrderStatuses,
	})
}

// AdminProductsPage 后台商品列表
func (h *Handler) AdminProductsPage(c *gin.Context) {
	page, err := h.admin.ListProducts(c.Request.Context(), repository.ProductFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Limit:  50,
	})
	if err != nil {
		degrade(c, "products", err)
		page = &service.ProductPage{Stats: &repository.ProductStats{}}
	}
	h.render(c, http.StatusOK, "admin_products.html", gin.H{"Title": "Products", "Products": page, "Search": c.Query("search")})
}

// NoRoute 未匹配的路由：接口返回 JSON，页面渲染 404
func (h *Handler) NoRoute(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		response.NotFound(c, "Not found")
		return
	}
	h.notFoundPage(c)
}
