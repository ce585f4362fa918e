package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/response"
)

type updateOrderStatusRequest struct {
	Status         string `json:"status" binding:"required,orderstatus"`
	TrackingNumber string `json:"trackingNumber" binding:"max=64"`
}

var updateOrderStatusReasons = map[string]string{
	"Status.required": "Status is required",
	"Status":          "Invalid status",
	"TrackingNumber":  "Tracking number must be at most 64 characters",
}

type productRequest struct {
	Name          string           `json:"name" binding:"required,max=255"`
	Slug          string           `json:"slug" binding:"max=255"`
	Description   string           `json:"description"`
	SKU           string           `json:"sku" binding:"required,max=100"`
	Barcode       string           `json:"barcode" binding:"max=64"`
	Price         decimal.Decimal  `json:"price"`
	ComparePrice  *decimal.Decimal `json:"comparePrice"`
	CostPrice     *decimal.Decimal `json:"costPrice"`
	Weight        *decimal.Decimal `json:"weight"`
	Stock         int              `json:"stock" binding:"min=0"`
	LowStockAlert int              `json:"lowStockAlert" binding:"min=0"`
	Images        []string         `json:"images"`
	Features      []string         `json:"features"`
	Dimensions    string           `json:"dimensions"`
	IsActive      *bool            `json:"isActive"`
	IsFeatured    bool             `json:"isFeatured"`
	CategoryID    string           `json:"categoryId" binding:"required"`
}

type productActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func (r productRequest) input() service.ProductInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return service.ProductInput{
		Name:          r.Name,
		Slug:          r.Slug,
		Description:   r.Description,
		SKU:           r.SKU,
		Barcode:       r.Barcode,
		Price:         r.Price,
		ComparePrice:  nullDecimal(r.ComparePrice),
		CostPrice:     nullDecimal(r.CostPrice),
		Weight:        nullDecimal(r.Weight),
		Stock:         r.Stock,
		LowStockAlert: r.LowStockAlert,
		Images:        r.Images,
		Features:      r.Features,
		Dimensions:    r.Dimensions,
		IsActive:      active,
		IsFeatured:    r.IsFeatured,
		CategoryID:    r.CategoryID,
	}
}

// AdminDashboard 后台首页统计
// @Summary 后台统计
// @Tags 后台
// @Produce json
// @Success 200 {object} response.Response{data=service.Dashboard}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/admin/dashboard [get]
func (h *Handler) AdminDashboard(c *gin.Context) {
	d, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, d)
}

// AdminListOrders 后台订单列表
// @Summary 后台订单列表
// @Tags 后台
// @Produce json
// @Param status query string false "订单状态"
// @Param search query string false "订单号 / 用户名 / 邮箱"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/admin/orders [get]
func (h *Handler) AdminListOrders(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	status := model.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		response.BadRequest(c, "Invalid status")
		return
	}
	ctx := c.Request.Context()
	orders, total, err := h.admin.ListOrders(ctx, repository.OrderFilter{
		Status: status,
		Search: c.Query("search"),
		Offset: (page - 1) * size,
		Limit:  size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	stats, err := h.admin.OrderStats(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": size, "total": total, "list": orders, "stats": stats})
}

// AdminGetOrder 后台订单详情
// @Summary 后台订单详情
// @Tags 后台
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 404 {object} response.Response
// @Router /api/admin/orders/{id} [get]
func (h *Handler) AdminGetOrder(c *gin.Context) {
	o, err := h.admin.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, o)
}

// AdminUpdateOrder 修改订单状态
// @Summary 修改订单状态
// @Tags 后台
// @Accept json
// @Produce json
// @Param id path string true "订单ID"
// @Param request body updateOrderStatusRequest true "状态与物流单号"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/admin/orders/{id} [patch]
func (h *Handler) AdminUpdateOrder(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, updateOrderStatusReasons, "Invalid request body")
		return
	}
	o, err := h.admin.UpdateOrderStatus(c.Request.Context(), c.Param("id"), model.OrderStatus(req.Status), req.TrackingNumber)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "Order updated successfully", o)
}

// AdminListProducts 后台商品列表
// @Summary 后台商品列表
// @Tags 后台
// @Produce json
// @Param category query string false "分类ID"
// @Param status query string false "active / inactive / all"
// @Param search query string false "名称 / SKU"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.ProductPage}
// @Router /api/admin/products [get]
func (h *Handler) AdminListProducts(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	res, err := h.admin.ListProducts(c.Request.Context(), repository.ProductFilter{
		CategoryID: c.Query("category"),
		Status:     c.Query("status"),
		Search:     c.Query("search"),
		Offset:     (page - 1) * size,
		Limit:      size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// AdminCreateProduct 新建商品
// @Summary 新建商品
// @Tags 后台
// @Accept json
// @Produce json
// @Param request body productRequest true "商品"
// @Success 200 {object} response.Response{data=model.Product}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/admin/products [post]
func (h *Handler) AdminCreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.admin.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// AdminUpdateProduct 修改商品
// @Summary 修改商品
// @Tags 后台
// @Accept json
// @Produce json
// @Param id path string true "商品ID"
// @Param request body productRequest true "商品"
// @Success 200 {object} response.Response{data=model.Product}
// @Failure 404 {object} response.Response
// @Router /api/admin/products/{id} [put]
func (h *Handler) AdminUpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.admin.UpdateProduct(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// AdminSetProductActive 上下架
// @Summary 商品上下架
// @Tags 后台
// @Accept json
// @Param id path string true "商品ID"
// @Param request body productActiveRequest true "是否上架"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/admin/products/{id}/active [patch]
func (h *Handler) AdminSetProductActive(c *gin.Context) {
	var req productActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "isActive is required")
		return
	}
	if err := h.admin.SetProductActive(c.Request.Context(), c.Param("id"), *req.IsActive); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
