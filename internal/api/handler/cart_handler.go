package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storefront/pkg/response"
)

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type updateCartRequest struct {
	CartItemID string `json:"cartItemId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
}

type removeCartRequest struct {
	CartItemID string `json:"cartItemId" form:"cartItemId" binding:"required"`
}

// GetCart 购物车
// @Summary 获取购物车
// @Tags 购物车
// @Produce json
// @Success 200 {object} response.Response{data=service.CartView}
// @Failure 401 {object} response.Response
// @Router /api/cart [get]
func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.cart.Get(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// AddToCart 加入购物车；已存在时累加数量
// @Summary 加入购物车
// @Tags 购物车
// @Accept json
// @Produce json
// @Param request body addToCartRequest true "商品与数量"
// @Success 200 {object} response.Response{data=model.CartItem}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/cart [post]
func (h *Handler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Product ID and quantity are required")
		return
	}
	line, err := h.cart.Add(c.Request.Context(), userID(c), req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, line)
}

// UpdateCart 修改数量
// @Summary 修改购物车数量
// @Tags 购物车
// @Accept json
// @Produce json
// @Param request body updateCartRequest true "购物车行与数量"
// @Success 200 {object} response.Response{data=model.CartItem}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/cart [put]
func (h *Handler) UpdateCart(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cart item ID and quantity are required")
		return
	}
	line, err := h.cart.Update(c.Request.Context(), userID(c), req.CartItemID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, line)
}

// RemoveFromCart 删除购物车行（body 或 query 中的 cartItemId）
// @Summary 删除购物车行
// @Tags 购物车
// @Param cartItemId query string false "购物车行ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/cart [delete]
func (h *Handler) RemoveFromCart(c *gin.Context) {
	var req removeCartRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}
	if req.CartItemID == "" {
		req.CartItemID = c.Query("cartItemId")
	}
	if req.CartItemID == "" {
		response.BadRequest(c, "Cart item ID is required")
		return
	}
	if err := h.cart.Remove(c.Request.Context(), userID(c), req.CartItemID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
