package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storefront/internal/middleware"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/response"
)

type placeOrderRequest struct {
	AddressID     string `json:"addressId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"paymentmethod"`
	Notes         string `json:"notes" binding:"max=1000"`
}

var placeOrderReasons = map[string]string{
	"AddressID":     "Delivery address is required",
	"PaymentMethod": "Unsupported payment method",
	"Notes":         "Notes must be at most 1000 characters",
}

// ListOrders 我的订单
// @Summary 我的订单
// @Tags 订单
// @Produce json
// @Param status query string false "订单状态"
// @Success 200 {object} response.Response{data=[]model.Order}
// @Router /api/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.orders.ListForUser(c.Request.Context(), userID(c), model.OrderStatus(c.Query("status")))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// PlaceOrder 下单：校验购物车、扣库存、清空购物车在一个事务内完成
// @Summary 下单
// @Tags 订单
// @Accept json
// @Produce json
// @Param request body placeOrderRequest true "地址与支付方式"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/orders [post]
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, placeOrderReasons, "Invalid request body")
		return
	}
	order, err := h.orders.PlaceOrder(c.Request.Context(), userID(c), service.PlaceOrderInput{
		AddressID:     req.AddressID,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "Order placed successfully", order)
}

// GetOrder 订单详情（仅本人）
// @Summary 订单详情
// @Tags 订单
// @Produce json
// @Param id path string true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 404 {object} response.Response
// @Router /api/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetForUser(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, order)
}

// UploadPaymentProof 上传付款凭证
// @Summary 上传付款凭证
// @Tags 订单
// @Accept multipart/form-data
// @Produce json
// @Param paymentProof formData file true "凭证图片（≤5MB）"
// @Param orderId formData string true "订单ID"
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/orders/payment-proof [post]
func (h *Handler) UploadPaymentProof(c *gin.Context) {
	limit := h.payments.BankDetails().MaxUploadBytes
	// multipart 开销之外多留 1MB
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fh, err := c.FormFile("paymentProof")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(c, fmt.Sprintf("File size must be less than %dMB", limit>>20))
			return
		}
		response.BadRequest(c, "File and order ID are required")
		return
	}
	orderID := c.PostForm("orderId")
	f, err := fh.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()

	path, err := h.payments.UploadProof(c.Request.Context(), userID(c), service.ProofUpload{
		OrderID:     orderID,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "Payment proof uploaded successfully", gin.H{"path": path})
}

// BankDetails 银行转账信息
// @Summary 银行转账信息
// @Tags 订单
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/payment/bank-details [get]
func (h *Handler) BankDetails(c *gin.Context) {
	cfg := h.payments.BankDetails()
	response.Success(c, gin.H{
		"bankName":      cfg.BankName,
		"accountName":   cfg.AccountName,
		"accountNumber": cfg.AccountNumber,
		"branchCode":    cfg.BranchCode,
	})
}

// PaymentProofFile 下载付款凭证，仅订单本人或管理员
// @Summary 下载付款凭证
// @Tags 订单
// @Produce octet-stream
// @Param filepath path string true "凭证路径"
// @Success 200 {file} file
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /uploads/{filepath} [get]
func (h *Handler) PaymentProofFile(c *gin.Context) {
	rel := path.Clean(c.Request.URL.Path)
	f, err := h.payments.OpenProof(c.Request.Context(), middleware.CurrentPrincipal(c), rel)
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()
	c.Header("Cache-Control", "private, no-store")
	http.ServeContent(c.Writer, c.Request, path.Base(rel), time.Time{}, f)
}
