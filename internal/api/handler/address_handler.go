package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/response"
)

type addressRequest struct {
	Type          string `json:"type" binding:"omitempty,oneof=HOME WORK OTHER"`
	FullName      string `json:"fullName" binding:"required,max=120"`
	Phone         string `json:"phone" binding:"required,max=32"`
	Province      string `json:"province" binding:"required"`
	City          string `json:"city" binding:"required"`
	Suburb        string `json:"suburb" binding:"required"`
	StreetAddress string `json:"streetAddress" binding:"required"`
	UnitNumber    string `json:"unitNumber"`
	PostalCode    string `json:"postalCode" binding:"required,max=16"`
	IsDefault     bool   `json:"isDefault"`
}

func (r addressRequest) input() service.AddressInput {
	return service.AddressInput{
		Type:          model.AddressType(r.Type),
		FullName:      r.FullName,
		Phone:         r.Phone,
		Province:      r.Province,
		City:          r.City,
		Suburb:        r.Suburb,
		StreetAddress: r.StreetAddress,
		UnitNumber:    r.UnitNumber,
		PostalCode:    r.PostalCode,
		IsDefault:     r.IsDefault,
	}
}

// ListAddresses 我的收货地址
// @Summary 收货地址列表
// @Tags 地址
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Address}
// @Router /api/addresses [get]
func (h *Handler) ListAddresses(c *gin.Context) {
	list, err := h.addresses.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// CreateAddress 新建地址
// @Summary 新建收货地址
// @Tags 地址
// @Accept json
// @Produce json
// @Param request body addressRequest true "地址"
// @Success 200 {object} response.Response{data=model.Address}
// @Failure 400 {object} response.Response
// @Router /api/addresses [post]
func (h *Handler) CreateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.addresses.Create(c.Request.Context(), userID(c), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, a)
}

// UpdateAddress 修改地址
// @Summary 修改收货地址
// @Tags 地址
// @Accept json
// @Produce json
// @Param id path string true "地址ID"
// @Param request body addressRequest true "地址"
// @Success 200 {object} response.Response{data=model.Address}
// @Failure 404 {object} response.Response
// @Router /api/addresses/{id} [put]
func (h *Handler) UpdateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.addresses.Update(c.Request.Context(), userID(c), c.Param("id"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, a)
}

// DeleteAddress 删除地址
// @Summary 删除收货地址
// @Tags 地址
// @Param id path string true "地址ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/addresses/{id} [delete]
func (h *Handler) DeleteAddress(c *gin.Context) {
	if err := h.addresses.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
