package handler

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/response"
)

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// ListProducts 商品列表
// @Summary 商品列表
// @Tags 商品
// @Produce json
// @Param category query string false "分类 slug"
// @Param q query string false "搜索"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(24)
// @Success 200 {object} response.Response{data=service.ProductList}
// @Router /api/products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	list, err := h.catalog.ListProducts(c.Request.Context(), service.ProductQuery{
		Category: c.Query("category"),
		Search:   c.Query("q"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 24),
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// GetProduct 商品详情
// @Summary 商品详情
// @Tags 商品
// @Produce json
// @Param slug path string true "商品 slug"
// @Success 200 {object} response.Response{data=service.ProductDetail}
// @Failure 404 {object} response.Response
// @Router /api/products/{slug} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	d, err := h.catalog.Product(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, d)
}

// CreateReview 提交评价
// @Summary 提交商品评价
// @Tags 商品
// @Accept json
// @Produce json
// @Param slug path string true "商品 slug"
// @Param request body reviewRequest true "评价"
// @Success 200 {object} response.Response{data=model.ProductReview}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/products/{slug}/reviews [post]
func (h *Handler) CreateReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Rating must be between 1 and 5")
		return
	}
	d, err := h.catalog.Product(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.reviews.Submit(c.Request.Context(), userID(c), d.Product.ID, req.Rating, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, r)
}

// ListCategories 分类列表
// @Summary 分类列表
// @Tags 商品
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Category}
// @Router /api/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// GetCategory 分类及商品
// @Summary 分类详情
// @Tags 商品
// @Produce json
// @Param slug path string true "分类 slug"
// @Success 200 {object} response.Response{data=service.CategoryPage}
// @Failure 404 {object} response.Response
// @Router /api/categories/{slug} [get]
func (h *Handler) GetCategory(c *gin.Context) {
	page, err := h.catalog.Category(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap 站点地图
// @Summary sitemap.xml
// @Tags 系统
// @Produce xml
// @Success 200
// @Router /sitemap.xml [get]
func (h *Handler) Sitemap(c *gin.Context) {
	entries, err := h.catalog.Sitemap(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	base := strings.TrimRight(h.opts.BaseURL, "/")
	set := sitemapURLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, e := range entries {
		u := sitemapURL{Loc: base + e.Path}
		if !e.Modified.IsZero() {
			u.LastMod = e.Modified.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}
	c.XML(http.StatusOK, set)
}

// Robots robots.txt
// @Summary robots.txt
// @Tags 系统
// @Produce plain
// @Success 200 {string} string
// @Router /robots.txt [get]
func (h *Handler) Robots(c *gin.Context) {
	base := strings.TrimRight(h.opts.BaseURL, "/")
	body := "User-agent: *\n" +
		"Allow: /\n" +
		"Disallow: /admin/\n" +
		"Disallow: /api/\n" +
		"Disallow: /checkout\n" +
		"Disallow: /orders\n" +
		"Disallow: /profile\n" +
		"Sitemap: " + base + "/sitemap.xml\n"
	c.String(http.StatusOK, body)
}
