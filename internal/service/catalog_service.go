package service

import (
	"context"
	"strings"
	"time"

	"github.com/d60-Lab/storefront/internal/cache"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
)

// 缓存有效期
const (
	ProductTTL  = 5 * time.Minute
	CategoryTTL = 10 * time.Minute
	HomeTTL     = time.Minute
)

// HomePage 首页数据
type HomePage struct {
	Featured   []*model.Product  `json:"featured"`
	Categories []*model.Category `json:"categories"`
}

// CategoryPage 分类页
type CategoryPage struct {
	Category *model.Category  `json:"category"`
	Products []*model.Product `json:"products"`
}

// ProductDetail 商品详情
type ProductDetail struct {
	Product       *model.Product         `json:"product"`
	Reviews       []*model.ProductReview `json:"reviews"`
	AverageRating float64                `json:"average_rating"`
	ReviewCount   int64                  `json:"review_count"`
	Similar       []*model.Product       `json:"similar"`
}

// ProductQuery 商品列表查询
type ProductQuery struct {
	Category string // slug
	Search   string
	Page     int
	PageSize int
}

// ProductList 分页商品
type ProductList struct {
	Items    []*model.Product `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// SitemapEntry 站点地图条目
type SitemapEntry struct {
	Path     string
	Modified time.Time
}

// CatalogService 目录读路径
type CatalogService interface {
	Home(ctx context.Context) (*HomePage, error)
	Categories(ctx context.Context) ([]*model.Category, error)
	Category(ctx context.Context, slug string) (*CategoryPage, error)
	Product(ctx context.Context, slug string) (*ProductDetail, error)
	ListProducts(ctx context.Context, q ProductQuery) (*ProductList, error)
	Sitemap(ctx context.Context) ([]SitemapEntry, error)
}

type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	reviews    repository.ReviewRepository
	cache      cache.Cache
}

func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository, reviews repository.ReviewRepository, c cache.Cache) CatalogService {
	if c == nil {
		c = cache.Nop{}
	}
	return &catalogService{products: products, categories: categories, reviews: reviews, cache: c}
}

func (s *catalogService) Home(ctx context.Context) (*HomePage, error) {
	return cache.Remember(ctx, s.cache, cache.PrefixHome+"index", HomeTTL, func() (*HomePage, error) {
		featured, _, err := s.products.List(ctx, repository.ProductFilter{FeaturedOnly: true, InStockOnly: true, Limit: 8})
		if err != nil {
			return nil, err
		}
		cats, err := s.categories.ListActive(ctx, 6)
		if err != nil {
			return nil, err
		}
		return &HomePage{Featured: featured, Categories: cats}, nil
	})
}

func (s *catalogService) Categories(ctx context.Context) ([]*model.Category, error) {
	return cache.Remember(ctx, s.cache, cache.PrefixCategory+"all", CategoryTTL, func() ([]*model.Category, error) {
		return s.categories.ListActive(ctx, 0)
	})
}

func (s *catalogService) Category(ctx context.Context, slug string) (*CategoryPage, error) {
	return cache.Remember(ctx, s.cache, cache.PrefixCategory+slug, CategoryTTL, func() (*CategoryPage, error) {
		c, err := s.categories.GetActiveBySlug(ctx, slug)
		if err != nil {
			return nil, notFound(err, ErrCategoryNotFound)
		}
		products, _, err := s.products.List(ctx, repository.ProductFilter{CategoryID: c.ID, InStockOnly: true})
		if err != nil {
			return nil, err
		}
		return &CategoryPage{Category: c, Products: products}, nil
	})
}

func (s *catalogService) Product(ctx context.Context, slug string) (*ProductDetail, error) {
	return cache.Remember(ctx, s.cache, cache.PrefixProduct+slug, ProductTTL, func() (*ProductDetail, error) {
		p, err := s.products.GetActiveBySlug(ctx, slug)
		if err != nil {
			return nil, notFound(err, ErrProductNotFound)
		}
		reviews, err := s.reviews.ListVisible(ctx, p.ID, 10)
		if err != nil {
			return nil, err
		}
		stats, err := s.reviews.Stats(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		similar, _, err := s.products.List(ctx, repository.ProductFilter{
			CategoryID:  p.CategoryID,
			InStockOnly: true,
			ExcludeID:   p.ID,
			Limit:       8,
		})
		if err != nil {
			return nil, err
		}
		return &ProductDetail{
			Product:       p,
			Reviews:       reviews,
			AverageRating: stats.Average,
			ReviewCount:   stats.Count,
			Similar:       similar,
		}, nil
	})
}

func (s *catalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductList, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 24
	}
	f := repository.ProductFilter{
		Search: strings.TrimSpace(q.Search),
		Offset: (q.Page - 1) * q.PageSize,
		Limit:  q.PageSize,
	}
	if q.Category != "" {
		c, err := s.categories.GetActiveBySlug(ctx, q.Category)
		if err != nil {
			return nil, notFound(err, ErrCategoryNotFound)
		}
		f.CategoryID = c.ID
	}
	items, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ProductList{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *catalogService) Sitemap(ctx context.Context) ([]SitemapEntry, error) {
	cats, err := s.categories.ListActive(ctx, 0)
	if err != nil {
		return nil, err
	}
	products, _, err := s.products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	entries := []SitemapEntry{{Path: "/"}, {Path: "/categories"}}
	for _, c := range cats {
		entries = append(entries, SitemapEntry{Path: "/categories/" + c.Slug, Modified: c.UpdatedAt})
	}
	for _, p := range products {
		entries = append(entries, SitemapEntry{Path: "/products/" + p.Slug, Modified: p.UpdatedAt})
	}
	return entries, nil
}
