package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/internal/model"
)

// CategoryRepository 分类仓储
type CategoryRepository interface {
	ListActive(ctx context.Context, limit int) ([]*model.Category, error)
	GetActiveBySlug(ctx context.Context, slug string) (*model.Category, error)
	GetByID(ctx context.Context, id string) (*model.Category, error)
	Create(ctx context.Context, c *model.Category) error
}

type categoryRepository struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepository{db: db} }

func (r *categoryRepository) ListActive(ctx context.Context, limit int) ([]*model.Category, error) {
	var res []*model.Category
	q := r.db.WithContext(ctx).Where("is_active = ?", true).Order("sort_order ASC").Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&res).Error
	return res, err
}

func (r *categoryRepository) GetActiveBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// ProductFilter 商品列表过滤条件
type ProductFilter struct {
	CategoryID string
	Search     string
	// Status: "" | "active" | "inactive" | "all"
	Status       string
	FeaturedOnly bool
	InStockOnly  bool
	ExcludeID    string
	Offset       int
	Limit        int
}

// ProductSummary 商品 + 销量/评价数（后台列表用）
type ProductSummary struct {
	*model.Product
	SalesCount   int64 `json:"sales_count"`
	ReviewsCount int64 `json:"reviews_count"`
}

// ProductStats 后台商品统计
type ProductStats struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	OutOfStock int64 `json:"out_of_stock"`
	LowStock   int64 `json:"low_stock"`
	Featured   int64 `json:"featured"`
}

// ProductSales 销量排行
type ProductSales struct {
	ProductID  string
	SalesCount int64
}

// ProductRepository 商品仓储
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]*model.Product, int64, error)
	GetActiveBySlug(ctx context.Context, slug string) (*model.Product, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Save(ctx context.Context, p *model.Product) error
	SetActive(ctx context.Context, id string, active bool) error
	SalesCounts(ctx context.Context, ids []string) (map[string]int64, error)
	ReviewCounts(ctx context.Context, ids []string) (map[string]int64, error)
	TopSelling(ctx context.Context, limit int) ([]ProductSales, error)
	Stats(ctx context.Context) (*ProductStats, error)
}

type productRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepository{db: db} }

func (r *productRepository) applyFilter(q *gorm.DB, f ProductFilter) *gorm.DB {
	switch f.Status {
	case "all":
	case "inactive":
		q = q.Where("products.is_active = ?", false)
	default:
		q = q.Where("products.is_active = ?", true)
	}
	if f.CategoryID != "" {
		q = q.Where("products.category_id = ?", f.CategoryID)
	}
	if f.FeaturedOnly {
		q = q.Where("products.is_featured = ?", true)
	}
	if f.InStockOnly {
		q = q.Where("products.stock > ?", 0)
	}
	if f.ExcludeID != "" {
		q = q.Where("products.id <> ?", f.ExcludeID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(products.name) LIKE ? OR LOWER(products.sku) LIKE ? OR LOWER(products.description) LIKE ?)", like, like, like)
	}
	return q
}

// List 返回过滤后的商品（按创建时间倒序）与总数
func (r *productRepository) List(ctx context.Context, f ProductFilter) ([]*model.Product, int64, error) {
	var total int64
	base := r.applyFilter(r.db.WithContext(ctx).Model(&model.Product{}), f)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var res []*model.Product
	q := r.applyFilter(r.db.WithContext(ctx).Model(&model.Product{}), f).
		Preload("Category").
		Order("products.created_at DESC")
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	if err := q.Find(&res).Error; err != nil {
		return nil, 0, err
	}
	return res, total, nil
}

func (r *productRepository) GetActiveBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.Product, error) {
	var res []*model.Product
	if len(ids) == 0 {
		return res, nil
	}
	err := r.db.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Save 全量更新商品（含零值字段）
func (r *productRepository) Save(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Omit("Category", "created_at").Save(p).Error
}

func (r *productRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *productRepository) countBy(ctx context.Context, table string, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []ProductSales
	err := r.db.WithContext(ctx).
		Table(table).
		Select("product_id, COUNT(*) AS sales_count").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = row.SalesCount
	}
	return out, nil
}

// SalesCounts 每个商品出现在多少条订单明细中
func (r *productRepository) SalesCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	return r.countBy(ctx, "order_items", ids)
}

// ReviewCounts 每个商品的评价数
func (r *productRepository) ReviewCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	return r.countBy(ctx, "product_reviews", ids)
}

func (r *productRepository) TopSelling(ctx context.Context, limit int) ([]ProductSales, error) {
	var rows []ProductSales
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id, COUNT(*) AS sales_count").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.is_active = ?", true).
		Group("order_items.product_id").
		Order("sales_count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *productRepository) Stats(ctx context.Context) (*ProductStats, error) {
	var s ProductStats
	db := r.db.WithContext(ctx).Model(&model.Product{})
	if err := db.Count(&s.Total).Error; err != nil {
		return nil, err
	}
	counts := []struct {
		dst   *int64
		where string
		args  []interface{}
	}{
		{&s.Active, "is_active = ?", []interface{}{true}},
		{&s.OutOfStock, "is_active = ? AND stock = 0", []interface{}{true}},
		{&s.LowStock, "is_active = ? AND stock > 0 AND stock <= low_stock_alert", []interface{}{true}},
		{&s.Featured, "is_active = ? AND is_featured = ?", []interface{}{true, true}},
	}
	for _, c := range counts {
		if err := r.db.WithContext(ctx).Model(&model.Product{}).Where(c.where, c.args...).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}
