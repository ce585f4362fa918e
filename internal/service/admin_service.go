package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/internal/cache"
	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/pkg/logger"
)

// Dashboard 后台首页统计
type Dashboard struct {
	TotalOrders       int64                       `json:"total_orders"`
	TotalRevenue      decimal.Decimal             `json:"total_revenue"`
	TotalProducts     int64                       `json:"total_products"`
	TotalCustomers    int64                       `json:"total_customers"`
	AverageOrderValue decimal.Decimal             `json:"average_order_value"`
	PendingOrders     int64                       `json:"pending_orders"`
	LowStockProducts  int64                       `json:"low_stock_products"`
	RecentOrders      []*model.Order              `json:"recent_orders"`
	PopularProducts   []repository.ProductSummary `json:"popular_products"`
	MonthlySales      []MonthlySales              `json:"monthly_sales"`
}

// MonthlySales 月度销售
type MonthlySales struct {
	Month      string          `json:"month"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// OrderStats 订单页统计
type OrderStats struct {
	TotalOrders       int64                       `json:"total_orders"`
	PendingOrders     int64                       `json:"pending_orders"`
	TotalRevenue      decimal.Decimal             `json:"total_revenue"`
	AverageOrderValue decimal.Decimal             `json:"average_order_value"`
	StatusCounts      map[model.OrderStatus]int64 `json:"status_counts"`
}

// ProductPage 后台商品列表
type ProductPage struct {
	Items []repository.ProductSummary `json:"items"`
	Total int64                       `json:"total"`
	Stats *repository.ProductStats    `json:"stats"`
}

// ProductInput 新建/修改商品
type ProductInput struct {
	Name          string
	Slug          string
	Description   string
	SKU           string
	Barcode       string
	Price         decimal.Decimal
	ComparePrice  decimal.NullDecimal
	CostPrice     decimal.NullDecimal
	Weight        decimal.NullDecimal
	Stock         int
	LowStockAlert int
	Images        []string
	Features      []string
	Dimensions    string
	IsActive      bool
	IsFeatured    bool
	CategoryID    string
}

// AdminService 后台管理
type AdminService interface {
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, trackingNumber string) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, f repository.OrderFilter) ([]*model.Order, int64, error)
	OrderStats(ctx context.Context) (*OrderStats, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	ListProducts(ctx context.Context, f repository.ProductFilter) (*ProductPage, error)
	CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*model.Product, error)
	SetProductActive(ctx context.Context, id string, active bool) error
}

type adminService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	cache      cache.Cache
	events     *EventDispatcher
	restamp    bool
	now        func() time.Time
}

// AdminDeps 后台服务依赖
type AdminDeps struct {
	Orders     repository.OrderRepository
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Users      repository.UserRepository
	Cache      cache.Cache
	Events     *EventDispatcher
	// RestampOnRepeat 为 false 时已有的时间戳不会被覆盖
	RestampOnRepeat bool
}

func NewAdminService(d AdminDeps) AdminService {
	c := d.Cache
	if c == nil {
		c = cache.Nop{}
	}
	return &adminService{
		orders:     d.Orders,
		products:   d.Products,
		categories: d.Categories,
		users:      d.Users,
		cache:      c,
		events:     d.Events,
		restamp:    d.RestampOnRepeat,
		now:        time.Now,
	}
}

func (s *adminService) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, trackingNumber string) (*model.Order, error) {
	if status == "" {
		return nil, invalid(ErrInvalidStatus, "Status is required")
	}
	if !status.Valid() {
		return nil, invalid(ErrInvalidStatus, "Invalid status %q", status)
	}
	current, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}

	now := s.now()
	updates := map[string]interface{}{"status": status}
	stamp := func(column string, existing *time.Time) {
		if s.restamp || existing == nil {
			updates[column] = now
		}
	}
	switch status {
	case model.OrderStatusPaymentVerified, model.OrderStatusProcessing:
		stamp("paid_at", current.PaidAt)
	case model.OrderStatusShipped:
		stamp("shipped_at", current.ShippedAt)
		if tn := strings.TrimSpace(trackingNumber); tn != "" {
			updates["tracking_number"] = tn
		}
	case model.OrderStatusDelivered:
		stamp("delivered_at", current.DeliveredAt)
	}
	if err := s.orders.Update(ctx, orderID, updates); err != nil {
		return nil, err
	}

	updated, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)),
	)
	if current.Status != status {
		evt := messaging.OrderStatusChanged{
			OrderID:     updated.ID,
			OrderNumber: updated.OrderNumber,
			UserID:      updated.UserID,
			From:        string(current.Status),
			To:          string(status),
			ChangedAt:   now,
		}
		if updated.TrackingNumber != nil {
			evt.TrackingNumber = *updated.TrackingNumber
		}
		s.events.Enqueue(messaging.TopicOrderStatusChanged, updated.ID, evt)
	}
	return updated, nil
}

func (s *adminService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return o, nil
}

func (s *adminService) ListOrders(ctx context.Context, f repository.OrderFilter) ([]*model.Order, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, invalid(ErrInvalidStatus, "Invalid status %q", f.Status)
	}
	return s.orders.List(ctx, f)
}

func (s *adminService) OrderStats(ctx context.Context) (*OrderStats, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orders.Revenue(ctx, model.RevenueStatuses)
	if err != nil {
		return nil, err
	}
	all, err := s.orders.Revenue(ctx, nil)
	if err != nil {
		return nil, err
	}
	st := &OrderStats{
		PendingOrders: counts[model.OrderStatusPending],
		TotalRevenue:  revenue,
		StatusCounts:  counts,
	}
	for _, n := range counts {
		st.TotalOrders += n
	}
	st.AverageOrderValue = average(all, st.TotalOrders)
	return st, nil
}

func (s *adminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{}
	var err error
	if d.TotalOrders, err = s.orders.Count(ctx, ""); err != nil {
		return nil, err
	}
	if d.PendingOrders, err = s.orders.Count(ctx, model.OrderStatusPending); err != nil {
		return nil, err
	}
	if d.TotalRevenue, err = s.orders.Revenue(ctx, model.RevenueStatuses); err != nil {
		return nil, err
	}
	stats, err := s.products.Stats(ctx)
	if err != nil {
		return nil, err
	}
	d.TotalProducts = stats.Active
	d.LowStockProducts = stats.LowStock + stats.OutOfStock
	if d.TotalCustomers, err = s.users.CountByRole(ctx, model.RoleCustomer); err != nil {
		return nil, err
	}
	d.AverageOrderValue = average(d.TotalRevenue, d.TotalOrders)

	if d.RecentOrders, _, err = s.orders.List(ctx, repository.OrderFilter{Limit: 10}); err != nil {
		return nil, err
	}
	if d.PopularProducts, err = s.popular(ctx, 8); err != nil {
		return nil, err
	}
	if d.MonthlySales, err = s.monthlySales(ctx, 6); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *adminService) popular(ctx context.Context, limit int) ([]repository.ProductSummary, error) {
	top, err := s.products.TopSelling(ctx, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(top))
	for i, t := range top {
		ids[i] = t.ProductID
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]repository.ProductSummary, 0, len(top))
	for _, t := range top {
		if p, ok := byID[t.ProductID]; ok {
			out = append(out, repository.ProductSummary{Product: p, SalesCount: t.SalesCount})
		}
	}
	return out, nil
}

// monthlySales 最近 n 个月，按月份倒序
func (s *adminService) monthlySales(ctx context.Context, months int) ([]MonthlySales, error) {
	now := s.now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
	rows, err := s.orders.AmountsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	byMonth := map[string]*MonthlySales{}
	for _, r := range rows {
		key := r.CreatedAt.In(now.Location()).Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthlySales{Month: key, Revenue: decimal.Zero}
			byMonth[key] = m
		}
		m.OrderCount++
		m.Revenue = m.Revenue.Add(r.TotalPrice)
	}
	out := make([]MonthlySales, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (s *adminService) ListProducts(ctx context.Context, f repository.ProductFilter) (*ProductPage, error) {
	if f.Status == "" {
		f.Status = "all"
	}
	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	sales, err := s.products.SalesCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	reviews, err := s.products.ReviewCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	stats, err := s.products.Stats(ctx)
	if err != nil {
		return nil, err
	}
	page := &ProductPage{Items: make([]repository.ProductSummary, len(products)), Total: total, Stats: stats}
	for i, p := range products {
		page.Items[i] = repository.ProductSummary{Product: p, SalesCount: sales[p.ID], ReviewsCount: reviews[p.ID]}
	}
	return page, nil
}

func (s *adminService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	p := &model.Product{}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, duplicate(err)
	}
	s.invalidateCatalog(ctx)
	logger.Info("product created", zap.String("product_id", p.ID), zap.String("slug", p.Slug))
	return s.products.GetByID(ctx, p.ID)
}

func (s *adminService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, p); err != nil {
		return nil, duplicate(err)
	}
	s.invalidateCatalog(ctx)
	return s.products.GetByID(ctx, id)
}

func (s *adminService) SetProductActive(ctx context.Context, id string, active bool) error {
	if _, err := s.products.GetByID(ctx, id); err != nil {
		return notFound(err, ErrProductNotFound)
	}
	if err := s.products.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *adminService) apply(ctx context.Context, p *model.Product, in ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return invalid(ErrInvalidInput, "Product name is required")
	}
	if strings.TrimSpace(in.SKU) == "" {
		return invalid(ErrInvalidInput, "SKU is required")
	}
	if !in.Price.IsPositive() {
		return invalid(ErrInvalidInput, "Price must be greater than zero")
	}
	if in.Stock < 0 {
		return invalid(ErrInvalidInput, "Stock cannot be negative")
	}
	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid(ErrCategoryNotFound, "Category not found")
		}
		return err
	}

	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	p.Name = name
	p.Slug = slug
	p.Description = in.Description
	p.SKU = strings.TrimSpace(in.SKU)
	p.Barcode = in.Barcode
	p.Price = in.Price.Round(2)
	p.ComparePrice = in.ComparePrice
	p.CostPrice = in.CostPrice
	p.Weight = in.Weight
	p.Stock = in.Stock
	p.LowStockAlert = in.LowStockAlert
	if p.LowStockAlert <= 0 {
		p.LowStockAlert = 5
	}
	p.Images = model.StringList(in.Images)
	p.Features = model.StringList(in.Features)
	p.Dimensions = in.Dimensions
	p.IsActive = in.IsActive
	p.IsFeatured = in.IsFeatured
	p.CategoryID = in.CategoryID
	p.Category = nil
	return nil
}

func (s *adminService) invalidateCatalog(ctx context.Context) {
	s.cache.DeletePrefix(ctx, cache.PrefixProduct, cache.PrefixCategory, cache.PrefixHome)
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return invalid(ErrDuplicateSlug, "Slug or SKU already in use")
	}
	return err
}

func average(sum decimal.Decimal, n int64) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(n)).Round(2)
}

// Slugify 小写字母数字，其余字符折叠为单个连字符
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
