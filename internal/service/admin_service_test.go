package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/storefront/internal/cache"
	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
)

func TestUpdateOrderStatusStampsTimestamps(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	svc := env.adminService(nil, true)
	order := placeTestOrder(t, env, env.fx.User(model.RoleCustomer))

	got, err := svc.UpdateOrderStatus(ctx, order.ID, model.OrderStatusPaymentVerified, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaymentVerified, got.Status)
	require.NotNil(t, got.PaidAt)
	assert.Nil(t, got.ShippedAt)

	got, err = svc.UpdateOrderStatus(ctx, order.ID, model.OrderStatusShipped, " TRK-123 ")
	require.NoError(t, err)
	require.NotNil(t, got.ShippedAt)
	require.NotNil(t, got.TrackingNumber)
	assert.Equal(t, "TRK-123", *got.TrackingNumber)

	got, err = svc.UpdateOrderStatus(ctx, order.ID, model.OrderStatusDelivered, "")
	require.NoError(t, err)
	assert.NotNil(t, got.DeliveredAt)

	// 任意状态之间都允许切换
	got, err = svc.UpdateOrderStatus(ctx, order.ID, model.OrderStatusPending, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)

	var changed []messaging.OrderStatusChanged
	for _, m := range env.flushEvents(t) {
		if m.Topic == messaging.TopicOrderStatusChanged {
			changed = append(changed, m.Event.(messaging.OrderStatusChanged))
		}
	}
	require.Len(t, changed, 4)
	assert.Equal(t, "TRK-123", changed[1].TrackingNumber)
	assert.Equal(t, string(model.OrderStatusDelivered), changed[3].From)
}

func TestUpdateOrderStatusRestampPolicy(t *testing.T) {
	for _, restamp := range []bool{true, false} {
		env := newEnv(t)
		ctx := context.Background()
		svc := env.adminService(nil, restamp).(*adminService)
		order := placeTestOrder(t, env, env.fx.User(model.RoleCustomer))

		first := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return first }
		_, err := svc.UpdateOrderStatus(ctx, order.ID, model.OrderStatusShipped, "")
		require.NoError(t, err)

		svc.now = func() time.Time { return first.Add(time.Hour) }
		got, err := svc.UpdateOrderStatus(ctx, order.ID, model.OrderStatusShipped, "")
		require.NoError(t, err)
		require.NotNil(t, got.ShippedAt)

		want := first
		if restamp {
			want = first.Add(time.Hour)
		}
		assert.True(t, want.Equal(*got.ShippedAt), "restamp=%v got %s", restamp, got.ShippedAt)
	}
}

func TestUpdateOrderStatusValidation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	svc := env.adminService(nil, true)
	order := placeTestOrder(t, env, env.fx.User(model.RoleCustomer))

	_, err := svc.UpdateOrderStatus(ctx, order.ID, "", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = svc.UpdateOrderStatus(ctx, order.ID, "LOST", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = svc.UpdateOrderStatus(ctx, "missing", model.OrderStatusShipped, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)
}

func TestDashboardAndOrderStats(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	svc := env.adminService(nil, true)
	u := env.fx.User(model.RoleCustomer)
	env.fx.User(model.RoleAdmin)

	shipped := placeTestOrder(t, env, u)
	placeTestOrder(t, env, u)
	_, err := svc.UpdateOrderStatus(ctx, shipped.ID, model.OrderStatusShipped, "")
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.TotalOrders)
	assert.Equal(t, int64(1), d.PendingOrders)
	assert.True(t, d.TotalRevenue.Equal(shipped.TotalPrice))
	assert.True(t, d.AverageOrderValue.Equal(shipped.TotalPrice.Div(decimal.NewFromInt(2)).Round(2)))
	assert.Equal(t, int64(1), d.TotalCustomers)
	assert.Equal(t, int64(2), d.TotalProducts)
	assert.Len(t, d.RecentOrders, 2)
	assert.Len(t, d.PopularProducts, 2)
	require.Len(t, d.MonthlySales, 1)
	assert.Equal(t, int64(2), d.MonthlySales[0].OrderCount)

	st, err := svc.OrderStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TotalOrders)
	assert.Equal(t, int64(1), st.StatusCounts[model.OrderStatusShipped])
	assert.Equal(t, int64(0), st.StatusCounts[model.OrderStatusCancelled])
	assert.True(t, st.AverageOrderValue.Equal(shipped.TotalPrice))

	orders, total, err := svc.ListOrders(ctx, repository.OrderFilter{Status: model.OrderStatusShipped})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, shipped.ID, orders[0].ID)

	_, total, err = svc.ListOrders(ctx, repository.OrderFilter{Search: u.Email})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestAdminProductWritesInvalidateCatalogCache(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewRedisCache(client)
	cat := env.fx.Category()

	catalog := NewCatalogService(env.products, env.categories, env.reviews, c)
	_, err := catalog.Home(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.PrefixHome+"index"))

	svc := env.adminService(c, true)
	p, err := svc.CreateProduct(ctx, ProductInput{
		Name:       "Cast Iron Pan",
		SKU:        "PAN-1",
		Price:      dec("349.999"),
		Stock:      4,
		Images:     []string{"/uploads/products/pan.jpg"},
		IsActive:   true,
		IsFeatured: true,
		CategoryID: cat.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "cast-iron-pan", p.Slug)
	assert.True(t, p.Price.Equal(dec("350")))
	assert.Equal(t, 5, p.LowStockAlert)
	assert.False(t, mr.Exists(cache.PrefixHome+"index"))

	home, err := catalog.Home(ctx)
	require.NoError(t, err)
	require.Len(t, home.Featured, 1)

	_, err = catalog.Product(ctx, p.Slug)
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.PrefixProduct+p.Slug))

	updated, err := svc.UpdateProduct(ctx, p.ID, ProductInput{
		Name:       "Cast Iron Pan",
		Slug:       p.Slug,
		SKU:        "PAN-1",
		Price:      dec("299"),
		Stock:      0,
		IsActive:   true,
		CategoryID: cat.ID,
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(dec("299")))
	assert.Equal(t, 0, updated.Stock)
	assert.False(t, updated.IsFeatured)
	assert.False(t, mr.Exists(cache.PrefixProduct+p.Slug))

	require.NoError(t, svc.SetProductActive(ctx, p.ID, false))
	_, err = catalog.Product(ctx, p.Slug)
	assert.ErrorIs(t, err, ErrProductNotFound)

	page, err := svc.ListProducts(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, int64(0), page.Stats.Active)
}

func TestAdminProductValidation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	svc := env.adminService(nil, true)
	cat := env.fx.Category()

	_, err := svc.CreateProduct(ctx, ProductInput{SKU: "X", Price: dec("1"), CategoryID: cat.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "X", SKU: "X", Price: decimal.Zero, CategoryID: cat.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "X", SKU: "X", Price: dec("1"), Stock: -1, CategoryID: cat.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "X", SKU: "X", Price: dec("1"), CategoryID: "nope"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	_, err = svc.UpdateProduct(ctx, "nope", ProductInput{})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, svc.SetProductActive(ctx, "nope", true), ErrProductNotFound)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "stainless-steel-kettle-1-7l", Slugify("  Stainless Steel Kettle (1.7L) "))
	assert.Equal(t, "a-b", Slugify("a -- b--"))
	assert.Equal(t, "", Slugify("!!!"))
}
