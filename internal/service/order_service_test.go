package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPlaceOrderComputesTotalsAndClearsCart(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	u := env.fx.User(model.RoleCustomer)
	cat := env.fx.Category()
	a := env.fx.Product(cat, "100", 5)
	addr := env.fx.Address(u)
	env.fx.CartLine(u, a, 2)

	order, err := env.orderService().PlaceOrder(ctx, u.ID, PlaceOrderInput{
		AddressID:     addr.ID,
		PaymentMethod: "bank_transfer",
		Notes:         "  leave at gate ",
	})
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(dec("200")))
	assert.True(t, order.ShippingFee.Equal(dec("99")))
	assert.True(t, order.TaxAmount.Equal(dec("30")))
	assert.True(t, order.TotalPrice.Equal(dec("329")))
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentBankTransfer, order.PaymentMethod)
	require.NotNil(t, order.Notes)
	assert.Equal(t, "leave at gate", *order.Notes)
	assert.Equal(t, addr.Snapshot(), order.DeliveryAddress)
	require.NotNil(t, order.Address)
	assert.Equal(t, addr.ID, order.Address.ID)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].Price.Equal(dec("100")))
	assert.True(t, order.Items[0].Total.Equal(dec("200")))
	require.NotNil(t, order.Items[0].Product)
	assert.Equal(t, a.Slug, order.Items[0].Product.Slug)

	assert.Equal(t, 3, env.fx.Stock(a))
	assert.Zero(t, env.fx.Count(&model.CartItem{}))

	msgs := env.flushEvents(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, messaging.TopicOrderPlaced, msgs[0].Topic)
	assert.Equal(t, order.ID, msgs[0].Key)
	evt := msgs[0].Event.(messaging.OrderPlaced)
	assert.Equal(t, "329.00", evt.TotalPrice)
	assert.Equal(t, 2, evt.ItemCount)
}

func TestPlaceOrderFreeShippingAboveThreshold(t *testing.T) {
	env := newEnv(t)
	u := env.fx.User(model.RoleCustomer)
	cat := env.fx.Category()
	a := env.fx.Product(cat, "250.50", 10)
	b := env.fx.Product(cat, "99.99", 10)
	addr := env.fx.Address(u)
	env.fx.CartLine(u, a, 2)
	env.fx.CartLine(u, b, 1)

	order, err := env.orderService().PlaceOrder(context.Background(), u.ID, PlaceOrderInput{AddressID: addr.ID})
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(dec("600.99")))
	assert.True(t, order.ShippingFee.IsZero())
	assert.True(t, order.TaxAmount.Equal(dec("90.15")))
	assert.True(t, order.TotalPrice.Equal(order.Subtotal.Add(order.ShippingFee).Add(order.TaxAmount)))
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 8, env.fx.Stock(a))
	assert.Equal(t, 9, env.fx.Stock(b))
}

func TestPlaceOrderRejections(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	svc := env.orderService()
	u := env.fx.User(model.RoleCustomer)
	other := env.fx.User(model.RoleCustomer)
	cat := env.fx.Category()
	addr := env.fx.Address(u)

	t.Run("missing address", func(t *testing.T) {
		_, err := svc.PlaceOrder(ctx, u.ID, PlaceOrderInput{})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("empty cart", func(t *testing.T) {
		_, err := svc.PlaceOrder(ctx, u.ID, PlaceOrderInput{AddressID: addr.ID})
		assert.ErrorIs(t, err, ErrCartEmpty)
		assert.Zero(t, env.fx.Count(&model.Order{}))
	})

	t.Run("unknown payment method", func(t *testing.T) {
		_, err := svc.PlaceOrder(ctx, u.ID, PlaceOrderInput{AddressID: addr.ID, PaymentMethod: "BITCOIN"})
		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	})

	p := env.fx.Product(cat, "40", 1)
	line := env.fx.CartLine(u, p, 3)

	t.Run("insufficient stock names product", func(t *testing.T) {
		_, err := svc.PlaceOrder(ctx, u.ID, PlaceOrderInput{AddressID: addr.ID})
		assert.ErrorIs(t, err, ErrInsufficientStock)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Reason, p.Name)
		assert.Equal(t, 1, env.fx.Stock(p))
		assert.Equal(t, int64(1), env.fx.Count(&model.CartItem{}))
	})

	require.NoError(t, env.db.Model(&model.CartItem{}).Where("id = ?", line.ID).Update("quantity", 1).Error)
	require.NoError(t, env.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("is_active", false).Error)

	t.Run("inactive product", func(t *testing.T) {
		_, err := svc.PlaceOrder(ctx, u.ID, PlaceOrderInput{AddressID: addr.ID})
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})

	require.NoError(t, env.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("is_active", true).Error)

	t.Run("address owned by someone else", func(t *testing.T) {
		foreign := env.fx.Address(other)
		_, err := svc.PlaceOrder(ctx, u.ID, PlaceOrderInput{AddressID: foreign.ID})
		assert.ErrorIs(t, err, ErrAddressNotFound)
	})

	assert.Zero(t, env.fx.Count(&model.Order{}))
	assert.Zero(t, env.fx.Count(&model.OrderItem{}))
}

// racingCarts 读取购物车后把指定商品库存清零，模拟并发下单抢走最后库存
type racingCarts struct {
	repository.CartRepository
	db        *gorm.DB
	productID string
}

func (r *racingCarts) List(ctx context.Context, userID string) ([]*model.CartItem, error) {
	lines, err := r.CartRepository.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&model.Product{}).Where("id = ?", r.productID).Update("stock", 0).Error
	return lines, err
}

func TestPlaceOrderRollsBackWhenStockDisappears(t *testing.T) {
	env := newEnv(t)
	u := env.fx.User(model.RoleCustomer)
	cat := env.fx.Category()
	a := env.fx.Product(cat, "10", 5)
	b := env.fx.Product(cat, "20", 5)
	addr := env.fx.Address(u)
	env.fx.CartLine(u, b, 1)
	time.Sleep(2 * time.Millisecond)
	env.fx.CartLine(u, a, 2)

	svc := NewOrderService(env.orders, &racingCarts{CartRepository: env.carts, db: env.db, productID: b.ID}, env.addrs, testPricing(), env.events)
	_, err := svc.PlaceOrder(context.Background(), u.ID, PlaceOrderInput{AddressID: addr.ID})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), b.Name)

	assert.Equal(t, 5, env.fx.Stock(a))
	assert.Equal(t, 0, env.fx.Stock(b))
	assert.Zero(t, env.fx.Count(&model.Order{}))
	assert.Zero(t, env.fx.Count(&model.OrderItem{}))
	assert.Equal(t, int64(2), env.fx.Count(&model.CartItem{}))
	assert.Empty(t, env.flushEvents(t))
}

func TestListAndGetOrdersForUser(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	svc := env.orderService()
	u := env.fx.User(model.RoleCustomer)
	other := env.fx.User(model.RoleCustomer)
	p := env.fx.Product(env.fx.Category(), "15", 10)
	addr := env.fx.Address(u)
	env.fx.CartLine(u, p, 1)

	placed, err := svc.PlaceOrder(ctx, u.ID, PlaceOrderInput{AddressID: addr.ID})
	require.NoError(t, err)

	list, err := svc.ListForUser(ctx, u.ID, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, placed.ID, list[0].ID)

	pending, err := svc.ListForUser(ctx, u.ID, model.OrderStatusShipped)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = svc.ListForUser(ctx, u.ID, "NOPE")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	got, err := svc.GetForUser(ctx, placed.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.OrderNumber, got.OrderNumber)

	_, err = svc.GetForUser(ctx, placed.ID, other.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestNewOrderNumber(t *testing.T) {
	now := time.UnixMilli(1_712_345_678_901)
	n := NewOrderNumber(now)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-Z]{4}$`), n)
	assert.True(t, strings.HasPrefix(n, "ORD-45678901-"))
}
