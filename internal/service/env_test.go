package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/config"
	"github.com/d60-Lab/storefront/internal/cache"
	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/internal/storage"
	"github.com/d60-Lab/storefront/internal/testutil"
	"github.com/d60-Lab/storefront/pkg/token"
)

type testEnv struct {
	db  *gorm.DB
	fx  *testutil.Fixture
	pub *messaging.MemoryPublisher

	users      repository.UserRepository
	addrs      repository.AddressRepository
	categories repository.CategoryRepository
	products   repository.ProductRepository
	carts      repository.CartRepository
	orders     repository.OrderRepository
	reviews    repository.ReviewRepository

	events    *EventDispatcher
	stopEvent func(context.Context) error
	store     *storage.LocalStore
	tokens    *token.Manager
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	pub := &messaging.MemoryPublisher{}
	events := NewEventDispatcher(pub, 64, time.Second)
	env := &testEnv{
		db:         db,
		fx:         testutil.NewFixture(t, db),
		pub:        pub,
		users:      repository.NewUserRepository(db),
		addrs:      repository.NewAddressRepository(db),
		categories: repository.NewCategoryRepository(db),
		products:   repository.NewProductRepository(db),
		carts:      repository.NewCartRepository(db),
		orders:     repository.NewOrderRepository(db),
		reviews:    repository.NewReviewRepository(db),
		events:     events,
		stopEvent:  events.Start(1),
		store:      storage.NewLocalStore(t.TempDir(), "/uploads"),
		tokens:     token.NewManager("test-secret", "storefront-test", time.Hour),
	}
	t.Cleanup(func() { _ = env.stopEvent(context.Background()) })
	return env
}

// flushEvents 停止事件 worker 并返回已发布的消息
func (e *testEnv) flushEvents(t *testing.T) []messaging.Message {
	t.Helper()
	if err := e.stopEvent(context.Background()); err != nil {
		t.Fatalf("stop events: %v", err)
	}
	return e.pub.Messages()
}

func (e *testEnv) orderService() OrderService {
	return NewOrderService(e.orders, e.carts, e.addrs, testPricing(), e.events)
}

func (e *testEnv) cartService() CartService {
	return NewCartService(e.carts, e.products, testPricing())
}

func (e *testEnv) paymentService(autoVerify bool) PaymentService {
	return e.paymentServiceWith(autoVerify, true)
}

func (e *testEnv) paymentServiceWith(autoVerify, restamp bool) PaymentService {
	return NewPaymentService(e.orders, e.store, config.PaymentConfig{
		AutoVerify:     autoVerify,
		MaxUploadBytes: 5 << 20,
	}, restamp, e.events)
}

func (e *testEnv) adminService(c cache.Cache, restamp bool) AdminService {
	return NewAdminService(AdminDeps{
		Orders:          e.orders,
		Products:        e.products,
		Categories:      e.categories,
		Users:           e.users,
		Cache:           c,
		Events:          e.events,
		RestampOnRepeat: restamp,
	})
}

func (e *testEnv) authService() AuthService {
	return NewAuthService(e.users, e.tokens, bcrypt.MinCost)
}
