package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/config"
	"github.com/d60-Lab/storefront/internal/api/handler"
	"github.com/d60-Lab/storefront/internal/cache"
	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/internal/storage"
	"github.com/d60-Lab/storefront/internal/testutil"
	"github.com/d60-Lab/storefront/pkg/token"
)

func init() { gin.SetMode(gin.TestMode) }

type stack struct {
	engine *gin.Engine
	db     *gorm.DB
	fx     *testutil.Fixture
	tokens *token.Manager
}

func newStack(t *testing.T) *stack {
	t.Helper()
	require.NoError(t, handler.RegisterValidators())

	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	addrs := repository.NewAddressRepository(db)
	categories := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	carts := repository.NewCartRepository(db)
	orders := repository.NewOrderRepository(db)
	reviews := repository.NewReviewRepository(db)

	events := service.NewEventDispatcher(&messaging.MemoryPublisher{}, 64, time.Second)
	stop := events.Start(1)
	t.Cleanup(func() { _ = stop(context.Background()) })

	uploadDir := t.TempDir()
	pricing := config.Pricing{
		FreeShippingThreshold: decimal.NewFromInt(500),
		FlatShippingFee:       decimal.NewFromInt(99),
		TaxRate:               decimal.RequireFromString("0.15"),
	}
	tokens := token.NewManager("test-secret", "storefront-test", time.Hour)
	auth := service.NewAuthService(users, tokens, bcrypt.MinCost)

	h := handler.NewHandler(handler.Services{
		Auth:      auth,
		Catalog:   service.NewCatalogService(products, categories, reviews, cache.Nop{}),
		Cart:      service.NewCartService(carts, products, pricing),
		Orders:    service.NewOrderService(orders, carts, addrs, pricing, events),
		Payments:  service.NewPaymentService(orders, storage.NewLocalStore(uploadDir, "/uploads"), config.PaymentConfig{AutoVerify: true, MaxUploadBytes: 5 << 20, BankName: "Test Bank"}, true, events),
		Addresses: service.NewAddressService(addrs),
		Reviews:   service.NewReviewService(reviews, products, cache.Nop{}),
		Admin: service.NewAdminService(service.AdminDeps{
			Orders:          orders,
			Products:        products,
			Categories:      categories,
			Users:           users,
			Events:          events,
			RestampOnRepeat: true,
		}),
	}, handler.Options{
		CookieName: "session_token",
		TokenTTL:   time.Hour,
		BaseURL:    "https://shop.example.com",
		Currency:   "ZAR",
	})

	engine, err := New(h, auth, Options{
		CookieName: "session_token",
		UploadURL:  "/uploads",
	})
	require.NoError(t, err)
	return &stack{engine: engine, db: db, fx: testutil.NewFixture(t, db), tokens: tokens}
}

func (s *stack) tokenFor(t *testing.T, u *model.User) string {
	t.Helper()
	raw, err := s.tokens.Issue(u.ID, token.Claims{Email: u.Email, Role: string(u.Role)})
	require.NoError(t, err)
	return raw
}

func (s *stack) do(method, path, tok string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *stack) json(method, path, tok string, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	return s.do(method, path, tok, body, "application/json")
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env
}

type orderJSON struct {
	ID           string            `json:"id"`
	OrderNumber  string            `json:"order_number"`
	Status       model.OrderStatus `json:"status"`
	TotalPrice   decimal.Decimal   `json:"total_price"`
	PaymentProof *string           `json:"payment_proof"`
}

func (s *stack) placeOrder(t *testing.T, tok string, addr *model.Address) orderJSON {
	t.Helper()
	w := s.json(http.MethodPost, "/api/orders", tok, map[string]any{"addressId": addr.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var o orderJSON
	env := decode(t, w, &o)
	assert.Equal(t, "Order placed successfully", env.Message)
	return o
}

func TestSystemEndpoints(t *testing.T) {
	s := newStack(t)
	cat := s.fx.Category()
	p := s.fx.Product(cat, "10.00", 3)

	w := s.do(http.MethodGet, "/healthz", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"storefront"}`, w.Body.String())

	w = s.do(http.MethodGet, "/sitemap.xml", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<loc>https://shop.example.com/products/"+p.Slug+"</loc>")
	assert.Contains(t, w.Body.String(), "<loc>https://shop.example.com/categories/"+cat.Slug+"</loc>")

	w = s.do(http.MethodGet, "/robots.txt", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Disallow: /admin/")
	assert.Contains(t, w.Body.String(), "Sitemap: https://shop.example.com/sitemap.xml")
}

func TestPageGuards(t *testing.T) {
	s := newStack(t)
	customer := s.fx.User(model.RoleCustomer)
	admin := s.fx.User(model.RoleAdmin)

	w := s.do(http.MethodGet, "/orders", "", nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/signin?callbackUrl=%2Forders", w.Header().Get("Location"))

	w = s.do(http.MethodGet, "/admin/orders", s.tokenFor(t, customer), nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/signin?callbackUrl=%2Fadmin%2Forders", w.Header().Get("Location"))

	w = s.do(http.MethodGet, "/admin", s.tokenFor(t, admin), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dashboard")

	w = s.do(http.MethodGet, "/orders", s.tokenFor(t, customer), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No orders yet.")
}

func TestAdminAPIRejectsCustomers(t *testing.T) {
	s := newStack(t)
	customer := s.fx.User(model.RoleCustomer)
	admin := s.fx.User(model.RoleAdmin)
	p := s.fx.Product(s.fx.Category(), "100.00", 5)
	addr := s.fx.Address(customer)
	s.fx.CartLine(customer, p, 1)

	ctok := s.tokenFor(t, customer)
	order := s.placeOrder(t, ctok, addr)

	w := s.json(http.MethodPatch, "/api/admin/orders/"+order.ID, ctok, map[string]any{"status": "SHIPPED"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	var stored model.Order
	require.NoError(t, s.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, model.OrderStatusPending, stored.Status)
	assert.Nil(t, stored.ShippedAt)

	w = s.json(http.MethodPatch, "/api/admin/orders/"+order.ID, "", map[string]any{"status": "SHIPPED"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	atok := s.tokenFor(t, admin)
	w = s.json(http.MethodPatch, "/api/admin/orders/"+order.ID, atok, map[string]any{"status": "NOT_A_STATUS"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPatch, "/api/admin/orders/"+order.ID, atok, map[string]any{"status": "SHIPPED", "trackingNumber": "TRK-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, s.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, model.OrderStatusShipped, stored.Status)
	require.NotNil(t, stored.ShippedAt)
	require.NotNil(t, stored.TrackingNumber)
	assert.Equal(t, "TRK-1", *stored.TrackingNumber)

	w = s.do(http.MethodGet, "/api/admin/dashboard", atok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		TotalOrders  int64           `json:"total_orders"`
		TotalRevenue decimal.Decimal `json:"total_revenue"`
	}
	decode(t, w, &dash)
	assert.Equal(t, int64(1), dash.TotalOrders)
	assert.True(t, order.TotalPrice.Equal(dash.TotalRevenue))
}

func TestOrderRequestValidationReasons(t *testing.T) {
	s := newStack(t)
	customer := s.fx.User(model.RoleCustomer)
	admin := s.fx.User(model.RoleAdmin)
	p := s.fx.Product(s.fx.Category(), "100.00", 5)
	addr := s.fx.Address(customer)
	s.fx.CartLine(customer, p, 1)
	tok := s.tokenFor(t, customer)

	cases := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{"missing address", map[string]any{"paymentMethod": "EFT"}, "Delivery address is required"},
		{"unknown payment method", map[string]any{"addressId": addr.ID, "paymentMethod": "CRYPTO"}, "Unsupported payment method"},
		{"notes too long", map[string]any{"addressId": addr.ID, "notes": strings.Repeat("n", 1001)}, "Notes must be at most 1000 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.json(http.MethodPost, "/api/orders", tok, tc.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.want, decode(t, w, nil).Message)
		})
	}
	w := s.do(http.MethodPost, "/api/orders", tok, strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decode(t, w, nil).Message)
	assert.Equal(t, 5, s.fx.Stock(p))

	// 小写支付方式交给 service 规范化
	w = s.json(http.MethodPost, "/api/orders", tok, map[string]any{"addressId": addr.ID, "paymentMethod": "bank_transfer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var placed struct {
		ID            string `json:"id"`
		PaymentMethod string `json:"payment_method"`
	}
	decode(t, w, &placed)
	assert.Equal(t, model.PaymentBankTransfer, placed.PaymentMethod)

	atok := s.tokenFor(t, admin)
	w = s.json(http.MethodPatch, "/api/admin/orders/"+placed.ID, atok, map[string]any{"trackingNumber": "TRK-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Status is required", decode(t, w, nil).Message)

	w = s.json(http.MethodPatch, "/api/admin/orders/"+placed.ID, atok, map[string]any{"status": "LOST"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid status", decode(t, w, nil).Message)
}

func TestCheckoutFlow(t *testing.T) {
	s := newStack(t)
	customer := s.fx.User(model.RoleCustomer)
	p := s.fx.Product(s.fx.Category(), "100.00", 5)
	addr := s.fx.Address(customer)
	tok := s.tokenFor(t, customer)

	w := s.json(http.MethodPost, "/api/cart", tok, map[string]any{"productId": p.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPost, "/api/cart", tok, map[string]any{"productId": p.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/cart", tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var cart struct {
		Items []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		Total decimal.Decimal `json:"total"`
	}
	decode(t, w, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	// 200 + 99 运费 + 30 税
	assert.Equal(t, "329", cart.Total.String())

	w = s.do(http.MethodGet, "/checkout", tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ZAR 329.00")

	order := s.placeOrder(t, tok, addr)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "329", order.TotalPrice.String())
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.Equal(t, 3, s.fx.Stock(p))
	assert.Equal(t, int64(0), s.fx.Count(&model.CartItem{}))

	// 购物车已空，结算页退回购物车
	w = s.do(http.MethodGet, "/checkout", tok, nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/cart", w.Header().Get("Location"))

	w = s.do(http.MethodGet, "/orders/"+order.ID+"/confirm", tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), order.OrderNumber)
	assert.Contains(t, w.Body.String(), "Test Bank")

	body, ct := proofForm(t, order.ID, "proof.png", "image/png", []byte("\x89PNG fake"))
	w = s.do(http.MethodPost, "/api/orders/payment-proof", tok, body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var up struct {
		Path string `json:"path"`
	}
	env := decode(t, w, &up)
	assert.Equal(t, "Payment proof uploaded successfully", env.Message)
	assert.True(t, strings.HasPrefix(up.Path, "/uploads/payments/"), up.Path)

	w = s.do(http.MethodGet, up.Path, "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodGet, up.Path, s.tokenFor(t, s.fx.User(model.RoleCustomer)), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, up.Path, tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\x89PNG fake", w.Body.String())
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
	w = s.do(http.MethodGet, up.Path, s.tokenFor(t, s.fx.User(model.RoleAdmin)), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/orders/"+order.ID, tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got orderJSON
	decode(t, w, &got)
	assert.Equal(t, model.OrderStatusPaymentVerified, got.Status)
	require.NotNil(t, got.PaymentProof)
	assert.Equal(t, up.Path, *got.PaymentProof)
}

func TestPaymentProofRejections(t *testing.T) {
	s := newStack(t)
	customer := s.fx.User(model.RoleCustomer)
	other := s.fx.User(model.RoleCustomer)
	p := s.fx.Product(s.fx.Category(), "20.00", 5)
	s.fx.CartLine(customer, p, 1)
	tok := s.tokenFor(t, customer)
	order := s.placeOrder(t, tok, s.fx.Address(customer))

	body, ct := proofForm(t, order.ID, "notes.txt", "text/plain", []byte("hello"))
	w := s.do(http.MethodPost, "/api/orders/payment-proof", tok, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only image files are allowed", decode(t, w, nil).Message)

	body, ct = proofForm(t, order.ID, "proof.png", "image/png", []byte("png"))
	w = s.do(http.MethodPost, "/api/orders/payment-proof", s.tokenFor(t, other), body, ct)
	assert.Equal(t, http.StatusNotFound, w.Code)

	body, ct = proofForm(t, "", "proof.png", "image/png", []byte("png"))
	w = s.do(http.MethodPost, "/api/orders/payment-proof", tok, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File and order ID are required", decode(t, w, nil).Message)

	var stored model.Order
	require.NoError(t, s.db.First(&stored, "id = ?", order.ID).Error)
	assert.Nil(t, stored.PaymentProof)
	assert.Equal(t, model.OrderStatusPending, stored.Status)
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	s := newStack(t)
	payload := map[string]any{"name": "Thandi", "email": "Thandi@Example.com", "password": "s3cret-pass"}

	w := s.json(http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_token" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	w = s.json(http.MethodPost, "/api/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: session.Value})
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var u struct {
		Email string `json:"email"`
	}
	decode(t, w, &u)
	assert.Equal(t, "thandi@example.com", u.Email)

	w = s.json(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "thandi@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogPagesAndNotFound(t *testing.T) {
	s := newStack(t)
	cat := s.fx.Category()
	p := s.fx.Product(cat, "49.90", 4)

	w := s.do(http.MethodGet, "/", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), cat.Name)

	w = s.do(http.MethodGet, "/products/"+p.Slug, "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), p.Name)
	assert.Contains(t, w.Body.String(), "ZAR 49.90")

	w = s.do(http.MethodGet, "/products/missing", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")

	w = s.do(http.MethodGet, "/api/products/missing", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/nothing-here", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, decode(t, w, nil).Code)

	w = s.do(http.MethodGet, "/api/cart", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/cart", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sign in")

	u := s.fx.User(model.RoleCustomer)
	s.fx.CartLine(u, p, 2)
	w = s.do(http.MethodGet, "/", s.tokenFor(t, u), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<span class="badge">1</span>`)
}

func proofForm(t *testing.T, orderID, fileName, contentType string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("orderId", orderID))
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="paymentProof"; filename="`+fileName+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
