package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus 订单状态
type OrderStatus string

// 订单状态常量：PENDING → PAYMENT_VERIFIED → PROCESSING → SHIPPED → DELIVERED，CANCELLED 可从早期状态进入
const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusPaymentVerified OrderStatus = "PAYMENT_VERIFIED"
	OrderStatusProcessing      OrderStatus = "PROCESSING"
	OrderStatusShipped         OrderStatus = "SHIPPED"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

// OrderStatuses 展示顺序
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaymentVerified,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid 是否为已知状态
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// RevenueStatuses 计入营收的状态
var RevenueStatuses = []OrderStatus{OrderStatusShipped, OrderStatusDelivered}

// 支付方式
const (
	PaymentBankTransfer = "BANK_TRANSFER"
	PaymentEFT          = "EFT"
	PaymentCashOnPickup = "CASH_ON_PICKUP"
)

// PaymentMethods 支持的支付方式
var PaymentMethods = []string{PaymentBankTransfer, PaymentEFT, PaymentCashOnPickup}

// Order 订单模型
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber     string          `json:"order_number" gorm:"type:varchar(32);uniqueIndex;not null"`
	UserID          string          `json:"user_id" gorm:"type:varchar(36);index:idx_order_user_created;not null"`
	AddressID       string          `json:"address_id" gorm:"type:varchar(36);index;not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);index;not null;default:PENDING"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	TaxAmount       decimal.Decimal `json:"tax_amount" gorm:"type:decimal(12,2);not null"`
	ShippingFee     decimal.Decimal `json:"shipping_fee" gorm:"type:decimal(12,2);not null"`
	TotalPrice      decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null"`
	PaymentMethod   string          `json:"payment_method" gorm:"type:varchar(32);not null"`
	PaymentProof    *string         `json:"payment_proof" gorm:"type:varchar(512)"`
	DeliveryAddress string          `json:"delivery_address" gorm:"type:text;not null"`
	Notes           *string         `json:"notes" gorm:"type:text"`
	TrackingNumber  *string         `json:"tracking_number" gorm:"type:varchar(64)"`
	PaidAt          *time.Time      `json:"paid_at"`
	ShippedAt       *time.Time      `json:"shipped_at"`
	DeliveredAt     *time.Time      `json:"delivered_at"`
	CreatedAt       time.Time       `json:"created_at" gorm:"index:idx_order_user_created"`
	UpdatedAt       time.Time       `json:"updated_at"`

	User    *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Address *Address    `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	Items   []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// ItemCount 商品总件数
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// AwaitingPayment 是否还在等待付款凭证
func (o *Order) AwaitingPayment() bool {
	return o.Status == OrderStatusPending && o.PaymentProof == nil
}

// OrderItem 订单明细，price 为下单时的价格快照
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// CartItem 购物车行，(user_id, product_id) 唯一
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:ux_cart_user_product;not null"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);uniqueIndex:ux_cart_user_product;not null"`
	Quantity  int       `json:"quantity" gorm:"not null;check:quantity >= 1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (CartItem) TableName() string { return "cart_items" }

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// LineTotal 单行小计
func (c *CartItem) LineTotal() decimal.Decimal {
	if c.Product == nil {
		return decimal.Zero
	}
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
