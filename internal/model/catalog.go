package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category 商品分类，slug 作为对外标识
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(120);not null"`
	Slug        string    `json:"slug" gorm:"type:varchar(160);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Image       string    `json:"image" gorm:"type:varchar(512)"`
	IsActive    bool      `json:"is_active" gorm:"index;not null"`
	SortOrder   int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Product 商品；价格使用 decimal 避免精度丢失
type Product struct {
	ID            string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string              `json:"name" gorm:"type:varchar(255);not null"`
	Slug          string              `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description   string              `json:"description" gorm:"type:text"`
	SKU           string              `json:"sku" gorm:"column:sku;type:varchar(100);uniqueIndex;not null"`
	Barcode       string              `json:"barcode" gorm:"type:varchar(64)"`
	Price         decimal.Decimal     `json:"price" gorm:"type:decimal(12,2);not null"`
	ComparePrice  decimal.NullDecimal `json:"compare_price" gorm:"type:decimal(12,2)"`
	CostPrice     decimal.NullDecimal `json:"cost_price" gorm:"type:decimal(12,2)"`
	Weight        decimal.NullDecimal `json:"weight" gorm:"type:decimal(10,3)"`
	Stock         int                 `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	LowStockAlert int                 `json:"low_stock_alert" gorm:"not null;default:5"`
	Images        StringList          `json:"images" gorm:"type:text;not null"`
	Features      StringList          `json:"features" gorm:"type:text;not null"`
	Dimensions    string              `json:"dimensions,omitempty" gorm:"type:text"`
	IsActive      bool                `json:"is_active" gorm:"index;not null"`
	IsFeatured    bool                `json:"is_featured" gorm:"index;not null;default:false"`
	CategoryID    string              `json:"category_id" gorm:"type:varchar(36);index;not null"`
	CreatedAt     time.Time           `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time           `json:"updated_at"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// InStock 是否有库存
func (p *Product) InStock() bool { return p.Stock > 0 }

// LowStock 库存是否低于预警线
func (p *Product) LowStock() bool { return p.Stock <= p.LowStockAlert }

// Discount 划线价与售价的差额，没有划线价时为零
func (p *Product) Discount() decimal.Decimal {
	if !p.ComparePrice.Valid || p.ComparePrice.Decimal.LessThanOrEqual(p.Price) {
		return decimal.Zero
	}
	return p.ComparePrice.Decimal.Sub(p.Price)
}

// ProductReview 商品评价，rating 取 1..5
type ProductReview struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID  string    `json:"product_id" gorm:"type:varchar(36);index;uniqueIndex:ux_review_user_product;not null"`
	UserID     string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:ux_review_user_product;not null"`
	Rating     int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment    string    `json:"comment" gorm:"type:text"`
	IsReported bool      `json:"is_reported" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (ProductReview) TableName() string { return "product_reviews" }

func (r *ProductReview) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
