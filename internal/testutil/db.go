// Package testutil 测试用的数据库与数据构造
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/storefront/internal/model"
)

// NewDB 每个测试独立的内存 sqlite；单连接保证事务与普通查询看到同一份数据
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(model.All()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Fixture 常用数据构造
type Fixture struct {
	tb testing.TB
	db *gorm.DB
	n  int
}

func NewFixture(tb testing.TB, db *gorm.DB) *Fixture {
	return &Fixture{tb: tb, db: db}
}

func (f *Fixture) seq() int {
	f.n++
	return f.n
}

func (f *Fixture) must(err error) {
	f.tb.Helper()
	if err != nil {
		f.tb.Fatalf("fixture: %v", err)
	}
}

// User 创建用户
func (f *Fixture) User(role model.Role) *model.User {
	n := f.seq()
	u := &model.User{
		Name:  fmt.Sprintf("User %d", n),
		Email: fmt.Sprintf("user%d@example.com", n),
		Phone: "+27820000000",
		Role:  role,
	}
	f.must(f.db.Create(u).Error)
	return u
}

// Category 创建分类
func (f *Fixture) Category() *model.Category {
	n := f.seq()
	c := &model.Category{Name: fmt.Sprintf("Category %d", n), Slug: fmt.Sprintf("category-%d", n), IsActive: true, SortOrder: n}
	f.must(f.db.Create(c).Error)
	return c
}

// Product 创建商品
func (f *Fixture) Product(cat *model.Category, price string, stock int) *model.Product {
	n := f.seq()
	p := &model.Product{
		Name:          fmt.Sprintf("Product %d", n),
		Slug:          fmt.Sprintf("product-%d", n),
		SKU:           fmt.Sprintf("SKU-%d", n),
		Price:         decimal.RequireFromString(price),
		Stock:         stock,
		LowStockAlert: 2,
		Images:        model.StringList{fmt.Sprintf("/uploads/products/p%d.jpg", n)},
		Features:      model.StringList{"Feature"},
		IsActive:      true,
		CategoryID:    cat.ID,
	}
	f.must(f.db.Create(p).Error)
	return p
}

// Address 创建地址
func (f *Fixture) Address(u *model.User) *model.Address {
	a := &model.Address{
		UserID:        u.ID,
		FullName:      u.Name,
		Phone:         u.Phone,
		Province:      "Gauteng",
		City:          "Johannesburg",
		Suburb:        "Rosebank",
		StreetAddress: "1 Oxford Rd",
		PostalCode:    "2196",
	}
	f.must(f.db.Create(a).Error)
	return a
}

// CartLine 直接写入购物车行
func (f *Fixture) CartLine(u *model.User, p *model.Product, qty int) *model.CartItem {
	c := &model.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: qty}
	f.must(f.db.Create(c).Error)
	return c
}

// Stock 读取当前库存
func (f *Fixture) Stock(p *model.Product) int {
	var got model.Product
	f.must(f.db.First(&got, "id = ?", p.ID).Error)
	return got.Stock
}

// Count 统计表行数
func (f *Fixture) Count(m interface{}) int64 {
	var n int64
	f.must(f.db.Model(m).Count(&n).Error)
	return n
}
