package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/storefront/config"
	"github.com/d60-Lab/storefront/internal/cache"
	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/database"
	"github.com/d60-Lab/storefront/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type seedProduct struct {
	name, sku, price, compare string
	stock                     int
	featured                  bool
	features                  []string
}

var catalog = map[string][]seedProduct{
	"Kitchen": {
		{name: "Enamel Mug", sku: "KIT-001", price: "89.00", stock: 40, featured: true, features: []string{"350ml", "Dishwasher safe"}},
		{name: "Cast Iron Skillet", sku: "KIT-002", price: "649.00", compare: "799.00", stock: 12, features: []string{"26cm", "Pre-seasoned"}},
		{name: "Bamboo Board", sku: "KIT-003", price: "199.00", stock: 3},
	},
	"Outdoor": {
		{name: "Camping Lantern", sku: "OUT-001", price: "349.00", stock: 25, featured: true, features: []string{"USB-C charging"}},
		{name: "Trail Flask", sku: "OUT-002", price: "279.00", stock: 0},
	},
}

func main() {
	cfg := must(config.Load())
	_ = logger.Init(cfg.Log.Level, cfg.Log.Format)
	db := must(database.InitDB(cfg))
	defer database.Close(db)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	admin := service.NewAdminService(service.AdminDeps{
		Orders:     repository.NewOrderRepository(db),
		Products:   products,
		Categories: categories,
		Users:      users,
		Cache:      cache.Nop{},
		Events:     service.NewEventDispatcher(messaging.NopPublisher{}, 1, 0),
	})

	// 管理员账号
	email := env("SEED_ADMIN_EMAIL", "admin@example.com")
	if _, err := users.GetByEmail(ctx, email); err != nil {
		hash := must(bcrypt.GenerateFromPassword([]byte(env("SEED_ADMIN_PASSWORD", "admin12345")), service.DefaultHashCost))
		pw := string(hash)
		u := &model.User{Name: "Administrator", Email: email, Password: &pw, Role: model.RoleAdmin, Provider: model.ProviderCredentials}
		if err := users.Create(ctx, u); err != nil {
			panic(err)
		}
		logger.Info("admin created", zap.String("email", email))
	}

	order := 0
	for name, items := range catalog {
		order++
		slug := service.Slugify(name)
		cat, err := categories.GetActiveBySlug(ctx, slug)
		if err != nil {
			cat = &model.Category{Name: name, Slug: slug, IsActive: true, SortOrder: order}
			if err := categories.Create(ctx, cat); err != nil {
				panic(err)
			}
		}
		for _, p := range items {
			in := service.ProductInput{
				Name:          p.name,
				SKU:           p.sku,
				Description:   p.name + " from the " + name + " range.",
				Price:         decimal.RequireFromString(p.price),
				Stock:         p.stock,
				LowStockAlert: 5,
				Features:      p.features,
				IsActive:      true,
				IsFeatured:    p.featured,
				CategoryID:    cat.ID,
			}
			if p.compare != "" {
				in.ComparePrice = decimal.NewNullDecimal(decimal.RequireFromString(p.compare))
			}
			if _, err := admin.CreateProduct(ctx, in); err != nil {
				if errors.Is(err, service.ErrDuplicateSlug) {
					continue
				}
				panic(err)
			}
		}
	}
	fmt.Printf("seeded %d categories into %s\n", len(catalog), cfg.Database.Driver)
}
