package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/storefront/config"
	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

// 并发下单压测：N 个买家抢同一件库存为 STOCK 的商品
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer database.Close(db)
	ctx := context.Background()

	N := envInt("N", 1000)
	CONC := envInt("CONC", 8)
	STOCK := envInt("STOCK", N/2)

	users := repository.NewUserRepository(db)
	addrs := repository.NewAddressRepository(db)
	categories := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	carts := repository.NewCartRepository(db)
	orders := repository.NewOrderRepository(db)

	pub := &messaging.MemoryPublisher{}
	events := service.NewEventDispatcher(pub, N, time.Second)
	stop := events.Start(4)
	svc := service.NewOrderService(orders, carts, addrs, cfg.Checkout.Pricing(), events)

	run := uuid.NewString()[:8]
	cat := &model.Category{Name: "Bench " + run, Slug: "bench-" + run, IsActive: true}
	_ = categories.Create(ctx, cat)
	hot := &model.Product{
		Name:       "Hot item " + run,
		Slug:       "hot-" + run,
		SKU:        "HOT-" + run,
		Price:      decimal.NewFromInt(100),
		Stock:      STOCK,
		IsActive:   true,
		CategoryID: cat.ID,
	}
	_ = products.Create(ctx, hot)

	// 买家、地址、购物车
	buyers := make([]string, N)
	addrIDs := make([]string, N)
	for i := 0; i < N; i++ {
		u := &model.User{Name: fmt.Sprintf("buyer %d", i), Email: fmt.Sprintf("%s-%d@bench.local", run, i), Role: model.RoleCustomer}
		_ = users.Create(ctx, u)
		a := &model.Address{UserID: u.ID, FullName: u.Name, Phone: "0", Province: "GP", City: "JHB", Suburb: "CBD", StreetAddress: "1 Main", PostalCode: "2000"}
		_ = addrs.Create(ctx, a)
		_, _ = carts.Add(ctx, u.ID, hot.ID, 1)
		buyers[i], addrIDs[i] = u.ID, a.ID
	}

	var ok, conflicts, other atomic.Int64
	latCh := make(chan time.Duration, N)
	feed := make(chan int, N)
	for i := 0; i < N; i++ {
		feed <- i
	}
	close(feed)

	workers := CONC
	if workers > N {
		workers = N
	}
	done := make(chan struct{}, workers)
	t0 := time.Now()
	for w := 0; w < workers; w++ {
		go func() {
			for i := range feed {
				st := time.Now()
				_, err := svc.PlaceOrder(ctx, buyers[i], service.PlaceOrderInput{AddressID: addrIDs[i]})
				latCh <- time.Since(st)
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, service.ErrInsufficientStock):
					conflicts.Add(1)
				default:
					other.Add(1)
				}
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}
	total := time.Since(t0)
	close(latCh)
	lat := make([]time.Duration, 0, N)
	for d := range latCh {
		lat = append(lat, d)
	}

	drain := time.Now()
	_ = stop(context.Background())
	published, failed, dropped := events.Stats()

	var left model.Product
	_ = db.First(&left, "id = ?", hot.ID).Error

	fmt.Printf("N=%d, CONC=%d, STOCK=%d, driver=%s\n", N, CONC, STOCK, cfg.Database.Driver)
	fmt.Printf("PlaceOrder total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		total, total/time.Duration(N), pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99))
	fmt.Printf("placed=%d, insufficient=%d, other_errors=%d, stock_left=%d\n", ok.Load(), conflicts.Load(), other.Load(), left.Stock)
	fmt.Printf("events published=%d failed=%d dropped=%d drain=%v\n", published, failed, dropped, time.Since(drain))
	if int(ok.Load())+left.Stock != STOCK {
		fmt.Println("WARNING: placed orders and remaining stock do not add up")
		os.Exit(1)
	}
}
