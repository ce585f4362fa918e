package service

import (
	"context"

	"github.com/d60-Lab/storefront/config"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
)

// CartView 购物车及金额汇总
type CartView struct {
	Items     []*model.CartItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Totals
}

// CartService 购物车服务；加购时的库存检查仅作提示，下单时才做最终校验
type CartService interface {
	Get(ctx context.Context, userID string) (*CartView, error)
	Add(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error)
	Update(ctx context.Context, userID, cartItemID string, quantity int) (*model.CartItem, error)
	Remove(ctx context.Context, userID, cartItemID string) error
	Count(ctx context.Context, userID string) (int64, error)
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	pricing  config.Pricing
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, pricing config.Pricing) CartService {
	return &cartService{carts: carts, products: products, pricing: pricing}
}

func (s *cartService) Get(ctx context.Context, userID string) (*CartView, error) {
	items, err := s.carts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &CartView{Items: items, Totals: ComputeTotals(s.pricing, CartSubtotal(items))}
	for _, it := range items {
		view.ItemCount += it.Quantity
	}
	return view, nil
}

func (s *cartService) Add(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	if productID == "" || quantity < 1 {
		return nil, invalid(ErrInvalidInput, "Product ID and quantity are required")
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	if p.Stock < quantity {
		return nil, invalid(ErrInsufficientStock, "Insufficient stock")
	}
	return s.carts.Add(ctx, userID, productID, quantity)
}

func (s *cartService) Update(ctx context.Context, userID, cartItemID string, quantity int) (*model.CartItem, error) {
	if cartItemID == "" || quantity < 1 {
		return nil, invalid(ErrInvalidInput, "Cart item ID and quantity are required")
	}
	line, err := s.carts.GetForUser(ctx, cartItemID, userID)
	if err != nil {
		return nil, notFound(err, ErrCartItemNotFound)
	}
	if line.Product == nil || quantity > line.Product.Stock {
		return nil, invalid(ErrInsufficientStock, "Requested quantity exceeds available stock")
	}
	return s.carts.SetQuantity(ctx, line.ID, quantity)
}

func (s *cartService) Remove(ctx context.Context, userID, cartItemID string) error {
	if cartItemID == "" {
		return invalid(ErrInvalidInput, "Cart item ID is required")
	}
	return notFound(s.carts.Delete(ctx, cartItemID, userID), ErrCartItemNotFound)
}

func (s *cartService) Count(ctx context.Context, userID string) (int64, error) {
	return s.carts.Count(ctx, userID)
}
