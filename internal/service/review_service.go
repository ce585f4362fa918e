package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/storefront/internal/cache"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
)

// ReviewService 商品评价
type ReviewService interface {
	Submit(ctx context.Context, userID, productID string, rating int, comment string) (*model.ProductReview, error)
}

type reviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	cache    cache.Cache
}

func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, c cache.Cache) ReviewService {
	if c == nil {
		c = cache.Nop{}
	}
	return &reviewService{reviews: reviews, products: products, cache: c}
}

func (s *reviewService) Submit(ctx context.Context, userID, productID string, rating int, comment string) (*model.ProductReview, error) {
	if rating < 1 || rating > 5 {
		return nil, invalid(ErrInvalidInput, "Rating must be between 1 and 5")
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	r := &model.ProductReview{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.reviews.Upsert(ctx, r); err != nil {
		return nil, err
	}
	s.cache.DeletePrefix(ctx, cache.PrefixProduct+p.Slug)
	return r, nil
}
