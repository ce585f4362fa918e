package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/storefront/internal/model"
)

// ReviewStats 评分汇总
type ReviewStats struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// ReviewRepository 商品评价仓储
type ReviewRepository interface {
	// Upsert 每个用户对同一商品只保留一条评价
	Upsert(ctx context.Context, r *model.ProductReview) error
	ListVisible(ctx context.Context, productID string, limit int) ([]*model.ProductReview, error)
	Stats(ctx context.Context, productID string) (*ReviewStats, error)
}

type reviewRepository struct{ db *gorm.DB }

func NewReviewRepository(db *gorm.DB) ReviewRepository { return &reviewRepository{db: db} }

func (r *reviewRepository) Upsert(ctx context.Context, rv *model.ProductReview) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rating":     rv.Rating,
			"comment":    rv.Comment,
			"updated_at": time.Now(),
		}),
	}).Create(rv).Error
}

func (r *reviewRepository) ListVisible(ctx context.Context, productID string, limit int) ([]*model.ProductReview, error) {
	var res []*model.ProductReview
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ? AND is_reported = ?", productID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *reviewRepository) Stats(ctx context.Context, productID string) (*ReviewStats, error) {
	var s ReviewStats
	err := r.db.WithContext(ctx).
		Model(&model.ProductReview{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ? AND is_reported = ?", productID, false).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
