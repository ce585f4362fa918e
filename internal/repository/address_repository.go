package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/internal/model"
)

// AddressRepository 收货地址仓储
type AddressRepository interface {
	Create(ctx context.Context, a *model.Address) error
	Update(ctx context.Context, a *model.Address) error
	Delete(ctx context.Context, id, userID string) error
	// GetForUser 只返回属于该用户的地址
	GetForUser(ctx context.Context, id, userID string) (*model.Address, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Address, error)
	InUse(ctx context.Context, id string) (bool, error)
}

type addressRepository struct{ db *gorm.DB }

func NewAddressRepository(db *gorm.DB) AddressRepository { return &addressRepository{db: db} }

// Create 新建地址；设为默认时在同一事务里清除其他默认
func (r *addressRepository) Create(ctx context.Context, a *model.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.IsDefault {
			if err := clearDefault(tx, a.UserID, ""); err != nil {
				return err
			}
		}
		return tx.Create(a).Error
	})
}

func (r *addressRepository) Update(ctx context.Context, a *model.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.IsDefault {
			if err := clearDefault(tx, a.UserID, a.ID); err != nil {
				return err
			}
		}
		return tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", a.ID, a.UserID).
			Select("type", "full_name", "phone", "province", "city", "suburb",
				"street_address", "unit_number", "postal_code", "is_default").
			Updates(a).Error
	})
}

func (r *addressRepository) Delete(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *addressRepository) GetForUser(ctx context.Context, id, userID string) (*model.Address, error) {
	var a model.Address
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID string) ([]*model.Address, error) {
	var res []*model.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Find(&res).Error
	return res, err
}

func (r *addressRepository) InUse(ctx context.Context, id string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Where("address_id = ?", id).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func clearDefault(tx *gorm.DB, userID, exceptID string) error {
	q := tx.Model(&model.Address{}).Where("user_id = ? AND is_default = ?", userID, true)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	return q.Update("is_default", false).Error
}
