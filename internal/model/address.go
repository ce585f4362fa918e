package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddressType 地址类型
type AddressType string

const (
	AddressHome  AddressType = "HOME"
	AddressWork  AddressType = "WORK"
	AddressOther AddressType = "OTHER"
)

// Address 收货地址
type Address struct {
	ID            string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string      `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Type          AddressType `json:"type" gorm:"type:varchar(8);not null;default:HOME"`
	FullName      string      `json:"full_name" gorm:"type:varchar(120);not null"`
	Phone         string      `json:"phone" gorm:"type:varchar(32);not null"`
	Province      string      `json:"province" gorm:"type:varchar(64);not null"`
	City          string      `json:"city" gorm:"type:varchar(64);not null"`
	Suburb        string      `json:"suburb" gorm:"type:varchar(64);not null"`
	StreetAddress string      `json:"street_address" gorm:"type:varchar(255);not null"`
	UnitNumber    string      `json:"unit_number" gorm:"type:varchar(32)"`
	PostalCode    string      `json:"postal_code" gorm:"type:varchar(16);not null"`
	IsDefault     bool        `json:"is_default" gorm:"not null;default:false"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (Address) TableName() string { return "addresses" }

func (a *Address) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Type == "" {
		a.Type = AddressHome
	}
	return nil
}

// Snapshot 下单时冻结的地址文本，之后修改地址不影响历史订单
func (a *Address) Snapshot() string {
	street := a.StreetAddress
	if a.UnitNumber != "" {
		street += ", " + a.UnitNumber
	}
	lines := []string{a.FullName, a.Phone, street, a.Suburb, a.City, a.Province, a.PostalCode}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
