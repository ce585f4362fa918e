package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role 用户角色
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleCustomer  Role = "CUSTOMER"
	RoleModerator Role = "MODERATOR"
)

// 登录来源
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

// User 用户；第三方登录的用户没有密码
type User struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string     `json:"name" gorm:"type:varchar(120)"`
	Email         string     `json:"email" gorm:"type:varchar(191);uniqueIndex;not null"`
	Password      *string    `json:"-" gorm:"type:varchar(255)"`
	Image         string     `json:"image" gorm:"type:varchar(512)"`
	Phone         string     `json:"phone" gorm:"type:varchar(32)"`
	Role          Role       `json:"role" gorm:"type:varchar(16);index;not null;default:CUSTOMER"`
	Provider      string     `json:"provider" gorm:"type:varchar(16);not null;default:credentials"`
	EmailVerified *time.Time `json:"email_verified,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Addresses []Address `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	if u.Provider == "" {
		u.Provider = ProviderCredentials
	}
	return nil
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
