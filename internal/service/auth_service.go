package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/pkg/logger"
	"github.com/d60-Lab/storefront/pkg/token"
)

// DefaultHashCost 密码哈希强度
const DefaultHashCost = 12

// Principal 当前请求的调用者，每次请求从用户表刷新
type Principal struct {
	UserID string     `json:"id"`
	Email  string     `json:"email"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role"`
	Phone  string     `json:"phone,omitempty"`
	Image  string     `json:"image,omitempty"`
}

func (p *Principal) IsAdmin() bool { return p != nil && p.Role == model.RoleAdmin }

func principalOf(u *model.User) *Principal {
	return &Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Phone: u.Phone, Image: u.Image}
}

// Session 登录结果
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// RegisterInput 注册参数
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// FederatedIdentity 第三方登录返回的身份
type FederatedIdentity struct {
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// ProfileInput 资料修改，nil 表示不修改
type ProfileInput struct {
	Name  *string
	Phone *string
	Image *string
}

// AuthService 认证与个人资料
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	SignInFederated(ctx context.Context, id FederatedIdentity) (*Session, error)
	// Authenticate 校验令牌并从用户表刷新调用者信息
	Authenticate(ctx context.Context, rawToken string) (*Principal, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *token.Manager
	hashCost int
	now      func() time.Time
}

// NewAuthService hashCost 为 0 时使用 DefaultHashCost
func NewAuthService(users repository.UserRepository, tokens *token.Manager, hashCost int) AuthService {
	if hashCost == 0 {
		hashCost = DefaultHashCost
	}
	return &authService{users: users, tokens: tokens, hashCost: hashCost, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid(ErrInvalidInput, "A valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, invalid(ErrInvalidInput, "Password must be at least 8 characters")
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, err
	}
	pw := string(hash)
	u := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Phone:    strings.TrimSpace(in.Phone),
		Password: &pw,
		Role:     model.RoleCustomer,
		Provider: model.ProviderCredentials,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	logger.Info("user registered", zap.String("user_id", u.ID))
	return s.issue(u)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.Password == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *authService) SignInFederated(ctx context.Context, id FederatedIdentity) (*Session, error) {
	email := normalizeEmail(id.Email)
	if email == "" {
		return nil, invalid(ErrInvalidInput, "Identity provider returned no email")
	}
	u := &model.User{
		Name:     id.Name,
		Email:    email,
		Image:    id.Picture,
		Role:     model.RoleCustomer,
		Provider: model.ProviderGoogle,
	}
	if id.EmailVerified {
		now := s.now()
		u.EmailVerified = &now
	}
	saved, err := s.users.UpsertFederated(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.issue(saved)
}

func (s *authService) issue(u *model.User) (*Session, error) {
	raw, err := s.tokens.Issue(u.ID, token.Claims{
		Email:   u.Email,
		Name:    u.Name,
		Role:    string(u.Role),
		Phone:   u.Phone,
		Picture: u.Image,
	})
	if err != nil {
		return nil, err
	}
	return &Session{Token: raw, ExpiresAt: s.now().Add(s.tokens.TTL()), User: u}, nil
}

func (s *authService) Authenticate(ctx context.Context, rawToken string) (*Principal, error) {
	if rawToken == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return principalOf(u), nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid(ErrInvalidInput, "Name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Image != nil {
		updates["image"] = strings.TrimSpace(*in.Image)
	}
	if len(updates) > 0 {
		if err := s.users.UpdateProfile(ctx, userID, updates); err != nil {
			return nil, err
		}
	}
	return s.Profile(ctx, userID)
}
