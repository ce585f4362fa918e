package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
)

// AddressInput 地址参数
type AddressInput struct {
	Type          model.AddressType
	FullName      string
	Phone         string
	Province      string
	City          string
	Suburb        string
	StreetAddress string
	UnitNumber    string
	PostalCode    string
	IsDefault     bool
}

// AddressService 收货地址
type AddressService interface {
	List(ctx context.Context, userID string) ([]*model.Address, error)
	Create(ctx context.Context, userID string, in AddressInput) (*model.Address, error)
	Update(ctx context.Context, userID, id string, in AddressInput) (*model.Address, error)
	Delete(ctx context.Context, userID, id string) error
}

type addressService struct {
	addresses repository.AddressRepository
}

func NewAddressService(addresses repository.AddressRepository) AddressService {
	return &addressService{addresses: addresses}
}

func (s *addressService) List(ctx context.Context, userID string) ([]*model.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

func (s *addressService) Create(ctx context.Context, userID string, in AddressInput) (*model.Address, error) {
	a := &model.Address{UserID: userID}
	if err := fillAddress(a, in); err != nil {
		return nil, err
	}
	existing, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// 第一个地址自动成为默认地址
	if len(existing) == 0 {
		a.IsDefault = true
	}
	if err := s.addresses.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *addressService) Update(ctx context.Context, userID, id string, in AddressInput) (*model.Address, error) {
	a, err := s.addresses.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, notFound(err, ErrAddressNotFound)
	}
	if err := fillAddress(a, in); err != nil {
		return nil, err
	}
	if err := s.addresses.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.addresses.GetForUser(ctx, id, userID)
}

func (s *addressService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.addresses.GetForUser(ctx, id, userID); err != nil {
		return notFound(err, ErrAddressNotFound)
	}
	used, err := s.addresses.InUse(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return invalid(ErrAddressInUse, "Address is used by an existing order")
	}
	return notFound(s.addresses.Delete(ctx, id, userID), ErrAddressNotFound)
}

func fillAddress(a *model.Address, in AddressInput) error {
	required := map[string]string{
		"full name":      in.FullName,
		"phone":          in.Phone,
		"province":       in.Province,
		"city":           in.City,
		"suburb":         in.Suburb,
		"street address": in.StreetAddress,
		"postal code":    in.PostalCode,
	}
	for _, field := range []string{"full name", "phone", "street address", "suburb", "city", "province", "postal code"} {
		if strings.TrimSpace(required[field]) == "" {
			return invalid(ErrInvalidInput, "Address %s is required", field)
		}
	}
	switch in.Type {
	case "":
		in.Type = model.AddressHome
	case model.AddressHome, model.AddressWork, model.AddressOther:
	default:
		return invalid(ErrInvalidInput, "Invalid address type %q", in.Type)
	}
	a.Type = in.Type
	a.FullName = strings.TrimSpace(in.FullName)
	a.Phone = strings.TrimSpace(in.Phone)
	a.Province = strings.TrimSpace(in.Province)
	a.City = strings.TrimSpace(in.City)
	a.Suburb = strings.TrimSpace(in.Suburb)
	a.StreetAddress = strings.TrimSpace(in.StreetAddress)
	a.UnitNumber = strings.TrimSpace(in.UnitNumber)
	a.PostalCode = strings.TrimSpace(in.PostalCode)
	a.IsDefault = in.IsDefault
	return nil
}
