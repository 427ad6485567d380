package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/app/repositories"
)

type AddressInput struct {
	FullName  string `json:"full_name" validate:"required,max=255"`
	Phone     string `json:"phone"     validate:"required,min=10,max=15"`
	FlatNo    string `json:"flat_no"   validate:"required,max=100"`
	Street    string `json:"street"    validate:"required,max=255"`
	Landmark  string `json:"landmark"  validate:"nullable,max=255"`
	City      string `json:"city"      validate:"required,max=100"`
	State     string `json:"state"     validate:"required,max=100"`
	Pincode   string `json:"pincode"   validate:"required,digits=6"`
	IsDefault bool   `json:"is_default"`
}

type AddressService struct {
	db *gorm.DB
}

func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

// Create stores an address. The user's first address, or one flagged
// is_default, becomes the only default.
func (s *AddressService) Create(ctx context.Context, userID uint, in AddressInput) (models.Address, error) {
	addr := models.Address{
		UserID:    userID,
		FullName:  strings.TrimSpace(in.FullName),
		Phone:     strings.TrimSpace(in.Phone),
		FlatNo:    strings.TrimSpace(in.FlatNo),
		Street:    strings.TrimSpace(in.Street),
		Landmark:  strings.TrimSpace(in.Landmark),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Pincode:   in.Pincode,
		IsDefault: in.IsDefault,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		addresses := repositories.NewAddressRepository(tx)

		n, err := addresses.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			addr.IsDefault = true
		}
		if addr.IsDefault {
			if err := addresses.UnsetDefaults(ctx, userID); err != nil {
				return err
			}
		}
		return addresses.Create(ctx, &addr)
	})
	if err != nil {
		return models.Address{}, fmt.Errorf("create address: %w", err)
	}
	return addr, nil
}

func (s *AddressService) List(ctx context.Context, userID uint) ([]models.Address, error) {
	out, err := repositories.NewAddressRepository(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return out, nil
}

// SetDefault makes id the user's only default address.
func (s *AddressService) SetDefault(ctx context.Context, userID, id uint) (models.Address, error) {
	var addr models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		addresses := repositories.NewAddressRepository(tx)

		var err error
		addr, err = addresses.Find(ctx, userID, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrAddressNotFound
			}
			return err
		}
		if err := addresses.UnsetDefaults(ctx, userID); err != nil {
			return err
		}
		if err := addresses.MarkDefault(ctx, id); err != nil {
			return err
		}
		addr.IsDefault = true
		return nil
	})
	if err != nil {
		return models.Address{}, fmt.Errorf("set default address: %w", err)
	}
	return addr, nil
}
