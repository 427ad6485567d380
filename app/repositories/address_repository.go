package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/pkg/orm"
)

type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// ListByUser puts the default address first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID uint) ([]models.Address, error) {
	out := []models.Address{}
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("id ASC").
		Get(&out)
	return out, err
}

func (r *AddressRepository) Find(ctx context.Context, userID, id uint) (models.Address, error) {
	var a models.Address
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&a)
	return a, translate(err)
}

func (r *AddressRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return orm.New(r.db).WithContext(ctx).Model(&models.Address{}).Where("user_id = ?", userID).Count()
}

// UnsetDefaults clears is_default on every address of userID.
func (r *AddressRepository) UnsetDefaults(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

func (r *AddressRepository) MarkDefault(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Address{}).Where("id = ?", id).Update("is_default", true).Error
}

func (r *AddressRepository) Create(ctx context.Context, a *models.Address) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}
