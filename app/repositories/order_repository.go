package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/pkg/orm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order together with its Items.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

// ListByUser returns the user's orders newest first, items included.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Get(&orders)
	return orders, err
}

func (r *OrderRepository) Find(ctx context.Context, userID, id uint) (models.Order, error) {
	var o models.Order
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&o)
	return o, translate(err)
}

func (r *OrderRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return orm.New(r.db).WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count()
}
