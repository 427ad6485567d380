package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/pkg/orm"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// ListByUser returns the user's lines in insertion order. Product is
// preloaded and left zero when the product no longer exists.
func (r *CartRepository) ListByUser(ctx context.Context, userID uint) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.CartItem{}).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Get(&items)
	return items, err
}

func (r *CartRepository) Find(ctx context.Context, userID, id uint) (models.CartItem, error) {
	var item models.CartItem
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item)
	return item, translate(err)
}

// FindLine looks up the (user, product, size) line.
func (r *CartRepository) FindLine(ctx context.Context, userID, productID uint, size string) (models.CartItem, error) {
	var item models.CartItem
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ? AND size = ?", userID, productID, size).
		First(&item)
	return item, translate(err)
}

func (r *CartRepository) Create(ctx context.Context, item *models.CartItem) error {
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

// SetQuantity replaces the quantity of one line.
func (r *CartRepository) SetQuantity(ctx context.Context, id uint, quantity int) error {
	return r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).Update("quantity", quantity).Error
}

// AddQuantity increments the quantity of one line in place.
func (r *CartRepository) AddQuantity(ctx context.Context, id uint, n int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", n)).Error
}

// Delete removes one line owned by userID and reports how many rows went.
func (r *CartRepository) Delete(ctx context.Context, userID, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// DeleteIDs removes exactly the given lines of userID.
func (r *CartRepository) DeleteIDs(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *CartRepository) Clear(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
