package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/pkg/orm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListActive returns the storefront catalog ordered by name.
func (r *ProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Order("name ASC").
		Get(&products)
	return products, err
}

func (r *ProductRepository) FindActive(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND is_active = ?", id, true).
		First(&p)
	return p, translate(err)
}

// Names returns the set of every product name, active or not.
func (r *ProductRepository) Names(ctx context.Context) (map[string]bool, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out, nil
}

func (r *ProductRepository) Create(ctx context.Context, products ...*models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(products).Error)
}
