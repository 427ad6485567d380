package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/app/repositories"
	"github.com/nutrieve/nutrieve/config"
	"github.com/nutrieve/nutrieve/database/seeders"
	"github.com/nutrieve/nutrieve/pkg/cache"
	"github.com/nutrieve/nutrieve/pkg/logger"
)

const (
	CatalogCacheKey = "catalog:active"
	// CatalogCacheTTL is the default; CATALOG_CACHE_TTL overrides it.
	CatalogCacheTTL = 10 * time.Minute
)

type ProductService struct {
	db       *gorm.DB
	products *repositories.ProductRepository
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db, products: repositories.NewProductRepository(db)}
}

// List returns the active catalog ordered by name, served from the cache
// when Redis is available.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := cache.Remember(ctx, CatalogCacheKey, config.Duration("CATALOG_CACHE_TTL", CatalogCacheTTL), s.products.ListActive)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (models.Product, error) {
	p, err := s.products.FindActive(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

// Seed inserts the missing standard catalog entries and drops the cached
// listing.
func (s *ProductService) Seed(ctx context.Context) (int, error) {
	created, err := seeders.SeedProducts(ctx, s.db)
	if err != nil {
		return 0, fmt.Errorf("seed products: %w", err)
	}
	if err := cache.Del(ctx, CatalogCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("invalidate catalog cache", "error", err)
	}
	logger.WithCtx(ctx).Info("catalog seeded", "created", created)
	return created, nil
}
