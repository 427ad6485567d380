package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrieve/nutrieve/database/seeders"
	"github.com/nutrieve/nutrieve/internal/testdb"
)

func TestProductListAndGet(t *testing.T) {
	db := testdb.Open(t)
	svc := NewProductService(db)
	ctx := context.Background()

	onion := createProduct(t, db, "Onion Powder", "230")
	amla := createProduct(t, db, "Amla Powder", "500")
	hidden := createProduct(t, db, "Brahmi Powder", "1050")
	require.NoError(t, db.Model(&hidden).Update("is_active", false).Error)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, amla.ID, list[0].ID, "ordered by name")
	assert.Equal(t, onion.ID, list[1].ID)

	got, err := svc.Get(ctx, onion.ID)
	require.NoError(t, err)
	assert.True(t, got.BasePrice.Equal(dec("230")))

	_, err = svc.Get(ctx, hidden.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.Get(ctx, 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductSeed(t *testing.T) {
	db := testdb.Open(t)
	svc := NewProductService(db)
	ctx := context.Background()

	n, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(seeders.Catalog), n)

	n, err = svc.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(seeders.Catalog))
}
