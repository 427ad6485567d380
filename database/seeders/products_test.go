package seeders_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/database/seeders"
	"github.com/nutrieve/nutrieve/internal/testdb"
)

func TestSeedProductsIsIdempotent(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Product{Name: "Turmeric Powder", BasePrice: decimalOf(t, "199"), IsActive: true}).Error)

	n, err := seeders.SeedProducts(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(seeders.Catalog)-1, n)

	n, err = seeders.SeedProducts(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, n)

	var turmeric models.Product
	require.NoError(t, db.Where("name = ?", "Turmeric Powder").First(&turmeric).Error)
	assert.Equal(t, "199", turmeric.BasePrice.String(), "existing rows are left alone")

	var amla models.Product
	require.NoError(t, db.Where("name = ?", "Amla Powder").First(&amla).Error)
	assert.Equal(t, "Premium quality amla powder.", amla.Description)
	assert.True(t, amla.IsActive)
}

func TestRunAllReportsProgress(t *testing.T) {
	db := testdb.Open(t)

	var out bytes.Buffer
	require.NoError(t, seeders.RunAll(context.Background(), db, &out))
	assert.Contains(t, out.String(), "Running seeder: products")
	assert.Contains(t, out.String(), "created")
}

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
