package migrations

import (
	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/pkg/migration"
)

func init() {
	migration.Register("2026_01_01_000002_create_catalog_tables", &CreateCatalogTables{})
}

// CreateCatalogTables creates products and the cart lines that point at them.
type CreateCatalogTables struct{}

func (m *CreateCatalogTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{}, &models.CartItem{})
}

func (m *CreateCatalogTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.CartItem{}, &models.Product{})
}
