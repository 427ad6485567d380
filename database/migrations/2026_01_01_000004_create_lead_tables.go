package migrations

import (
	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/pkg/migration"
)

func init() {
	migration.Register("2026_01_01_000004_create_lead_tables", &CreateLeadTables{})
}

type CreateLeadTables struct{}

func (m *CreateLeadTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Lead{}, &models.LeadActivity{})
}

func (m *CreateLeadTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.LeadActivity{}, &models.Lead{})
}
