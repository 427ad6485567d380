package seeders

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/app/repositories"
)

func init() {
	Register("products", SeedProducts)
}

// CatalogEntry is one seedable product; Price is the 1kg price in rupees.
type CatalogEntry struct {
	Name  string
	Price int64
	Image string
}

// Catalog is the storefront's standard product list.
var Catalog = []CatalogEntry{
	{"Tomato Powder", 185, "Tomato_Powder.jpg"},
	{"Onion Powder", 230, "Onion_Powder.jpg"},
	{"Garlic Powder", 375, "Garlic_Powder.jpg"},
	{"Ginger Powder", 300, "Ginger_Powder.jpg"},
	{"Turmeric Powder", 185, "Turmeric_Powder.jpg"},
	{"Red Chili Powder", 375, "Red_Chili_Powder.jpg"},
	{"Coriander Powder", 250, "Coriander_Powder.jpg"},
	{"Black Pepper Powder", 1200, "Black_Pepper_Powder.jpg"},
	{"Amla Powder", 500, "Amla_Powder.jpg"},
	{"Ashwagandha Powder", 1400, "Ashwagandha_Powder.jpg"},
	{"Shatavari Powder", 1550, "Shatavari_Powder.jpg"},
	{"Safed Musli Powder", 2350, "Safed_Musli_Powder.jpg"},
	{"Brahmi Powder", 1050, "Brahmi_Powder.jpg"},
	{"Tulsi Powder", 325, "Tulsi_Powder.jpg"},
	{"Moringa Powder", 500, "Moringa_Powder.jpg"},
	{"Neem Powder", 235, "Neem_Powder.jpg"},
	{"Mint Powder", 245, "Mint_Powder.jpg"},
	{"Beetroot Powder", 315, "Beetroot_Powder.jpg"},
	{"Carrot Powder", 250, "Carrot_Powder.jpg"},
	{"Spinach Powder", 270, "Spinach_Powder.jpg"},
	{"Bitter Gourd Powder", 270, "Bitter_Gourd_Powder.jpg"},
	{"Apple Powder", 500, "Apple_Powder.jpg"},
	{"Banana Powder", 325, "Banana_Powder.jpg"},
	{"Coconut Powder", 500, "Coconut_Powder.jpg"},
	{"Green Chili Powder", 400, "Green_Chili_Powder.jpg"},
	{"White Pepper Powder", 400, "White_Pepper_Powder.jpg"},
	{"Onion Granules", 400, "Onion_Granules.jpg"},
	{"Green Pea Powder", 400, "Green_Peas_Powder.jpg"},
	{"Lemon Powder", 180, "Lemon_Powder.jpg"},
}

// SeedProducts inserts every Catalog entry whose name is not present yet
// and returns how many it created. Running it twice creates nothing.
func SeedProducts(ctx context.Context, db *gorm.DB) (int, error) {
	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := repositories.NewProductRepository(tx)

		existing, err := products.Names(ctx)
		if err != nil {
			return fmt.Errorf("load product names: %w", err)
		}

		var missing []*models.Product
		for _, e := range Catalog {
			if existing[e.Name] {
				continue
			}
			missing = append(missing, &models.Product{
				Name:          e.Name,
				Description:   fmt.Sprintf("Premium quality %s.", strings.ToLower(e.Name)),
				BasePrice:     decimal.NewFromInt(e.Price),
				Image:         e.Image,
				StockQuantity: 100,
				IsActive:      true,
			})
		}

		if err := products.Create(ctx, missing...); err != nil {
			return fmt.Errorf("insert products: %w", err)
		}
		created = len(missing)
		return nil
	})
	return created, err
}
