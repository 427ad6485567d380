package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/app/pricing"
	"github.com/nutrieve/nutrieve/app/repositories"
	"github.com/nutrieve/nutrieve/pkg/logger"
)

type AddToCartInput struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Size      string `json:"size"       validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,gte=1"`
}

// UpdateCartInput carries the new quantity. Quantity is a pointer so an
// absent field can be told apart from an explicit 0, which removes the line.
type UpdateCartInput struct {
	Quantity *int `json:"quantity"`
}

// CartLine is a cart item priced for display.
type CartLine struct {
	ID          uint             `json:"id"`
	ProductID   uint             `json:"product_id"`
	ProductName string           `json:"product_name"`
	Image       string           `json:"image"`
	Size        pricing.PackSize `json:"size"`
	Quantity    int              `json:"quantity"`
	BasePrice   decimal.Decimal  `json:"base_price"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	LineTotal   decimal.Decimal  `json:"line_total"`
}

type Cart struct {
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// List prices the user's cart. Lines whose product is gone are left out.
func (s *CartService) List(ctx context.Context, userID uint) (Cart, error) {
	items, err := repositories.NewCartRepository(s.db).ListByUser(ctx, userID)
	if err != nil {
		return Cart{}, fmt.Errorf("list cart: %w", err)
	}

	cart := Cart{Items: []CartLine{}}
	var totals []decimal.Decimal
	for _, it := range items {
		if it.Product.ID == 0 {
			continue
		}
		size, err := pricing.ParsePackSize(it.Size)
		if err != nil {
			logger.WithCtx(ctx).Warn("cart line has unknown pack size", "cart_item_id", it.ID, "size", it.Size)
			continue
		}
		unit, _ := pricing.UnitPrice(it.Product.BasePrice, size)
		line := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))

		cart.Items = append(cart.Items, CartLine{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Image:       it.Product.Image,
			Size:        size,
			Quantity:    it.Quantity,
			BasePrice:   it.Product.BasePrice,
			UnitPrice:   unit,
			LineTotal:   line,
		})
		totals = append(totals, line)
	}

	inv := pricing.Compute(totals)
	cart.Subtotal, cart.Tax, cart.Total = inv.Subtotal, inv.Tax, inv.Total
	return cart, nil
}

// Add puts quantity of (product, size) in the cart, adding to an existing
// line when there is one. created reports whether a new line was made.
func (s *CartService) Add(ctx context.Context, userID uint, in AddToCartInput) (item models.CartItem, created bool, err error) {
	size, err := pricing.ParsePackSize(in.Size)
	if err != nil {
		return models.CartItem{}, false, err
	}
	if in.Quantity < 1 {
		return models.CartItem{}, false, ValidationError{"quantity": "The quantity must be at least 1."}
	}

	// A concurrent Add can insert the same line between our lookup and our
	// insert. The unique index rejects ours and the retry merges into theirs.
	for attempt := 0; ; attempt++ {
		item, created, err = s.add(ctx, userID, size, in)
		if errors.Is(err, repositories.ErrDuplicate) && attempt == 0 {
			logger.WithCtx(ctx).Debug("cart line inserted concurrently, merging", "user_id", userID, "product_id", in.ProductID)
			continue
		}
		break
	}
	if err != nil {
		return models.CartItem{}, false, fmt.Errorf("add to cart: %w", err)
	}
	return item, created, nil
}

func (s *CartService) add(ctx context.Context, userID uint, size pricing.PackSize, in AddToCartInput) (item models.CartItem, created bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repositories.NewProductRepository(tx).FindActive(ctx, in.ProductID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		carts := repositories.NewCartRepository(tx)
		existing, err := carts.FindLine(ctx, userID, in.ProductID, string(size))
		switch {
		case err == nil:
			if err := carts.AddQuantity(ctx, existing.ID, in.Quantity); err != nil {
				return err
			}
			item, err = carts.Find(ctx, userID, existing.ID)
			return err
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}

		item = models.CartItem{UserID: userID, ProductID: in.ProductID, Size: string(size), Quantity: in.Quantity}
		created = true
		return carts.Create(ctx, &item)
	})
	if err != nil {
		return models.CartItem{}, false, err
	}
	return item, created, nil
}

// Update replaces a line's quantity. A quantity of zero or less removes the
// line and reports removed=true.
func (s *CartService) Update(ctx context.Context, userID, id uint, quantity int) (removed bool, err error) {
	carts := repositories.NewCartRepository(s.db)

	if quantity <= 0 {
		n, err := carts.Delete(ctx, userID, id)
		if err != nil {
			return false, fmt.Errorf("update cart: %w", err)
		}
		if n == 0 {
			return false, ErrCartItemNotFound
		}
		return true, nil
	}

	if _, err := carts.Find(ctx, userID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, ErrCartItemNotFound
		}
		return false, fmt.Errorf("update cart: %w", err)
	}
	if err := carts.SetQuantity(ctx, id, quantity); err != nil {
		return false, fmt.Errorf("update cart: %w", err)
	}
	return false, nil
}

func (s *CartService) Remove(ctx context.Context, userID, id uint) error {
	n, err := repositories.NewCartRepository(s.db).Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// Clear empties the cart and returns how many lines were removed.
func (s *CartService) Clear(ctx context.Context, userID uint) (int64, error) {
	n, err := repositories.NewCartRepository(s.db).Clear(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return n, nil
}
