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
	"github.com/nutrieve/nutrieve/pkg/mail"
	"github.com/nutrieve/nutrieve/pkg/metrics"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNothingToCheckout = errors.New("no cart line can be ordered")
	ErrCartChanged       = errors.New("cart changed during checkout")
)

// Reasons a cart line is left out of an order.
const (
	SkipProductMissing  = "product_missing"
	SkipProductInactive = "product_inactive"
)

type CheckoutInput struct {
	AddressID uint `json:"address_id" validate:"required"`
}

// SkippedLine is a cart line dropped from the order and removed from the
// cart.
type SkippedLine struct {
	CartItemID uint   `json:"cart_item_id"`
	ProductID  uint   `json:"product_id"`
	Reason     string `json:"reason"`
}

type CheckoutResult struct {
	Order   models.Order    `json:"order"`
	CGST    decimal.Decimal `json:"cgst"`
	SGST    decimal.Decimal `json:"sgst"`
	Skipped []SkippedLine   `json:"skipped"`
}

type CheckoutService struct {
	db          *gorm.DB
	mailer      *mail.Mailer
	frontendURL string
}

func NewCheckoutService(db *gorm.DB, mailer *mail.Mailer, frontendURL string) *CheckoutService {
	return &CheckoutService{db: db, mailer: mailer, frontendURL: frontendURL}
}

// Checkout turns the user's cart into a pending order in one transaction.
// On any error nothing is written and the cart is left as it was.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, in CheckoutInput) (CheckoutResult, error) {
	var result CheckoutResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := repositories.NewCartRepository(tx)

		lines, err := carts.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		if _, err := repositories.NewAddressRepository(tx).Find(ctx, userID, in.AddressID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrAddressNotFound
			}
			return fmt.Errorf("load address: %w", err)
		}

		ids := make([]uint, 0, len(lines))
		var (
			items  []models.OrderItem
			totals []decimal.Decimal
		)
		result.Skipped = []SkippedLine{}
		for _, line := range lines {
			ids = append(ids, line.ID)

			switch {
			case line.Product.ID == 0:
				result.Skipped = append(result.Skipped, SkippedLine{line.ID, line.ProductID, SkipProductMissing})
				continue
			case !line.Product.IsActive:
				result.Skipped = append(result.Skipped, SkippedLine{line.ID, line.ProductID, SkipProductInactive})
				continue
			}

			size, err := pricing.ParsePackSize(line.Size)
			if err != nil {
				return fmt.Errorf("cart item %d: %w", line.ID, err)
			}
			unit, err := pricing.UnitPrice(line.Product.BasePrice, size)
			if err != nil {
				return fmt.Errorf("cart item %d: %w", line.ID, err)
			}
			total := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))

			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				Size:        string(size),
				Quantity:    line.Quantity,
				Price:       unit,
				LineTotal:   total,
			})
			totals = append(totals, total)
		}
		if len(items) == 0 {
			return ErrNothingToCheckout
		}

		inv := pricing.Compute(totals)
		order := models.Order{
			UserID:         userID,
			AddressID:      in.AddressID,
			SubtotalAmount: inv.Subtotal,
			TaxAmount:      inv.Tax,
			TotalAmount:    inv.Total,
			Status:         models.OrderPending,
			PaymentStatus:  models.PaymentPending,
			Items:          items,
		}
		if err := repositories.NewOrderRepository(tx).Create(ctx, &order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		n, err := carts.DeleteIDs(ctx, userID, ids)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if n != int64(len(ids)) {
			return ErrCartChanged
		}

		result.Order = order
		result.CGST, result.SGST = inv.Split()
		return nil
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	log := logger.WithCtx(ctx)
	for _, sk := range result.Skipped {
		log.Warn("cart line skipped at checkout",
			"order_id", result.Order.ID, "cart_item_id", sk.CartItemID, "product_id", sk.ProductID, "reason", sk.Reason)
	}
	log.Info("order created", "order_id", result.Order.ID, "total", result.Order.TotalAmount.String())
	metrics.RecordOrder(result.Order.TotalAmount)

	s.sendConfirmation(ctx, userID, result.Order)
	return result, nil
}

// sendConfirmation mails the order summary. Failures are logged only.
func (s *CheckoutService) sendConfirmation(ctx context.Context, userID uint, order models.Order) {
	log := logger.WithCtx(ctx)

	user, err := repositories.NewUserRepository(s.db).FindByID(ctx, userID)
	if err != nil {
		log.Error("load user for order email", "order_id", order.ID, "error", err)
		return
	}
	if err := s.mailer.Send(ctx, orderConfirmationEmail(user, order, s.frontendURL+"/track-orders")); err != nil {
		log.Error("send order confirmation", "order_id", order.ID, "error", err)
	}
}

// Orders returns the user's orders newest first.
func (s *CheckoutService) Orders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := repositories.NewOrderRepository(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *CheckoutService) Order(ctx context.Context, userID, id uint) (models.Order, error) {
	o, err := repositories.NewOrderRepository(s.db).Find(ctx, userID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Order{}, ErrOrderNotFound
	}
	return o, err
}
