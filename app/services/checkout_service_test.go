package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/app/pricing"
	"github.com/nutrieve/nutrieve/internal/testdb"
)

func countRows(t *testing.T, db *gorm.DB, model any, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestCheckoutTurmericExample(t *testing.T) {
	db := testdb.Open(t)
	mailer, fake := newMailer()
	svc := NewCheckoutService(db, mailer, "https://nutrieve.in")
	ctx := context.Background()

	u := createUser(t, db, "asha@nutrieve.in", models.RoleCustomer)
	addr := createAddress(t, db, u.ID)
	turmeric := createProduct(t, db, "Turmeric Powder", "185")
	addLine(t, db, u.ID, turmeric.ID, "200gm", 2)

	res, err := svc.Checkout(ctx, u.ID, CheckoutInput{AddressID: addr.ID})
	require.NoError(t, err)

	o := res.Order
	assert.True(t, o.SubtotalAmount.Equal(dec("74")))
	assert.True(t, o.TotalAmount.Equal(dec("87.32")), "total %s", o.TotalAmount)
	assert.True(t, o.TaxAmount.Equal(dec("13.32")))
	assert.True(t, res.CGST.Add(res.SGST).Equal(o.TaxAmount))
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Equal(t, models.PaymentPending, o.PaymentStatus)
	assert.Empty(t, res.Skipped)

	require.Len(t, o.Items, 1)
	assert.Equal(t, "Turmeric Powder", o.Items[0].ProductName)
	assert.True(t, o.Items[0].Price.Equal(dec("37")))

	assert.Zero(t, countRows(t, db, &models.CartItem{}, u.ID), "cart is emptied")
	assert.EqualValues(t, 1, countRows(t, db, &models.Order{}, u.ID))

	msg, ok := fake.Last()
	require.True(t, ok)
	assert.Contains(t, msg.HTMLBody, "https://nutrieve.in/track-orders")
	assert.Contains(t, msg.SubjectLine, "confirmed")

	stored, err := svc.Order(ctx, u.ID, o.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(dec("87.32")))
	require.Len(t, stored.Items, 1)
}

func TestCheckoutEmptyCartCreatesNothing(t *testing.T) {
	db := testdb.Open(t)
	mailer, fake := newMailer()
	svc := NewCheckoutService(db, mailer, "")
	u := createUser(t, db, "asha@nutrieve.in", models.RoleCustomer)
	addr := createAddress(t, db, u.ID)

	_, err := svc.Checkout(context.Background(), u.ID, CheckoutInput{AddressID: addr.ID})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, countRows(t, db, &models.Order{}, u.ID))
	assert.Empty(t, fake.Sent())
}

func TestCheckoutRequiresOwnAddress(t *testing.T) {
	db := testdb.Open(t)
	mailer, _ := newMailer()
	svc := NewCheckoutService(db, mailer, "")
	u := createUser(t, db, "asha@nutrieve.in", models.RoleCustomer)
	other := createUser(t, db, "ravi@nutrieve.in", models.RoleCustomer)
	theirs := createAddress(t, db, other.ID)
	p := createProduct(t, db, "Moringa Powder", "500")
	addLine(t, db, u.ID, p.ID, "1kg", 1)

	_, err := svc.Checkout(context.Background(), u.ID, CheckoutInput{AddressID: theirs.ID})
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.EqualValues(t, 1, countRows(t, db, &models.CartItem{}, u.ID), "cart intact")
}

func TestCheckoutSkipsMissingAndInactiveProducts(t *testing.T) {
	db := testdb.Open(t)
	mailer, _ := newMailer()
	svc := NewCheckoutService(db, mailer, "")
	u := createUser(t, db, "asha@nutrieve.in", models.RoleCustomer)
	addr := createAddress(t, db, u.ID)

	keep := createProduct(t, db, "Garlic Powder", "375")
	gone := createProduct(t, db, "Onion Powder", "230")
	off := createProduct(t, db, "Lemon Powder", "180")
	addLine(t, db, u.ID, keep.ID, "500gm", 2)
	goneLine := addLine(t, db, u.ID, gone.ID, "1kg", 1)
	offLine := addLine(t, db, u.ID, off.ID, "1kg", 1)
	require.NoError(t, db.Delete(&gone).Error)
	require.NoError(t, db.Model(&off).Update("is_active", false).Error)

	res, err := svc.Checkout(context.Background(), u.ID, CheckoutInput{AddressID: addr.ID})
	require.NoError(t, err)

	require.Len(t, res.Order.Items, 1)
	assert.True(t, res.Order.SubtotalAmount.Equal(dec("375")))
	assert.ElementsMatch(t, []SkippedLine{
		{CartItemID: goneLine.ID, ProductID: gone.ID, Reason: SkipProductMissing},
		{CartItemID: offLine.ID, ProductID: off.ID, Reason: SkipProductInactive},
	}, res.Skipped)
	assert.Zero(t, countRows(t, db, &models.CartItem{}, u.ID), "skipped lines are cleared too")
}

func TestCheckoutNothingOrderable(t *testing.T) {
	db := testdb.Open(t)
	mailer, _ := newMailer()
	svc := NewCheckoutService(db, mailer, "")
	u := createUser(t, db, "asha@nutrieve.in", models.RoleCustomer)
	addr := createAddress(t, db, u.ID)
	gone := createProduct(t, db, "Carrot Powder", "250")
	addLine(t, db, u.ID, gone.ID, "1kg", 1)
	require.NoError(t, db.Delete(&gone).Error)

	_, err := svc.Checkout(context.Background(), u.ID, CheckoutInput{AddressID: addr.ID})
	assert.ErrorIs(t, err, ErrNothingToCheckout)
	assert.EqualValues(t, 1, countRows(t, db, &models.CartItem{}, u.ID))
	assert.Zero(t, countRows(t, db, &models.Order{}, u.ID))
}

func TestCheckoutUnknownPackSizeRollsBack(t *testing.T) {
	db := testdb.Open(t)
	mailer, _ := newMailer()
	svc := NewCheckoutService(db, mailer, "")
	u := createUser(t, db, "asha@nutrieve.in", models.RoleCustomer)
	addr := createAddress(t, db, u.ID)
	p := createProduct(t, db, "Beetroot Powder", "315")
	addLine(t, db, u.ID, p.ID, "1kg", 1)
	addLine(t, db, u.ID, p.ID, "5kg", 1)

	_, err := svc.Checkout(context.Background(), u.ID, CheckoutInput{AddressID: addr.ID})
	assert.ErrorIs(t, err, pricing.ErrUnknownPackSize)
	assert.EqualValues(t, 2, countRows(t, db, &models.CartItem{}, u.ID))
	assert.Zero(t, countRows(t, db, &models.Order{}, u.ID))
}

func TestCheckoutDetectsConcurrentCartChange(t *testing.T) {
	db := testdb.Open(t)
	mailer, _ := newMailer()
	svc := NewCheckoutService(db, mailer, "")
	u := createUser(t, db, "asha@nutrieve.in", models.RoleCustomer)
	addr := createAddress(t, db, u.ID)
	p := createProduct(t, db, "Spinach Powder", "270")
	addLine(t, db, u.ID, p.ID, "1kg", 1)
	stolen := addLine(t, db, u.ID, p.ID, "500gm", 1)

	// Another checkout removes a line between our read and our delete.
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:steal_line", func(tx *gorm.DB) {
		if tx.Statement.Table == "cart_items" {
			tx.Session(&gorm.Session{NewDB: true}).Exec("DELETE FROM cart_items WHERE id = ?", stolen.ID)
		}
	}))

	_, err := svc.Checkout(context.Background(), u.ID, CheckoutInput{AddressID: addr.ID})
	assert.ErrorIs(t, err, ErrCartChanged)

	require.NoError(t, db.Callback().Delete().Remove("test:steal_line"))
	assert.Zero(t, countRows(t, db, &models.Order{}, u.ID), "order rolled back")
	assert.EqualValues(t, 2, countRows(t, db, &models.CartItem{}, u.ID), "cart rolled back")
}

func TestCheckoutSurvivesMailFailure(t *testing.T) {
	db := testdb.Open(t)
	mailer, fake := newMailer()
	fake.Err = errors.New("smtp down")
	svc := NewCheckoutService(db, mailer, "")
	u := createUser(t, db, "asha@nutrieve.in", models.RoleCustomer)
	addr := createAddress(t, db, u.ID)
	p := createProduct(t, db, "Apple Powder", "500")
	addLine(t, db, u.ID, p.ID, "1kg", 1)

	res, err := svc.Checkout(context.Background(), u.ID, CheckoutInput{AddressID: addr.ID})
	require.NoError(t, err)
	assert.NotZero(t, res.Order.ID)
}

func TestOrdersNewestFirstAndOwned(t *testing.T) {
	db := testdb.Open(t)
	mailer, _ := newMailer()
	svc := NewCheckoutService(db, mailer, "")
	ctx := context.Background()
	u := createUser(t, db, "asha@nutrieve.in", models.RoleCustomer)
	other := createUser(t, db, "ravi@nutrieve.in", models.RoleCustomer)
	addr := createAddress(t, db, u.ID)
	p := createProduct(t, db, "Banana Powder", "325")

	var ids []uint
	for i := 0; i < 2; i++ {
		addLine(t, db, u.ID, p.ID, "1kg", i+1)
		res, err := svc.Checkout(ctx, u.ID, CheckoutInput{AddressID: addr.ID})
		require.NoError(t, err)
		ids = append(ids, res.Order.ID)
	}

	orders, err := svc.Orders(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, ids[1], orders[0].ID)

	_, err = svc.Order(ctx, other.ID, ids[0])
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
