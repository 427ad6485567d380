package controllers

import (
	"errors"
	"net/http"

	"github.com/nutrieve/nutrieve/app/pricing"
	"github.com/nutrieve/nutrieve/app/services"
	"github.com/nutrieve/nutrieve/pkg/ctx"
)

// fail maps a service error to its response. Unknown errors become a
// logged 500 with a generic message.
func fail(c *ctx.Context, err error) {
	if v, ok := services.AsValidation(err); ok {
		c.ValidationError(v)
		return
	}

	switch {
	case errors.Is(err, pricing.ErrUnknownPackSize):
		c.ValidationError(map[string]string{"size": "The selected size is invalid."})
	case errors.Is(err, services.ErrNothingToCheckout):
		c.Error(http.StatusUnprocessableEntity, "None of the items in your cart are available")
	case errors.Is(err, services.ErrEmptyCart):
		c.Error(http.StatusBadRequest, "Cart is empty")

	case errors.Is(err, services.ErrProductNotFound):
		c.NotFound("Product not found")
	case errors.Is(err, services.ErrCartItemNotFound):
		c.NotFound("Cart item not found")
	case errors.Is(err, services.ErrAddressNotFound):
		c.NotFound("Address not found")
	case errors.Is(err, services.ErrOrderNotFound):
		c.NotFound("Order not found")
	case errors.Is(err, services.ErrLeadNotFound):
		c.NotFound("Lead not found")
	case errors.Is(err, services.ErrUserNotFound):
		c.NotFound("User not found")

	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized("Invalid email or password")
	case errors.Is(err, services.ErrResetFailed):
		c.Error(http.StatusBadRequest, "Invalid or expired reset code")

	case errors.Is(err, services.ErrEmailTaken):
		c.Error(http.StatusConflict, "Email already registered")
	case errors.Is(err, services.ErrCartChanged):
		c.Error(http.StatusConflict, "Your cart changed during checkout, please review it and try again")

	default:
		c.InternalError(err)
	}
}

// idParam reads {name} or answers 404 with notFound.
func idParam(c *ctx.Context, name, notFound string) (uint, bool) {
	id, ok := c.ParamUint(name)
	if !ok {
		c.NotFound(notFound)
	}
	return id, ok
}
