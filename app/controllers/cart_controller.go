package controllers

import (
	"net/http"

	"github.com/nutrieve/nutrieve/app/services"
	"github.com/nutrieve/nutrieve/pkg/ctx"
	"github.com/nutrieve/nutrieve/pkg/response"
)

type CartController struct {
	service *services.CartService
}

func NewCartController(s *services.CartService) *CartController {
	return &CartController{service: s}
}

func (cc *CartController) Index(c *ctx.Context) {
	cart, err := cc.service.List(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cart)
}

// Add handles POST /api/cart/add.
func (cc *CartController) Add(c *ctx.Context) {
	var in services.AddToCartInput
	if !c.BindJSON(&in) {
		return
	}
	item, created, err := cc.service.Add(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}

	status, msg := http.StatusOK, "Cart updated successfully"
	if created {
		status, msg = http.StatusCreated, "Item added to cart successfully"
	}
	c.JSON(status, response.Envelope{Status: status, Message: msg, Data: item})
}

func (cc *CartController) Update(c *ctx.Context) {
	id, ok := idParam(c, "id", "Cart item not found")
	if !ok {
		return
	}
	var in services.UpdateCartInput
	if !c.BindJSON(&in) {
		return
	}
	if in.Quantity == nil {
		c.ValidationError(map[string]string{"quantity": "The quantity field is required."})
		return
	}
	removed, err := cc.service.Update(c.Context(), c.UserID(), id, *in.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	if removed {
		c.SuccessMessage("Item removed from cart successfully")
		return
	}
	c.SuccessMessage("Cart updated successfully")
}

func (cc *CartController) Remove(c *ctx.Context) {
	id, ok := idParam(c, "id", "Cart item not found")
	if !ok {
		return
	}
	if err := cc.service.Remove(c.Context(), c.UserID(), id); err != nil {
		fail(c, err)
		return
	}
	c.SuccessMessage("Item removed from cart successfully")
}

func (cc *CartController) Clear(c *ctx.Context) {
	if _, err := cc.service.Clear(c.Context(), c.UserID()); err != nil {
		fail(c, err)
		return
	}
	c.SuccessMessage("Cart cleared successfully")
}
