package controllers

import (
	"github.com/nutrieve/nutrieve/app/services"
	"github.com/nutrieve/nutrieve/pkg/ctx"
)

// OrderController serves /api/orders, including the address book used at
// checkout.
type OrderController struct {
	checkout  *services.CheckoutService
	addresses *services.AddressService
}

func NewOrderController(checkout *services.CheckoutService, addresses *services.AddressService) *OrderController {
	return &OrderController{checkout: checkout, addresses: addresses}
}

func (o *OrderController) StoreAddress(c *ctx.Context) {
	var in services.AddressInput
	if !c.BindJSON(&in) {
		return
	}
	addr, err := o.addresses.Create(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(addr)
}

func (o *OrderController) Addresses(c *ctx.Context) {
	list, err := o.addresses.List(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(list)
}

func (o *OrderController) SetDefaultAddress(c *ctx.Context) {
	id, ok := idParam(c, "id", "Address not found")
	if !ok {
		return
	}
	addr, err := o.addresses.SetDefault(c.Context(), c.UserID(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(addr)
}

// Store handles POST /api/orders/create.
func (o *OrderController) Store(c *ctx.Context) {
	var in services.CheckoutInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := o.checkout.Checkout(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(res)
}

func (o *OrderController) Index(c *ctx.Context) {
	orders, err := o.checkout.Orders(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

func (o *OrderController) Show(c *ctx.Context) {
	id, ok := idParam(c, "id", "Order not found")
	if !ok {
		return
	}
	order, err := o.checkout.Order(c.Context(), c.UserID(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(order)
}
