package controllers

import (
	"net/http"

	"github.com/nutrieve/nutrieve/app/services"
	"github.com/nutrieve/nutrieve/pkg/ctx"
	"github.com/nutrieve/nutrieve/pkg/response"
)

type ProductController struct {
	service *services.ProductService
}

func NewProductController(s *services.ProductService) *ProductController {
	return &ProductController{service: s}
}

func (p *ProductController) Index(c *ctx.Context) {
	products, err := p.service.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(products)
}

func (p *ProductController) Show(c *ctx.Context) {
	id, ok := idParam(c, "id", "Product not found")
	if !ok {
		return
	}
	product, err := p.service.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}

// Seed handles POST /api/admin/seed-products.
func (p *ProductController) Seed(c *ctx.Context) {
	created, err := p.service.Seed(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Envelope{
		Status:  http.StatusOK,
		Message: "Products seeded",
		Data:    map[string]int{"created": created},
	})
}
