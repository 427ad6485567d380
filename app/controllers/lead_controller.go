package controllers

import (
	"strconv"

	"github.com/nutrieve/nutrieve/app/services"
	"github.com/nutrieve/nutrieve/pkg/ctx"
)

type LeadController struct {
	service *services.LeadService
}

func NewLeadController(s *services.LeadService) *LeadController {
	return &LeadController{service: s}
}

// Index handles GET /api/leads?type=&stage=&status=&owner_id=&skip=&limit=.
func (l *LeadController) Index(c *ctx.Context) {
	q := services.LeadQuery{
		Type:   c.Query("type"),
		Stage:  c.Query("stage"),
		Status: c.Query("status"),
	}

	errs := map[string]string{}
	var ok bool
	if q.Skip, ok = c.QueryInt("skip", 0); !ok {
		errs["skip"] = "The skip must be an integer."
	}
	if q.Limit, ok = c.QueryInt("limit", services.DefaultLeadLimit); !ok {
		errs["limit"] = "The limit must be an integer."
	}
	if raw := c.Query("owner_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errs["owner_id"] = "The owner id must be an integer."
		} else {
			owner := uint(n)
			q.OwnerID = &owner
		}
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return
	}

	leads, err := l.service.List(c.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(leads)
}

func (l *LeadController) Store(c *ctx.Context) {
	var in services.LeadInput
	if !c.BindJSON(&in) {
		return
	}
	lead, err := l.service.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(lead)
}

func (l *LeadController) Show(c *ctx.Context) {
	id, ok := idParam(c, "id", "Lead not found")
	if !ok {
		return
	}
	lead, err := l.service.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(lead)
}

// Update serves both PUT and PATCH; only the fields sent are changed.
func (l *LeadController) Update(c *ctx.Context) {
	id, ok := idParam(c, "id", "Lead not found")
	if !ok {
		return
	}
	var patch services.LeadPatch
	if !c.BindJSON(&patch) {
		return
	}
	lead, err := l.service.Update(c.Context(), id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(lead)
}

func (l *LeadController) Destroy(c *ctx.Context) {
	id, ok := idParam(c, "id", "Lead not found")
	if !ok {
		return
	}
	if err := l.service.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

func (l *LeadController) Activities(c *ctx.Context) {
	id, ok := idParam(c, "id", "Lead not found")
	if !ok {
		return
	}
	acts, err := l.service.Activities(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(acts)
}

func (l *LeadController) StoreActivity(c *ctx.Context) {
	id, ok := idParam(c, "id", "Lead not found")
	if !ok {
		return
	}
	var in services.ActivityInput
	if !c.BindJSON(&in) {
		return
	}
	act, err := l.service.AddActivity(c.Context(), id, c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(act)
}
