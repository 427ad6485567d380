package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/app/repositories"
	"github.com/nutrieve/nutrieve/pkg/optional"
	"github.com/nutrieve/nutrieve/pkg/validate"
)

const (
	DefaultLeadLimit = 20
	MaxLeadLimit     = 100
	dateLayout       = "2006-01-02"
)

// LeadQuery is the list filter. Empty strings and a nil OwnerID match all.
type LeadQuery struct {
	Type    string
	Stage   string
	Status  string
	OwnerID *uint
	Skip    int
	Limit   int
}

// LeadInput is the create payload.
type LeadInput struct {
	Type              string              `json:"type"                validate:"required,in=procurement|sales"`
	Company           *string             `json:"company"             validate:"nullable,max=255"`
	PersonName        string              `json:"person_name"         validate:"required,max=255"`
	Phone             *string             `json:"phone"               validate:"nullable,max=20"`
	Email             *string             `json:"email"               validate:"nullable,email"`
	Address           *string             `json:"address"`
	City              *string             `json:"city"                validate:"nullable,max=100"`
	State             *string             `json:"state"               validate:"nullable,max=100"`
	Country           *string             `json:"country"             validate:"nullable,max=100"`
	Pincode           *string             `json:"pincode"             validate:"nullable,max=10"`
	Stage             *string             `json:"stage"               validate:"nullable,in=hot|warm|cold"`
	NextFollowUpAt    *string             `json:"next_follow_up_at"`
	Status            *string             `json:"status"              validate:"nullable,in=open|hold|wip|rejected|won|lost"`
	TentativeOrderQty decimal.NullDecimal `json:"tentative_order_qty"`
	TentativeQtyUnit  *string             `json:"tentative_qty_unit"  validate:"nullable,max=20"`
	Industry          *string             `json:"industry"            validate:"nullable,in=fmcg|fnb|pharma|ayurvedic|others"`
	Notes             *string             `json:"notes"`
	OwnerID           *uint               `json:"owner_id"`
	SourceID          *uint               `json:"source_id"`
}

// LeadPatch is the partial update payload. Only fields present in the JSON
// are written; an explicit null clears a nullable column.
type LeadPatch struct {
	Type              optional.Field[string]          `json:"type"`
	Company           optional.Field[string]          `json:"company"`
	PersonName        optional.Field[string]          `json:"person_name"`
	Phone             optional.Field[string]          `json:"phone"`
	Email             optional.Field[string]          `json:"email"`
	Address           optional.Field[string]          `json:"address"`
	City              optional.Field[string]          `json:"city"`
	State             optional.Field[string]          `json:"state"`
	Country           optional.Field[string]          `json:"country"`
	Pincode           optional.Field[string]          `json:"pincode"`
	Stage             optional.Field[string]          `json:"stage"`
	NextFollowUpAt    optional.Field[string]          `json:"next_follow_up_at"`
	Status            optional.Field[string]          `json:"status"`
	TentativeOrderQty optional.Field[decimal.Decimal] `json:"tentative_order_qty"`
	TentativeQtyUnit  optional.Field[string]          `json:"tentative_qty_unit"`
	Industry          optional.Field[string]          `json:"industry"`
	Notes             optional.Field[string]          `json:"notes"`
	OwnerID           optional.Field[uint]            `json:"owner_id"`
	SourceID          optional.Field[uint]            `json:"source_id"`
}

type ActivityInput struct {
	Kind string         `json:"kind" validate:"required,max=50"`
	Body string         `json:"body"`
	Meta map[string]any `json:"meta"`
}

type LeadService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLeadService(db *gorm.DB) *LeadService {
	return &LeadService{db: db, now: time.Now}
}

// List returns leads matching every given filter, soonest follow-up first
// with undated leads last.
func (s *LeadService) List(ctx context.Context, q LeadQuery) ([]models.Lead, error) {
	errs := ValidationError{}
	checkEnum(errs, "type", q.Type, models.LeadTypes)
	checkEnum(errs, "stage", q.Stage, models.LeadStages)
	checkEnum(errs, "status", q.Status, models.LeadStatuses)
	if q.Skip < 0 {
		errs["skip"] = "The skip must be at least 0."
	}
	if q.Limit < 0 {
		errs["limit"] = "The limit must be at least 1."
	}
	if len(errs) > 0 {
		return nil, errs
	}

	limit := q.Limit
	switch {
	case limit == 0:
		limit = DefaultLeadLimit
	case limit > MaxLeadLimit:
		limit = MaxLeadLimit
	}

	leads, err := repositories.NewLeadRepository(s.db).List(ctx, repositories.LeadFilter{
		Type:    q.Type,
		Stage:   q.Stage,
		Status:  q.Status,
		OwnerID: q.OwnerID,
		Skip:    q.Skip,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (s *LeadService) Create(ctx context.Context, in LeadInput) (models.Lead, error) {
	errs := ValidationError{}
	followUp := parseDate(errs, "next_follow_up_at", in.NextFollowUpAt)
	if in.TentativeOrderQty.Valid && in.TentativeOrderQty.Decimal.IsNegative() {
		errs["tentative_order_qty"] = "The tentative order qty must be at least 0."
	}
	if strings.TrimSpace(in.PersonName) == "" {
		errs["person_name"] = "The person name field is required."
	}
	if len(errs) > 0 {
		return models.Lead{}, errs
	}

	lead := models.Lead{
		Type:              in.Type,
		Company:           trimmed(in.Company),
		PersonName:        strings.TrimSpace(in.PersonName),
		Phone:             trimmed(in.Phone),
		Email:             lowered(in.Email),
		Address:           trimmed(in.Address),
		City:              trimmed(in.City),
		State:             trimmed(in.State),
		Country:           models.DefaultCountry,
		Pincode:           trimmed(in.Pincode),
		Stage:             models.LeadStageCold,
		NextFollowUpAt:    followUp,
		Status:            models.LeadStatusOpen,
		TentativeOrderQty: in.TentativeOrderQty,
		TentativeQtyUnit:  trimmed(in.TentativeQtyUnit),
		Industry:          in.Industry,
		Notes:             in.Notes,
		OwnerID:           in.OwnerID,
		SourceID:          in.SourceID,
	}
	if c := trimmed(in.Country); c != nil {
		lead.Country = *c
	}
	if in.Stage != nil {
		lead.Stage = *in.Stage
	}
	if in.Status != nil {
		lead.Status = *in.Status
	}

	if err := repositories.NewLeadRepository(s.db).Create(ctx, &lead); err != nil {
		return models.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

func (s *LeadService) Get(ctx context.Context, id uint) (models.Lead, error) {
	lead, err := repositories.NewLeadRepository(s.db).Find(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Lead{}, ErrLeadNotFound
	}
	return lead, err
}

// Update applies the fields present in p and returns the stored lead.
func (s *LeadService) Update(ctx context.Context, id uint, p LeadPatch) (models.Lead, error) {
	columns, err := p.columns()
	if err != nil {
		return models.Lead{}, err
	}

	var lead models.Lead
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		leads := repositories.NewLeadRepository(tx)
		if _, err := leads.Find(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrLeadNotFound
			}
			return err
		}
		if err := leads.Update(ctx, id, columns); err != nil {
			return err
		}
		lead, err = leads.Find(ctx, id)
		return err
	})
	if err != nil {
		return models.Lead{}, fmt.Errorf("update lead %d: %w", id, err)
	}
	return lead, nil
}

// Delete removes the lead and its activities together.
func (s *LeadService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repositories.NewLeadRepository(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrLeadNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete lead %d: %w", id, err)
	}
	return nil
}

// AddActivity records an activity by actorID on the lead's timeline.
func (s *LeadService) AddActivity(ctx context.Context, leadID, actorID uint, in ActivityInput) (models.LeadActivity, error) {
	act := models.LeadActivity{
		LeadID:  leadID,
		ActorID: actorID,
		Kind:    strings.TrimSpace(in.Kind),
		Body:    in.Body,
		At:      s.now().UTC(),
		Meta:    datatypes.JSONMap(in.Meta),
	}
	if act.Meta == nil {
		act.Meta = datatypes.JSONMap{}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		leads := repositories.NewLeadRepository(tx)
		ok, err := leads.Exists(ctx, leadID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLeadNotFound
		}
		return leads.CreateActivity(ctx, &act)
	})
	if err != nil {
		return models.LeadActivity{}, fmt.Errorf("add activity to lead %d: %w", leadID, err)
	}
	return act, nil
}

// Activities returns the lead's timeline newest first.
func (s *LeadService) Activities(ctx context.Context, leadID uint) ([]models.LeadActivity, error) {
	leads := repositories.NewLeadRepository(s.db)
	ok, err := leads.Exists(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	if !ok {
		return nil, ErrLeadNotFound
	}
	out, err := leads.Activities(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return out, nil
}

// columns validates the patch and maps it to column updates.
func (p LeadPatch) columns() (map[string]any, error) {
	errs := ValidationError{}
	cols := map[string]any{}

	required := func(name string, f optional.Field[string], allowed []string) {
		if !f.Set {
			return
		}
		v := strings.TrimSpace(f.Value)
		switch {
		case f.Null || v == "":
			errs[name] = fmt.Sprintf("The %s field cannot be empty.", label(name))
		case allowed != nil && !validate.OneOf(v, allowed...):
			errs[name] = fmt.Sprintf("The selected %s is invalid.", label(name))
		default:
			cols[name] = v
		}
	}
	nullable := func(name string, f optional.Field[string], allowed []string) {
		if !f.Set {
			return
		}
		if f.Null {
			cols[name] = nil
			return
		}
		v := strings.TrimSpace(f.Value)
		if allowed != nil && !validate.OneOf(v, allowed...) {
			errs[name] = fmt.Sprintf("The selected %s is invalid.", label(name))
			return
		}
		cols[name] = v
	}

	required("type", p.Type, models.LeadTypes)
	required("person_name", p.PersonName, nil)
	required("country", p.Country, nil)
	required("stage", p.Stage, models.LeadStages)
	required("status", p.Status, models.LeadStatuses)

	nullable("company", p.Company, nil)
	nullable("phone", p.Phone, nil)
	nullable("address", p.Address, nil)
	nullable("city", p.City, nil)
	nullable("state", p.State, nil)
	nullable("pincode", p.Pincode, nil)
	nullable("tentative_qty_unit", p.TentativeQtyUnit, nil)
	nullable("industry", p.Industry, models.LeadIndustries)
	nullable("notes", p.Notes, nil)

	if p.Email.Set {
		switch {
		case p.Email.Null:
			cols["email"] = nil
		case !validate.Email(strings.TrimSpace(p.Email.Value)):
			errs["email"] = "The email must be a valid email address."
		default:
			cols["email"] = strings.ToLower(strings.TrimSpace(p.Email.Value))
		}
	}

	if p.NextFollowUpAt.Set {
		if p.NextFollowUpAt.Null {
			cols["next_follow_up_at"] = nil
		} else if d := parseDate(errs, "next_follow_up_at", &p.NextFollowUpAt.Value); d != nil {
			cols["next_follow_up_at"] = *d
		}
	}

	if p.TentativeOrderQty.Set {
		switch {
		case p.TentativeOrderQty.Null:
			cols["tentative_order_qty"] = nil
		case p.TentativeOrderQty.Value.IsNegative():
			errs["tentative_order_qty"] = "The tentative order qty must be at least 0."
		default:
			cols["tentative_order_qty"] = p.TentativeOrderQty.Value
		}
	}

	if p.OwnerID.Set {
		cols["owner_id"] = p.OwnerID.Ptr()
	}
	if p.SourceID.Set {
		cols["source_id"] = p.SourceID.Ptr()
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return cols, nil
}

func checkEnum(errs ValidationError, name, value string, allowed []string) {
	if value != "" && !validate.OneOf(value, allowed...) {
		errs[name] = fmt.Sprintf("The selected %s is invalid.", label(name))
	}
}

func parseDate(errs ValidationError, name string, raw *string) *datatypes.Date {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		errs[name] = fmt.Sprintf("The %s must be a date in YYYY-MM-DD format.", label(name))
		return nil
	}
	d := datatypes.Date(t)
	return &d
}

func label(field string) string { return strings.ReplaceAll(field, "_", " ") }

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func lowered(s *string) *string {
	v := trimmed(s)
	if v != nil {
		*v = strings.ToLower(*v)
	}
	return v
}
