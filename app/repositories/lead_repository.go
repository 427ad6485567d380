package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/pkg/orm"
)

// LeadFilter narrows List. Empty fields do not filter.
type LeadFilter struct {
	Type    string
	Stage   string
	Status  string
	OwnerID *uint
	Skip    int
	Limit   int
}

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// nullsLast sorts leads without a follow-up date after every dated lead on
// all supported drivers.
const nullsLast = "CASE WHEN next_follow_up_at IS NULL THEN 1 ELSE 0 END"

// List applies f with AND semantics, ordered by next follow-up (nulls last)
// then id.
func (r *LeadRepository) List(ctx context.Context, f LeadFilter) ([]models.Lead, error) {
	leads := []models.Lead{}
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.Lead{}).
		WhereIf(f.Type != "", "type = ?", f.Type).
		WhereIf(f.Stage != "", "stage = ?", f.Stage).
		WhereIf(f.Status != "", "status = ?", f.Status).
		WhereIf(f.OwnerID != nil, "owner_id = ?", f.OwnerID).
		Order(nullsLast).
		Order("next_follow_up_at ASC").
		Order("id ASC").
		Window(f.Skip, f.Limit).
		Get(&leads)
	return leads, err
}

func (r *LeadRepository) Find(ctx context.Context, id uint) (models.Lead, error) {
	var lead models.Lead
	err := orm.New(r.db).WithContext(ctx).Model(&models.Lead{}).Where("id = ?", id).First(&lead)
	return lead, translate(err)
}

func (r *LeadRepository) Exists(ctx context.Context, id uint) (bool, error) {
	n, err := orm.New(r.db).WithContext(ctx).Model(&models.Lead{}).Where("id = ?", id).Count()
	return n > 0, err
}

func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return translate(r.db.WithContext(ctx).Create(lead).Error)
}

// Update writes the given columns. Nil values store NULL.
func (r *LeadRepository) Update(ctx context.Context, id uint, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Lead{ID: id}).Updates(columns).Error
}

// Delete removes the lead and its activities. Run it inside a transaction.
func (r *LeadRepository) Delete(ctx context.Context, id uint) (int64, error) {
	if err := r.db.WithContext(ctx).Where("lead_id = ?", id).Delete(&models.LeadActivity{}).Error; err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Delete(&models.Lead{}, id)
	return res.RowsAffected, res.Error
}

func (r *LeadRepository) CreateActivity(ctx context.Context, a *models.LeadActivity) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

// Activities returns a lead's timeline newest first.
func (r *LeadRepository) Activities(ctx context.Context, leadID uint) ([]models.LeadActivity, error) {
	out := []models.LeadActivity{}
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.LeadActivity{}).
		Where("lead_id = ?", leadID).
		Order("at DESC").
		Order("id DESC").
		Get(&out)
	return out, err
}
