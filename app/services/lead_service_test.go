package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/internal/testdb"
)

func TestLeadCreateDefaults(t *testing.T) {
	db := testdb.Open(t)
	svc := NewLeadService(db)

	lead, err := svc.Create(context.Background(), LeadInput{
		Type:       "procurement",
		PersonName: "  Meena Iyer ",
		Email:      strPtr("Meena@Spices.IN"),
	})
	require.NoError(t, err)
	assert.NotZero(t, lead.ID)
	assert.Equal(t, "Meena Iyer", lead.PersonName)
	assert.Equal(t, "cold", lead.Stage)
	assert.Equal(t, "open", lead.Status)
	assert.Equal(t, "India", lead.Country)
	require.NotNil(t, lead.Email)
	assert.Equal(t, "meena@spices.in", *lead.Email)
	assert.Nil(t, lead.NextFollowUpAt)
}

func TestLeadCreateRejectsBadDate(t *testing.T) {
	svc := NewLeadService(testdb.Open(t))

	_, err := svc.Create(context.Background(), LeadInput{Type: "sales", PersonName: "Ravi", NextFollowUpAt: strPtr("01/02/2026")})
	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v, "next_follow_up_at")
}

func TestLeadListFiltersAndOrder(t *testing.T) {
	db := testdb.Open(t)
	svc := NewLeadService(db)
	ctx := context.Background()

	mk := func(name, stage, status, followUp string) models.Lead {
		in := LeadInput{Type: "sales", PersonName: name, Stage: strPtr(stage), Status: strPtr(status)}
		if followUp != "" {
			in.NextFollowUpAt = strPtr(followUp)
		}
		l, err := svc.Create(ctx, in)
		require.NoError(t, err)
		return l
	}

	undated := mk("A", "hot", "open", "")
	later := mk("B", "hot", "open", "2026-05-10")
	sooner := mk("C", "hot", "open", "2026-04-01")
	mk("D", "hot", "won", "2026-03-01")
	mk("E", "cold", "open", "2026-03-01")

	leads, err := svc.List(ctx, LeadQuery{Stage: "hot", Status: "open"})
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, []uint{sooner.ID, later.ID, undated.ID}, []uint{leads[0].ID, leads[1].ID, leads[2].ID})
	for _, l := range leads {
		assert.Equal(t, "hot", l.Stage)
		assert.Equal(t, "open", l.Status)
	}

	page, err := svc.List(ctx, LeadQuery{Skip: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	_, err = svc.List(ctx, LeadQuery{Stage: "boiling"})
	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "The selected stage is invalid.", v["stage"])
}

func TestLeadListByOwner(t *testing.T) {
	svc := NewLeadService(testdb.Open(t))
	ctx := context.Background()
	owner := uint(7)

	mine, err := svc.Create(ctx, LeadInput{Type: "sales", PersonName: "Mine", OwnerID: &owner})
	require.NoError(t, err)
	_, err = svc.Create(ctx, LeadInput{Type: "sales", PersonName: "Unowned"})
	require.NoError(t, err)

	leads, err := svc.List(ctx, LeadQuery{OwnerID: &owner})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, mine.ID, leads[0].ID)
}

func TestLeadPartialUpdate(t *testing.T) {
	svc := NewLeadService(testdb.Open(t))
	ctx := context.Background()

	lead, err := svc.Create(ctx, LeadInput{
		Type: "sales", PersonName: "Kiran", Company: strPtr("Kiran Foods"),
		City: strPtr("Indore"), NextFollowUpAt: strPtr("2026-06-01"),
	})
	require.NoError(t, err)

	var patch LeadPatch
	require.NoError(t, json.Unmarshal([]byte(`{"stage":"hot","company":null,"tentative_order_qty":12.5}`), &patch))

	updated, err := svc.Update(ctx, lead.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "hot", updated.Stage)
	assert.Nil(t, updated.Company, "explicit null clears")
	require.NotNil(t, updated.City)
	assert.Equal(t, "Indore", *updated.City, "absent fields are untouched")
	assert.Equal(t, "Kiran", updated.PersonName)
	assert.True(t, updated.TentativeOrderQty.Valid)
	assert.True(t, updated.TentativeOrderQty.Decimal.Equal(dec("12.5")))
	require.NotNil(t, updated.NextFollowUpAt)
	assert.Equal(t, "2026-06-01", time.Time(*updated.NextFollowUpAt).Format("2006-01-02"))
}

func TestLeadPartialUpdateValidation(t *testing.T) {
	svc := NewLeadService(testdb.Open(t))
	ctx := context.Background()
	lead, err := svc.Create(ctx, LeadInput{Type: "sales", PersonName: "Kiran"})
	require.NoError(t, err)

	var patch LeadPatch
	require.NoError(t, json.Unmarshal([]byte(`{"person_name":null,"status":"maybe","industry":"steel"}`), &patch))

	_, err = svc.Update(ctx, lead.ID, patch)
	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v, "person_name")
	assert.Contains(t, v, "status")
	assert.Contains(t, v, "industry")

	_, err = svc.Update(ctx, 9999, LeadPatch{})
	assert.ErrorIs(t, err, ErrLeadNotFound)

	// Field errors are reported before the lead is looked up.
	_, err = svc.Update(ctx, 9999, patch)
	_, ok = AsValidation(err)
	assert.True(t, ok)
	assert.NotErrorIs(t, err, ErrLeadNotFound)
}

func TestLeadActivitiesAndDelete(t *testing.T) {
	db := testdb.Open(t)
	svc := NewLeadService(db)
	ctx := context.Background()
	lead, err := svc.Create(ctx, LeadInput{Type: "procurement", PersonName: "Farm Co"})
	require.NoError(t, err)

	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	first, err := svc.AddActivity(ctx, lead.ID, 3, ActivityInput{Kind: "call", Body: "Asked for a sample"})
	require.NoError(t, err)
	assert.Equal(t, uint(3), first.ActorID)

	now = now.Add(time.Hour)
	second, err := svc.AddActivity(ctx, lead.ID, 3, ActivityInput{Kind: "visit", Meta: map[string]any{"km": 12}})
	require.NoError(t, err)

	acts, err := svc.Activities(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, second.ID, acts[0].ID, "newest first")
	assert.Equal(t, json.Number("12"), acts[0].Meta["km"], "meta numbers come back as json.Number")

	_, err = svc.AddActivity(ctx, 9999, 3, ActivityInput{Kind: "call"})
	assert.ErrorIs(t, err, ErrLeadNotFound)
	_, err = svc.Activities(ctx, 9999)
	assert.ErrorIs(t, err, ErrLeadNotFound)

	require.NoError(t, svc.Delete(ctx, lead.ID))
	_, err = svc.Get(ctx, lead.ID)
	assert.ErrorIs(t, err, ErrLeadNotFound)

	var left int64
	db.Model(&models.LeadActivity{}).Where("lead_id = ?", lead.ID).Count(&left)
	assert.Zero(t, left, "activities go with the lead")

	assert.ErrorIs(t, svc.Delete(ctx, lead.ID), ErrLeadNotFound)
}
