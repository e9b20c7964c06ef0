package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"leadtrack/models"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Lead{}, &models.PointOfContact{}, &models.Call{}))

	return NewDirectory(db, 5*time.Second)
}

func seedLead(t *testing.T, d *Directory, name string) *models.Lead {
	t.Helper()
	lead := &models.Lead{
		Name:           name,
		Address:        "1 Main St",
		Zipcode:        "560001",
		State:          "KA",
		Country:        "IN",
		AreaOfInterest: "electronics",
		Status:         models.LeadStatusNew,
		Timezone:       "Asia/Kolkata",
	}
	require.NoError(t, d.CreateLead(context.Background(), lead))
	return lead
}

func TestFindLeadByID(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	lead := seedLead(t, d, "Acme")

	got, err := d.FindLeadByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	_, err = d.FindLeadByID(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFindLeadsByIDsSkipsMissing(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	a := seedLead(t, d, "A")
	b := seedLead(t, d, "B")

	got, err := d.FindLeadsByIDs(ctx, []uint{a.ID, b.ID, 999})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "A", got[a.ID].Name)
	assert.Equal(t, "B", got[b.ID].Name)

	empty, err := d.FindLeadsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateLeadStatus(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	lead := seedLead(t, d, "Acme")
	require.NoError(t, d.UpdateLeadStatus(ctx, lead.ID, models.LeadStatusContacted))

	got, err := d.FindLeadByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, got.Status)

	assert.ErrorIs(t, d.UpdateLeadStatus(ctx, 999, models.LeadStatusContacted), models.ErrNotFound)
}

func TestDeleteLeadBlockedWhileReferenced(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	lead := seedLead(t, d, "Acme")
	poc := &models.PointOfContact{LeadID: lead.ID, Name: "Ravi", Role: "buyer", PhoneNumber: "123"}
	require.NoError(t, d.CreatePOC(ctx, poc))

	assert.ErrorIs(t, d.DeleteLead(ctx, lead.ID), models.ErrConflict)

	require.NoError(t, d.DeletePOC(ctx, poc.ID, lead.ID))
	require.NoError(t, d.DeleteLead(ctx, lead.ID))

	_, err := d.FindLeadByID(ctx, lead.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFindPOCByIDEnforcesParentage(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	a := seedLead(t, d, "A")
	b := seedLead(t, d, "B")
	poc := &models.PointOfContact{LeadID: a.ID, Name: "Ravi", Role: "buyer", PhoneNumber: "123"}
	require.NoError(t, d.CreatePOC(ctx, poc))

	got, err := d.FindPOCByID(ctx, poc.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.Name)

	_, err = d.FindPOCByID(ctx, poc.ID, b.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCallsBetween(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	lead := seedLead(t, d, "Acme")
	poc := &models.PointOfContact{LeadID: lead.ID, Name: "Ravi", Role: "buyer", PhoneNumber: "123"}
	require.NoError(t, d.CreatePOC(ctx, poc))

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	inside := &models.Call{LeadID: lead.ID, POCID: poc.ID, Frequency: 7, NextCallDate: day, NextCallTime: "10:00:00"}
	outside := &models.Call{LeadID: lead.ID, POCID: poc.ID, Frequency: 7, NextCallDate: day.AddDate(0, 0, 1), NextCallTime: "10:00:00"}
	require.NoError(t, d.CreateCall(ctx, inside))
	require.NoError(t, d.CreateCall(ctx, outside))

	got, err := d.CallsBetween(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inside.ID, got[0].ID)
}

func TestDeleteCall(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	lead := seedLead(t, d, "Acme")
	call := &models.Call{LeadID: lead.ID, POCID: 1, Frequency: 7,
		NextCallDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), NextCallTime: "10:00:00"}
	require.NoError(t, d.CreateCall(ctx, call))

	require.NoError(t, d.DeleteCall(ctx, call.ID))
	assert.ErrorIs(t, d.DeleteCall(ctx, call.ID), models.ErrNotFound)
}

func TestFindCallByIDEnforcesParentage(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	lead := seedLead(t, d, "Acme")
	other := seedLead(t, d, "Other")
	call := &models.Call{LeadID: lead.ID, POCID: 1, Frequency: 7,
		NextCallDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), NextCallTime: "10:00:00"}
	require.NoError(t, d.CreateCall(ctx, call))

	_, err := d.FindCallByID(ctx, call.ID, lead.ID)
	require.NoError(t, err)

	_, err = d.FindCallByID(ctx, call.ID, other.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
