package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadtrack/cache"
	"leadtrack/models"
)

func leadInput(name string) LeadInput {
	return LeadInput{
		Name:           name,
		Address:        "1 Main St",
		Zipcode:        "560001",
		State:          "KA",
		Country:        "IN",
		AreaOfInterest: "electronics",
		Timezone:       "Asia/Kolkata",
	}
}

func newLeadService(t *testing.T, c cache.Cache) *LeadService {
	t.Helper()
	return NewLeadService(newTestDirectory(t), c, testLogger())
}

func TestCreateLead(t *testing.T) {
	mem := newMemoryCache()
	ls := newLeadService(t, mem)

	lead, err := ls.Create(context.Background(), leadInput("Acme"))
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
	assert.Contains(t, mem.invalidatedKeys(), cache.KeyAllLeads)

	// Duplicate names are rejected.
	_, err = ls.Create(context.Background(), leadInput("Acme"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCreateLeadRejectsUnknownTimezone(t *testing.T) {
	ls := newLeadService(t, newMemoryCache())

	in := leadInput("Acme")
	in.Timezone = "Mars/Olympus_Mons"
	_, err := ls.Create(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestListLeadsCacheReadThrough(t *testing.T) {
	mem := newMemoryCache()
	ls := newLeadService(t, mem)

	_, err := ls.Create(context.Background(), leadInput("Acme"))
	require.NoError(t, err)

	first, err := ls.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, mem.has(cache.KeyAllLeads))

	// Write behind the service's back: the cached list keeps serving until
	// an invalidating mutation, which is the accepted TTL staleness bound.
	seedLead(t, ls.Directory, "Sneaky", "Asia/Kolkata")
	cached, err := ls.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// A mutation through the service invalidates and the next read recomputes.
	_, err = ls.Create(context.Background(), leadInput("Beta"))
	require.NoError(t, err)
	fresh, err := ls.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestInvalidateIsIdempotent(t *testing.T) {
	mem := newMemoryCache()
	ls := newLeadService(t, mem)

	_, err := ls.Create(context.Background(), leadInput("Acme"))
	require.NoError(t, err)
	_, err = ls.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.True(t, mem.has(cache.KeyAllLeads))

	// Repeating an invalidation is a no-op set removal; the key stays gone.
	mem.Invalidate(context.Background(), cache.KeyAllLeads)
	mem.Invalidate(context.Background(), cache.KeyAllLeads)
	assert.False(t, mem.has(cache.KeyAllLeads))
}

func TestUpdateLead(t *testing.T) {
	mem := newMemoryCache()
	ls := newLeadService(t, mem)

	lead, err := ls.Create(context.Background(), leadInput("Acme"))
	require.NoError(t, err)

	in := leadInput("Acme Corp")
	in.Status = models.LeadStatusContacted
	updated, err := ls.Update(context.Background(), lead.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, models.LeadStatusContacted, updated.Status)

	_, err = ls.Update(context.Background(), 999, leadInput("Ghost"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteLeadConflict(t *testing.T) {
	ls := newLeadService(t, newMemoryCache())

	lead, err := ls.Create(context.Background(), leadInput("Acme"))
	require.NoError(t, err)
	seedPOC(t, ls.Directory, lead.ID)

	assert.ErrorIs(t, ls.Delete(context.Background(), lead.ID), models.ErrConflict)
	assert.ErrorIs(t, ls.Delete(context.Background(), 999), models.ErrNotFound)
}
