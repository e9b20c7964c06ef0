package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"leadtrack/models"
	"leadtrack/store"
)

// memoryCache is an in-process Cache that records invalidations so tests can
// assert the invalidation contract.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.entries[key]
	return val, ok
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

func (m *memoryCache) Invalidate(_ context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
		m.invalidated = append(m.invalidated, key)
	}
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func (m *memoryCache) invalidatedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.invalidated...)
}

// failingCache simulates a cache-store outage: reads always miss and writes
// vanish. Business results must be unaffected.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (failingCache) Set(context.Context, string, []byte)        {}
func (failingCache) Invalidate(context.Context, ...string)      {}

// fakeDocs is an in-memory InteractionDocs.
type fakeDocs struct {
	mu        sync.Mutex
	inserted  []models.Interaction
	deleted   []string
	scanDocs  []models.MetricDoc
	insertErr error
	scanErr   error
}

func (f *fakeDocs) Insert(_ context.Context, in *models.Interaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *in)
	return nil
}

func (f *fakeDocs) Update(_ context.Context, id string, in *models.Interaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.inserted {
		if fmt.Sprint(i) == id {
			f.inserted[i] = *in
			return nil
		}
	}
	return fmt.Errorf("%w: interaction %s", models.ErrNotFound, id)
}

func (f *fakeDocs) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDocs) FindByLead(_ context.Context, leadID uint) ([]models.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Interaction
	for _, in := range f.inserted {
		if in.LeadID == leadID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (f *fakeDocs) FindAll(context.Context) ([]models.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Interaction(nil), f.inserted...), nil
}

func (f *fakeDocs) FindInWindow(_ context.Context, start, end time.Time) ([]models.MetricDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	var out []models.MetricDoc
	for _, doc := range f.scanDocs {
		if !doc.InteractionDate.Before(start) && doc.InteractionDate.Before(end) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func newTestDirectory(t *testing.T) *store.Directory {
	t.Helper()

	dsn := fmt.Sprintf("file:svc-%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Lead{}, &models.PointOfContact{}, &models.Call{}))

	return store.NewDirectory(db, 5*time.Second)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func seedLead(t *testing.T, d *store.Directory, name, tz string) *models.Lead {
	t.Helper()
	lead := &models.Lead{
		Name:           name,
		Address:        "1 Main St",
		Zipcode:        "560001",
		State:          "KA",
		Country:        "IN",
		AreaOfInterest: "electronics",
		Status:         models.LeadStatusNew,
		Timezone:       tz,
	}
	require.NoError(t, d.CreateLead(context.Background(), lead))
	return lead
}

func seedPOC(t *testing.T, d *store.Directory, leadID uint) *models.PointOfContact {
	t.Helper()
	poc := &models.PointOfContact{LeadID: leadID, Name: "Ravi", Role: "buyer", PhoneNumber: "+911234567890"}
	require.NoError(t, d.CreatePOC(context.Background(), poc))
	return poc
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
