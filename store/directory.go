package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"leadtrack/models"
)

// Directory is the relational collaborator holding leads, points of contact
// and calls. It owns decode and error mapping so callers never see gorm
// errors.
type Directory struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewDirectory(db *gorm.DB, timeout time.Duration) *Directory {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Directory{db: db, timeout: timeout}
}

func (d *Directory) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

func dbErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrDependencyUnavailable, op, err)
}

// --- Leads ---

func (d *Directory) FindLeadByID(ctx context.Context, id uint) (*models.Lead, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var lead models.Lead
	err := d.db.WithContext(ctx).First(&lead, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: lead %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, dbErr("find lead", err)
	}
	return &lead, nil
}

func (d *Directory) FindLeadByName(ctx context.Context, name string) (*models.Lead, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var lead models.Lead
	err := d.db.WithContext(ctx).Where("name = ?", name).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: lead %q", models.ErrNotFound, name)
	}
	if err != nil {
		return nil, dbErr("find lead by name", err)
	}
	return &lead, nil
}

// FindLeadsByIDs resolves a set of lead ids in one query. Missing ids are
// simply absent from the returned map, never an error.
func (d *Directory) FindLeadsByIDs(ctx context.Context, ids []uint) (map[uint]models.Lead, error) {
	result := make(map[uint]models.Lead, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var leads []models.Lead
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&leads).Error; err != nil {
		return nil, dbErr("find leads by ids", err)
	}
	for _, lead := range leads {
		result[lead.ID] = lead
	}
	return result, nil
}

func (d *Directory) ListLeads(ctx context.Context, offset, limit int) ([]models.Lead, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var leads []models.Lead
	q := d.db.WithContext(ctx).Order("id")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&leads).Error; err != nil {
		return nil, dbErr("list leads", err)
	}
	return leads, nil
}

func (d *Directory) CreateLead(ctx context.Context, lead *models.Lead) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	if err := d.db.WithContext(ctx).Create(lead).Error; err != nil {
		return dbErr("create lead", err)
	}
	return nil
}

func (d *Directory) UpdateLead(ctx context.Context, lead *models.Lead) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	if err := d.db.WithContext(ctx).Save(lead).Error; err != nil {
		return dbErr("update lead", err)
	}
	return nil
}

// UpdateLeadStatus advances only the derived status column.
func (d *Directory) UpdateLeadStatus(ctx context.Context, id uint, status string) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	res := d.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return dbErr("update lead status", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: lead %d", models.ErrNotFound, id)
	}
	return nil
}

// DeleteLead refuses to remove a lead that contacts or calls still reference.
func (d *Directory) DeleteLead(ctx context.Context, id uint) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var lead models.Lead
	err := d.db.WithContext(ctx).First(&lead, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: lead %d", models.ErrNotFound, id)
	}
	if err != nil {
		return dbErr("find lead", err)
	}

	var refs int64
	if err := d.db.WithContext(ctx).Model(&models.PointOfContact{}).Where("lead_id = ?", id).Count(&refs).Error; err != nil {
		return dbErr("count contacts", err)
	}
	if refs == 0 {
		if err := d.db.WithContext(ctx).Model(&models.Call{}).Where("lead_id = ?", id).Count(&refs).Error; err != nil {
			return dbErr("count calls", err)
		}
	}
	if refs > 0 {
		return fmt.Errorf("%w: lead %d still referenced by contacts or calls", models.ErrConflict, id)
	}

	if err := d.db.WithContext(ctx).Delete(&models.Lead{}, id).Error; err != nil {
		return dbErr("delete lead", err)
	}
	return nil
}

// --- Points of contact ---

// FindPOCByID enforces parentage: the POC must belong to leadID.
func (d *Directory) FindPOCByID(ctx context.Context, id, leadID uint) (*models.PointOfContact, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var poc models.PointOfContact
	err := d.db.WithContext(ctx).Where("id = ? AND lead_id = ?", id, leadID).First(&poc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: point of contact %d for lead %d", models.ErrNotFound, id, leadID)
	}
	if err != nil {
		return nil, dbErr("find poc", err)
	}
	return &poc, nil
}

// FindPOCsByIDs resolves a set of POC ids in one query. Missing ids are
// absent from the returned map.
func (d *Directory) FindPOCsByIDs(ctx context.Context, ids []uint) (map[uint]models.PointOfContact, error) {
	result := make(map[uint]models.PointOfContact, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var pocs []models.PointOfContact
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&pocs).Error; err != nil {
		return nil, dbErr("find pocs by ids", err)
	}
	for _, poc := range pocs {
		result[poc.ID] = poc
	}
	return result, nil
}

func (d *Directory) ListPOCs(ctx context.Context) ([]models.PointOfContact, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var pocs []models.PointOfContact
	if err := d.db.WithContext(ctx).Order("id").Find(&pocs).Error; err != nil {
		return nil, dbErr("list pocs", err)
	}
	return pocs, nil
}

func (d *Directory) POCsByLead(ctx context.Context, leadID uint) ([]models.PointOfContact, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var pocs []models.PointOfContact
	if err := d.db.WithContext(ctx).Where("lead_id = ?", leadID).Order("id").Find(&pocs).Error; err != nil {
		return nil, dbErr("list pocs for lead", err)
	}
	return pocs, nil
}

func (d *Directory) CreatePOC(ctx context.Context, poc *models.PointOfContact) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	if err := d.db.WithContext(ctx).Create(poc).Error; err != nil {
		return dbErr("create poc", err)
	}
	return nil
}

func (d *Directory) UpdatePOC(ctx context.Context, poc *models.PointOfContact) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	if err := d.db.WithContext(ctx).Save(poc).Error; err != nil {
		return dbErr("update poc", err)
	}
	return nil
}

func (d *Directory) DeletePOC(ctx context.Context, id, leadID uint) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	res := d.db.WithContext(ctx).Where("id = ? AND lead_id = ?", id, leadID).Delete(&models.PointOfContact{})
	if res.Error != nil {
		return dbErr("delete poc", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: point of contact %d for lead %d", models.ErrNotFound, id, leadID)
	}
	return nil
}

// --- Calls ---

func (d *Directory) FindCallByID(ctx context.Context, id, leadID uint) (*models.Call, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var call models.Call
	err := d.db.WithContext(ctx).Where("id = ? AND lead_id = ?", id, leadID).First(&call).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: call %d for lead %d", models.ErrNotFound, id, leadID)
	}
	if err != nil {
		return nil, dbErr("find call", err)
	}
	return &call, nil
}

func (d *Directory) ListCalls(ctx context.Context) ([]models.Call, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var calls []models.Call
	if err := d.db.WithContext(ctx).Order("id").Find(&calls).Error; err != nil {
		return nil, dbErr("list calls", err)
	}
	return calls, nil
}

// CallsBetween returns calls whose next call date falls in [start, end).
func (d *Directory) CallsBetween(ctx context.Context, start, end time.Time) ([]models.Call, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var calls []models.Call
	err := d.db.WithContext(ctx).
		Where("next_call_date >= ? AND next_call_date < ?", start, end).
		Order("id").
		Find(&calls).Error
	if err != nil {
		return nil, dbErr("list calls between", err)
	}
	return calls, nil
}

func (d *Directory) CreateCall(ctx context.Context, call *models.Call) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	if err := d.db.WithContext(ctx).Create(call).Error; err != nil {
		return dbErr("create call", err)
	}
	return nil
}

func (d *Directory) UpdateCall(ctx context.Context, call *models.Call) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	if err := d.db.WithContext(ctx).Save(call).Error; err != nil {
		return dbErr("update call", err)
	}
	return nil
}

func (d *Directory) DeleteCall(ctx context.Context, id uint) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	res := d.db.WithContext(ctx).Delete(&models.Call{}, id)
	if res.Error != nil {
		return dbErr("delete call", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: call %d", models.ErrNotFound, id)
	}
	return nil
}
