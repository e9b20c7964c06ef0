package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"leadtrack/cache"
	"leadtrack/models"
	"leadtrack/store"
	"leadtrack/utils"
)

// POCInput carries the caller-supplied fields of a point of contact.
type POCInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Role        string `json:"role" validate:"required,max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
}

// POCService orchestrates point-of-contact mutations and the cached contact
// lists.
type POCService struct {
	Directory *store.Directory
	Cache     cache.Cache
	Logger    *logrus.Logger
}

func NewPOCService(directory *store.Directory, c cache.Cache, logger *logrus.Logger) *POCService {
	return &POCService{Directory: directory, Cache: c, Logger: logger}
}

// Add attaches a new point of contact to a lead.
func (ps *POCService) Add(ctx context.Context, leadID uint, in POCInput) (*models.PointOfContact, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err)
	}
	if _, err := ps.Directory.FindLeadByID(ctx, leadID); err != nil {
		return nil, err
	}

	poc := models.PointOfContact{
		LeadID:      leadID,
		Name:        in.Name,
		Role:        in.Role,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
	}
	if err := ps.Directory.CreatePOC(ctx, &poc); err != nil {
		return nil, err
	}

	ps.Cache.Invalidate(ctx, cache.POCMutationKeys(leadID)...)
	return &poc, nil
}

// ListAll returns every point of contact, served from the cache when warm.
func (ps *POCService) ListAll(ctx context.Context) ([]models.PointOfContact, error) {
	if payload, ok := ps.Cache.Get(ctx, cache.KeyAllPOCs); ok {
		var pocs []models.PointOfContact
		if err := json.Unmarshal(payload, &pocs); err == nil {
			return pocs, nil
		}
	}

	pocs, err := ps.Directory.ListPOCs(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(pocs); err == nil {
		ps.Cache.Set(ctx, cache.KeyAllPOCs, payload)
	}
	return pocs, nil
}

// ListByLead returns the contacts of one lead, keyed per lead in the cache.
func (ps *POCService) ListByLead(ctx context.Context, leadID uint) ([]models.PointOfContact, error) {
	if _, err := ps.Directory.FindLeadByID(ctx, leadID); err != nil {
		return nil, err
	}

	key := cache.KeyPOCsForLead(leadID)
	if payload, ok := ps.Cache.Get(ctx, key); ok {
		var pocs []models.PointOfContact
		if err := json.Unmarshal(payload, &pocs); err == nil {
			return pocs, nil
		}
	}

	pocs, err := ps.Directory.POCsByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(pocs); err == nil {
		ps.Cache.Set(ctx, key, payload)
	}
	return pocs, nil
}

// Update rewrites the mutable fields of a contact belonging to leadID.
func (ps *POCService) Update(ctx context.Context, leadID, pocID uint, in POCInput) (*models.PointOfContact, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err)
	}

	poc, err := ps.Directory.FindPOCByID(ctx, pocID, leadID)
	if err != nil {
		return nil, err
	}

	poc.Name = in.Name
	poc.Role = in.Role
	poc.Email = in.Email
	poc.PhoneNumber = in.PhoneNumber
	if err := ps.Directory.UpdatePOC(ctx, poc); err != nil {
		return nil, err
	}

	ps.Cache.Invalidate(ctx, cache.POCMutationKeys(leadID)...)
	return poc, nil
}

func (ps *POCService) Delete(ctx context.Context, leadID, pocID uint) error {
	if err := ps.Directory.DeletePOC(ctx, pocID, leadID); err != nil {
		return err
	}

	ps.Cache.Invalidate(ctx, cache.POCMutationKeys(leadID)...)
	ps.Logger.WithFields(logrus.Fields{"lead_id": leadID, "poc_id": pocID}).Info("point of contact deleted")
	return nil
}
