package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"leadtrack/cache"
	"leadtrack/models"
	"leadtrack/store"
	"leadtrack/utils"
)

// LeadInput carries the caller-supplied fields of a lead.
type LeadInput struct {
	Name           string `json:"name" validate:"required,max=200"`
	Address        string `json:"address" validate:"required"`
	Zipcode        string `json:"zipcode" validate:"required"`
	State          string `json:"state" validate:"required"`
	Country        string `json:"country" validate:"required"`
	AreaOfInterest string `json:"area_of_interest" validate:"required"`
	Timezone       string `json:"timezone" validate:"required"`
	Status         string `json:"status" validate:"omitempty,oneof=new contacted converted"`
}

// LeadService orchestrates lead record mutations and the cached lead list.
type LeadService struct {
	Directory *store.Directory
	Cache     cache.Cache
	Logger    *logrus.Logger
}

func NewLeadService(directory *store.Directory, c cache.Cache, logger *logrus.Logger) *LeadService {
	return &LeadService{Directory: directory, Cache: c, Logger: logger}
}

// Create adds a new lead. Names are unique; the declared time zone must be a
// known IANA identifier because the call scheduler depends on it later.
func (ls *LeadService) Create(ctx context.Context, in LeadInput) (*models.Lead, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err)
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", models.ErrInvalidInput, in.Timezone)
	}

	if _, err := ls.Directory.FindLeadByName(ctx, in.Name); err == nil {
		return nil, fmt.Errorf("%w: lead with this name already exists", models.ErrInvalidInput)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.LeadStatusNew
	}
	lead := models.Lead{
		Name:           in.Name,
		Address:        in.Address,
		Zipcode:        in.Zipcode,
		State:          in.State,
		Country:        in.Country,
		AreaOfInterest: in.AreaOfInterest,
		Timezone:       in.Timezone,
		Status:         status,
	}
	if err := ls.Directory.CreateLead(ctx, &lead); err != nil {
		return nil, err
	}

	ls.Cache.Invalidate(ctx, cache.LeadMutationKeys()...)
	return &lead, nil
}

func (ls *LeadService) Get(ctx context.Context, id uint) (*models.Lead, error) {
	return ls.Directory.FindLeadByID(ctx, id)
}

// List returns leads, serving the unpaginated shape from the cache. Paginated
// requests always go to the store; only the "all leads" query shape is keyed.
func (ls *LeadService) List(ctx context.Context, offset, limit int) ([]models.Lead, error) {
	cacheable := offset == 0 && limit == 0

	if cacheable {
		if payload, ok := ls.Cache.Get(ctx, cache.KeyAllLeads); ok {
			var leads []models.Lead
			if err := json.Unmarshal(payload, &leads); err == nil {
				return leads, nil
			}
		}
	}

	leads, err := ls.Directory.ListLeads(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if payload, err := json.Marshal(leads); err == nil {
			ls.Cache.Set(ctx, cache.KeyAllLeads, payload)
		}
	}
	return leads, nil
}

func (ls *LeadService) Update(ctx context.Context, id uint, in LeadInput) (*models.Lead, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err)
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", models.ErrInvalidInput, in.Timezone)
	}

	lead, err := ls.Directory.FindLeadByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lead.Name = in.Name
	lead.Address = in.Address
	lead.Zipcode = in.Zipcode
	lead.State = in.State
	lead.Country = in.Country
	lead.AreaOfInterest = in.AreaOfInterest
	lead.Timezone = in.Timezone
	if in.Status != "" {
		lead.Status = in.Status
	}
	if err := ls.Directory.UpdateLead(ctx, lead); err != nil {
		return nil, err
	}

	ls.Cache.Invalidate(ctx, cache.LeadMutationKeys()...)
	return lead, nil
}

// Delete removes a lead. The directory blocks deletion while contacts or
// calls still reference it.
func (ls *LeadService) Delete(ctx context.Context, id uint) error {
	if err := ls.Directory.DeleteLead(ctx, id); err != nil {
		return err
	}

	ls.Cache.Invalidate(ctx, cache.LeadMutationKeys()...)
	ls.Logger.WithFields(logrus.Fields{"lead_id": id}).Info("lead deleted")
	return nil
}
