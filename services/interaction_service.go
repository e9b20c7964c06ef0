package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"leadtrack/cache"
	"leadtrack/models"
	"leadtrack/store"
	"leadtrack/utils"
)

// InteractionDocs is the slice of the interaction store the services consume.
type InteractionDocs interface {
	Insert(ctx context.Context, in *models.Interaction) error
	Update(ctx context.Context, id string, in *models.Interaction) error
	Delete(ctx context.Context, id string) error
	FindByLead(ctx context.Context, leadID uint) ([]models.Interaction, error)
	FindAll(ctx context.Context) ([]models.Interaction, error)
	FindInWindow(ctx context.Context, start, end time.Time) ([]models.MetricDoc, error)
}

// InteractionInput carries the caller-supplied fields of an interaction.
type InteractionInput struct {
	CallID          *uint          `json:"call_id"`
	InteractionType string         `json:"interaction_type" validate:"required"`
	InteractionDate time.Time      `json:"interaction_date" validate:"required"`
	Order           []models.Order `json:"order" validate:"omitempty,dive"`
	Notes           string         `json:"interaction_notes"`
	FollowUp        string         `json:"follow_up" validate:"required,oneof=Yes No"`
}

// InteractionService logs contact events and derives lead status from them.
type InteractionService struct {
	Docs      InteractionDocs
	Directory *store.Directory
	Cache     cache.Cache
	Logger    *logrus.Logger
}

func NewInteractionService(docs InteractionDocs, directory *store.Directory, c cache.Cache, logger *logrus.Logger) *InteractionService {
	return &InteractionService{Docs: docs, Directory: directory, Cache: c, Logger: logger}
}

func (is *InteractionService) validate(in InteractionInput) error {
	if !models.ValidInteractionType(in.InteractionType) {
		return fmt.Errorf("%w: unknown interaction type %q", models.ErrInvalidInput, in.InteractionType)
	}
	// Every order line needs an item, a positive quantity and a price; the
	// dive tag rejects lines with a missing field before anything is written.
	if err := utils.ValidateStruct(in); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidInput, err)
	}
	return nil
}

// Log records an interaction for a lead and advances the lead's status:
// converted when the interaction carries at least one order line, contacted
// otherwise. The document is inserted first; a status update failing after a
// successful insert is logged with enough context to reconcile manually.
func (is *InteractionService) Log(ctx context.Context, leadID uint, in InteractionInput) (*models.Interaction, error) {
	if err := is.validate(in); err != nil {
		return nil, err
	}

	lead, err := is.Directory.FindLeadByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	doc := models.Interaction{
		LeadID:          leadID,
		CallID:          in.CallID,
		InteractionType: in.InteractionType,
		InteractionDate: in.InteractionDate,
		Order:           in.Order,
		Notes:           in.Notes,
		FollowUp:        in.FollowUp,
	}
	if err := is.Docs.Insert(ctx, &doc); err != nil {
		return nil, err
	}

	status := models.LeadStatusContacted
	if len(in.Order) > 0 {
		status = models.LeadStatusConverted
	}
	if lead.Status != status {
		if err := is.Directory.UpdateLeadStatus(ctx, leadID, status); err != nil {
			is.Logger.WithFields(logrus.Fields{
				"lead_id":        leadID,
				"interaction_id": doc.ID.Hex(),
				"wanted_status":  status,
				"error":          err.Error(),
			}).Error("interaction stored but lead status update failed, reconcile manually")
			return nil, err
		}
	}

	is.Cache.Invalidate(ctx, cache.InteractionMutationKeys()...)
	doc.LeadName = lead.Name
	return &doc, nil
}

// ListByLead returns the interaction history of one lead.
func (is *InteractionService) ListByLead(ctx context.Context, leadID uint) ([]models.Interaction, error) {
	lead, err := is.Directory.FindLeadByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	interactions, err := is.Docs.FindByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	for i := range interactions {
		interactions[i].LeadName = lead.Name
	}
	return interactions, nil
}

// ListAll returns every interaction joined with its lead's name. Orphaned
// documents resolve to "Unknown" rather than failing the list.
func (is *InteractionService) ListAll(ctx context.Context) ([]models.Interaction, error) {
	interactions, err := is.Docs.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(interactions))
	for _, in := range interactions {
		ids = append(ids, in.LeadID)
	}
	leads, err := is.Directory.FindLeadsByIDs(ctx, ids)
	if err != nil {
		is.Logger.WithField("error", err.Error()).Warn("lead name join failed, using Unknown")
		leads = map[uint]models.Lead{}
	}

	for i := range interactions {
		if lead, ok := leads[interactions[i].LeadID]; ok {
			interactions[i].LeadName = lead.Name
		} else {
			interactions[i].LeadName = "Unknown"
		}
	}
	return interactions, nil
}

// Update rewrites the content of an interaction by id. Identity is immutable.
func (is *InteractionService) Update(ctx context.Context, leadID uint, id string, in InteractionInput) (*models.Interaction, error) {
	if err := is.validate(in); err != nil {
		return nil, err
	}

	doc := models.Interaction{
		LeadID:          leadID,
		CallID:          in.CallID,
		InteractionType: in.InteractionType,
		InteractionDate: in.InteractionDate,
		Order:           in.Order,
		Notes:           in.Notes,
		FollowUp:        in.FollowUp,
	}
	if err := is.Docs.Update(ctx, id, &doc); err != nil {
		return nil, err
	}

	is.Cache.Invalidate(ctx, cache.InteractionMutationKeys()...)
	return &doc, nil
}

func (is *InteractionService) Delete(ctx context.Context, id string) error {
	if err := is.Docs.Delete(ctx, id); err != nil {
		return err
	}

	is.Cache.Invalidate(ctx, cache.InteractionMutationKeys()...)
	is.Logger.WithField("interaction_id", id).Info("interaction deleted")
	return nil
}
