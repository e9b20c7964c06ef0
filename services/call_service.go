package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"leadtrack/cache"
	"leadtrack/models"
	"leadtrack/store"
	"leadtrack/utils"
)

// CallInput carries the caller-supplied fields when planning a call. The date
// and time are the lead's local wall clock.
type CallInput struct {
	POCID        uint   `json:"poc_id" validate:"required"`
	Frequency    int    `json:"frequency" validate:"required,gte=1"`
	NextCallDate string `json:"next_call_date" validate:"required"` // "2006-01-02"
	NextCallTime string `json:"next_call_time" validate:"required"` // "15:04:05"
}

// CallService is the scheduling engine: it normalizes lead-local wall clock
// times to the canonical zone, keeps scheduling forward-looking and serves
// the cached call lists.
type CallService struct {
	Directory *store.Directory
	Cache     cache.Cache
	Logger    *logrus.Logger

	now func() time.Time
}

func NewCallService(directory *store.Directory, c cache.Cache, logger *logrus.Logger) *CallService {
	// Stored instants are canonical-zone wall clocks, so "now" must be one
	// too; raw time.Now would be skewed by the host's zone offset.
	return &CallService{Directory: directory, Cache: c, Logger: logger, now: utils.NowCanonical}
}

// Schedule plans a call with a lead through one of its contacts. The
// requested local time is interpreted in the lead's declared zone, normalized
// to the canonical zone, and rolled over by one day if it has already passed.
func (cs *CallService) Schedule(ctx context.Context, leadID uint, in CallInput) (*models.CallSummary, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err)
	}

	lead, err := cs.Directory.FindLeadByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	poc, err := cs.Directory.FindPOCByID(ctx, in.POCID, leadID)
	if err != nil {
		return nil, err
	}

	local, err := time.Parse("2006-01-02 15:04:05", in.NextCallDate+" "+in.NextCallTime)
	if err != nil {
		return nil, fmt.Errorf("%w: bad call date/time: %v", models.ErrInvalidInput, err)
	}

	scheduled, err := utils.ToCanonical(local, lead.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err)
	}
	scheduled = utils.Rollover(scheduled, cs.now())

	call := models.Call{
		LeadID:       leadID,
		POCID:        in.POCID,
		Frequency:    in.Frequency,
		LastCallDate: nil,
		NextCallDate: dateOnly(scheduled),
		NextCallTime: scheduled.Format("15:04:05"),
	}
	if err := cs.Directory.CreateCall(ctx, &call); err != nil {
		return nil, err
	}

	cs.Cache.Invalidate(ctx, cache.CallMutationKeys()...)
	cs.Logger.WithFields(logrus.Fields{
		"lead_id": leadID,
		"call_id": call.ID,
		"next":    scheduled.Format("2006-01-02 15:04:05"),
	}).Info("call scheduled")

	return &models.CallSummary{
		Call:       call,
		LeadName:   lead.Name,
		POCName:    poc.Name,
		POCContact: poc.PhoneNumber,
	}, nil
}

// UpdateFrequency changes a call's cadence and moves the next call date
// frequency days out from now. The scheduled time-of-day is preserved.
func (cs *CallService) UpdateFrequency(ctx context.Context, callID, leadID uint, frequency int) (*models.Call, error) {
	if frequency < 1 {
		return nil, fmt.Errorf("%w: frequency must be at least 1", models.ErrInvalidInput)
	}

	call, err := cs.Directory.FindCallByID(ctx, callID, leadID)
	if err != nil {
		return nil, err
	}

	call.Frequency = frequency
	call.NextCallDate = dateOnly(cs.now()).AddDate(0, 0, frequency)
	if err := cs.Directory.UpdateCall(ctx, call); err != nil {
		return nil, err
	}

	cs.Cache.Invalidate(ctx, cache.CallMutationKeys()...)
	return call, nil
}

// LogCall records that the call happened now and schedules the next one
// frequency days out.
func (cs *CallService) LogCall(ctx context.Context, callID, leadID uint) (*models.Call, error) {
	call, err := cs.Directory.FindCallByID(ctx, callID, leadID)
	if err != nil {
		return nil, err
	}

	now := cs.now()
	call.LastCallDate = &now
	call.NextCallDate = dateOnly(now).AddDate(0, 0, call.Frequency)
	if err := cs.Directory.UpdateCall(ctx, call); err != nil {
		return nil, err
	}

	cs.Cache.Invalidate(ctx, cache.CallMutationKeys()...)
	return call, nil
}

// AllCalls returns every call joined with lead and contact display fields,
// served from the cache when warm.
func (cs *CallService) AllCalls(ctx context.Context) ([]models.CallSummary, error) {
	if payload, ok := cs.Cache.Get(ctx, cache.KeyAllCalls); ok {
		var summaries []models.CallSummary
		if err := json.Unmarshal(payload, &summaries); err == nil {
			return summaries, nil
		}
	}

	calls, err := cs.Directory.ListCalls(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := cs.join(ctx, calls)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(summaries); err == nil {
		cs.Cache.Set(ctx, cache.KeyAllCalls, payload)
	}
	return summaries, nil
}

// CallsToday returns the calls scheduled within today's day window, served
// from the cache when warm.
func (cs *CallService) CallsToday(ctx context.Context) ([]models.CallSummary, error) {
	if payload, ok := cs.Cache.Get(ctx, cache.KeyCallsToday); ok {
		var summaries []models.CallSummary
		if err := json.Unmarshal(payload, &summaries); err == nil {
			return summaries, nil
		}
	}

	summaries, err := cs.computeToday(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(summaries); err == nil {
		cs.Cache.Set(ctx, cache.KeyCallsToday, payload)
	}
	return summaries, nil
}

// CallsDue returns calls whose scheduled instant is at or after asOf, soonest
// first. Calls whose lead or contact has since been deleted are dropped.
func (cs *CallService) CallsDue(ctx context.Context, asOf time.Time) ([]models.CallSummary, error) {
	calls, err := cs.Directory.ListCalls(ctx)
	if err != nil {
		return nil, err
	}

	type dueCall struct {
		call models.Call
		at   time.Time
	}
	due := make([]dueCall, 0, len(calls))
	for _, call := range calls {
		at, err := call.NextCallAt()
		if err != nil {
			cs.Logger.WithFields(logrus.Fields{
				"call_id":        call.ID,
				"next_call_time": call.NextCallTime,
			}).Warn("skipping call with malformed next_call_time")
			continue
		}
		if !at.Before(asOf) {
			due = append(due, dueCall{call: call, at: at})
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].call.ID < due[j].call.ID
		}
		return due[i].at.Before(due[j].at)
	})

	ordered := make([]models.Call, 0, len(due))
	for _, d := range due {
		ordered = append(ordered, d.call)
	}
	return cs.join(ctx, ordered)
}

// PrimeToday recomputes the calls-today entry and rewrites the cache
// unconditionally. Used by the background refresher.
func (cs *CallService) PrimeToday(ctx context.Context) error {
	summaries, err := cs.computeToday(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(summaries)
	if err != nil {
		return err
	}
	cs.Cache.Set(ctx, cache.KeyCallsToday, payload)
	return nil
}

func (cs *CallService) Delete(ctx context.Context, callID uint) error {
	if err := cs.Directory.DeleteCall(ctx, callID); err != nil {
		return err
	}

	cs.Cache.Invalidate(ctx, cache.CallDeleteKeys()...)
	cs.Logger.WithFields(logrus.Fields{"call_id": callID}).Info("call deleted")
	return nil
}

func (cs *CallService) computeToday(ctx context.Context) ([]models.CallSummary, error) {
	start, end := utils.DayWindow(cs.now())
	calls, err := cs.Directory.CallsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return cs.join(ctx, calls)
}

// join resolves display fields in two bulk lookups. A call whose lead or POC
// no longer exists is excluded rather than failing the list.
func (cs *CallService) join(ctx context.Context, calls []models.Call) ([]models.CallSummary, error) {
	leadIDs := make([]uint, 0, len(calls))
	pocIDs := make([]uint, 0, len(calls))
	for _, call := range calls {
		leadIDs = append(leadIDs, call.LeadID)
		pocIDs = append(pocIDs, call.POCID)
	}

	leads, err := cs.Directory.FindLeadsByIDs(ctx, leadIDs)
	if err != nil {
		return nil, err
	}
	pocs, err := cs.Directory.FindPOCsByIDs(ctx, pocIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.CallSummary, 0, len(calls))
	for _, call := range calls {
		lead, okLead := leads[call.LeadID]
		poc, okPOC := pocs[call.POCID]
		if !okLead || !okPOC {
			continue
		}
		summaries = append(summaries, models.CallSummary{
			Call:       call,
			LeadName:   lead.Name,
			POCName:    poc.Name,
			POCContact: poc.PhoneNumber,
		})
	}
	return summaries, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
