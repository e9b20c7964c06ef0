package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"leadtrack/models"
	"leadtrack/store"
)

// Classification selects which ranking variant runs.
type Classification string

const (
	WellPerforming  Classification = "well_performing"
	UnderPerforming Classification = "under_performing"
	TotalData       Classification = "total"
)

// DefaultWindow is the trailing window used when the caller does not bound
// the scan.
const DefaultWindow = 30 * 24 * time.Hour

// PerformanceService is the aggregation engine: it scans interaction
// documents, groups them per lead and joins the ranking against lead names.
type PerformanceService struct {
	Docs      InteractionDocs
	Directory *store.Directory
	Logger    *logrus.Logger

	now func() time.Time
}

func NewPerformanceService(docs InteractionDocs, directory *store.Directory, logger *logrus.Logger) *PerformanceService {
	return &PerformanceService{Docs: docs, Directory: directory, Logger: logger, now: time.Now}
}

type leadGroup struct {
	leadID     uint
	orderCount int
	totalValue float64
	lastDate   time.Time
}

// ComputeMetrics scans interactions dated in [windowStart, windowEnd) and
// returns the per-lead ranking for the given classification, truncated to
// limit when limit > 0. Zero window bounds default to the trailing 30 days.
func (ps *PerformanceService) ComputeMetrics(ctx context.Context, windowStart, windowEnd time.Time, class Classification, limit int) ([]models.PerformanceMetric, error) {
	switch class {
	case WellPerforming, UnderPerforming, TotalData:
	default:
		return nil, fmt.Errorf("%w: unknown classification %q", models.ErrInvalidInput, class)
	}

	if windowEnd.IsZero() {
		windowEnd = ps.now()
	}
	if windowStart.IsZero() {
		windowStart = windowEnd.Add(-DefaultWindow)
	}

	docs, err := ps.Docs.FindInWindow(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	groups := make(map[uint]*leadGroup)
	for _, doc := range docs {
		// The total variant drops interactions without line items before
		// grouping, so a lead whose window holds only orderless events does
		// not appear at all.
		if class == TotalData && len(doc.Order) == 0 {
			continue
		}

		g, ok := groups[doc.LeadID]
		if !ok {
			g = &leadGroup{leadID: doc.LeadID}
			groups[doc.LeadID] = g
		}
		for _, line := range doc.Order {
			g.orderCount++
			g.totalValue += coerce(line.Price) * coerce(line.Quantity)
		}
		if doc.InteractionDate.After(g.lastDate) {
			g.lastDate = doc.InteractionDate
		}
	}

	ranked := make([]*leadGroup, 0, len(groups))
	for _, g := range groups {
		if class == UnderPerforming && g.orderCount == 0 {
			continue
		}
		ranked = append(ranked, g)
	}

	switch class {
	case WellPerforming:
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].orderCount != ranked[j].orderCount {
				return ranked[i].orderCount > ranked[j].orderCount
			}
			return ranked[i].leadID < ranked[j].leadID
		})
	case UnderPerforming:
		// Fewer orders, then lower value, then older activity ranks "more
		// under-performing" first.
		sort.Slice(ranked, func(i, j int) bool {
			a, b := ranked[i], ranked[j]
			if a.orderCount != b.orderCount {
				return a.orderCount < b.orderCount
			}
			if a.totalValue != b.totalValue {
				return a.totalValue < b.totalValue
			}
			if !a.lastDate.Equal(b.lastDate) {
				return a.lastDate.Before(b.lastDate)
			}
			return a.leadID < b.leadID
		})
	case TotalData:
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].leadID < ranked[j].leadID })
	}

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	ids := make([]uint, 0, len(ranked))
	for _, g := range ranked {
		ids = append(ids, g.leadID)
	}
	leads, err := ps.Directory.FindLeadsByIDs(ctx, ids)
	if err != nil {
		// A directory outage degrades the join, not the ranking.
		ps.Logger.WithField("error", err.Error()).Warn("lead name join failed, using Unknown")
		leads = map[uint]models.Lead{}
	}

	metrics := make([]models.PerformanceMetric, 0, len(ranked))
	for _, g := range ranked {
		name := "Unknown"
		if lead, ok := leads[g.leadID]; ok {
			name = lead.Name
		}
		avg := 0.0
		if g.orderCount > 0 {
			avg = g.totalValue / float64(g.orderCount)
		}
		metrics = append(metrics, models.PerformanceMetric{
			LeadID:              g.leadID,
			OrderCount:          g.orderCount,
			TotalOrderValue:     g.totalValue,
			AvgOrderValue:       avg,
			LastInteractionDate: g.lastDate,
			LeadName:            name,
		})
	}
	return metrics, nil
}

// coerce turns a loosely typed bson value into a float64, defaulting missing
// or non-numeric values to 0 so one malformed line never sinks the ranking.
func coerce(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
