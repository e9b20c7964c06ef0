package services

import (
	"github.com/sirupsen/logrus"

	"leadtrack/cache"
	"leadtrack/store"
)

// App bundles the in-process operations this subsystem exposes to callers.
// The API layer owns wire formats; everything here speaks typed records.
type App struct {
	Leads        *LeadService
	POCs         *POCService
	Calls        *CallService
	Interactions *InteractionService
	Performance  *PerformanceService
}

func NewApp(directory *store.Directory, docs InteractionDocs, c cache.Cache, logger *logrus.Logger) *App {
	return &App{
		Leads:        NewLeadService(directory, c, logger),
		POCs:         NewPOCService(directory, c, logger),
		Calls:        NewCallService(directory, c, logger),
		Interactions: NewInteractionService(docs, directory, c, logger),
		Performance:  NewPerformanceService(docs, directory, logger),
	}
}
