package cache

import (
	"fmt"
	"time"
)

// DefaultTTL bounds how stale a cached list may get without an explicit
// write. Explicitly invalidated keys never serve stale data.
const DefaultTTL = time.Hour

// Cache keys name query shapes, not rows.
const (
	KeyAllLeads   = "leads-all"
	KeyAllPOCs    = "pocs-all"
	KeyAllCalls   = "calls-all"
	KeyCallsToday = "calls-today"
)

// KeyPOCsForLead names the cached contact list of one lead.
func KeyPOCsForLead(leadID uint) string {
	return fmt.Sprintf("pocs-lead-%d", leadID)
}

// The functions below are the invalidation contract: every mutation path maps
// to exactly one of them, so the full set of keys a write clears is reviewable
// here instead of being scattered across call sites.

// LeadMutationKeys is cleared by create/update/delete of a lead.
func LeadMutationKeys() []string {
	return []string{KeyAllLeads}
}

// POCMutationKeys is cleared by create/update/delete of a point of contact.
func POCMutationKeys(leadID uint) []string {
	return []string{KeyAllPOCs, KeyPOCsForLead(leadID)}
}

// CallMutationKeys is cleared by creating a call or updating any of its
// fields.
func CallMutationKeys() []string {
	return []string{KeyAllCalls, KeyCallsToday}
}

// CallDeleteKeys is cleared by deleting a call.
func CallDeleteKeys() []string {
	return []string{KeyAllCalls}
}

// InteractionMutationKeys is cleared by insert/update/delete of an
// interaction. No analytics read is cached, but logging an interaction also
// advances the owning lead's status, which the lead list reflects.
func InteractionMutationKeys() []string {
	return []string{KeyAllLeads}
}
