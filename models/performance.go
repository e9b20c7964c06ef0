package models

import "time"

// PerformanceMetric is a per-lead ranking row computed on demand from
// interaction history. It is never persisted; caching stands in for storage.
type PerformanceMetric struct {
	LeadID              uint      `json:"id"`
	OrderCount          int       `json:"order_count"`
	TotalOrderValue     float64   `json:"total_order_value"`
	AvgOrderValue       float64   `json:"avg_order_value"`
	LastInteractionDate time.Time `json:"last_interaction_date"`
	LeadName            string    `json:"lead_name"`
}
