package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interaction types form a closed set; anything else is rejected at the
// boundary.
const (
	InteractionCall    = "Call"
	InteractionEmail   = "Email"
	InteractionMeeting = "Meeting"

	InteractionOrderPlacement    = "Order Placement"
	InteractionOrderFollowUp     = "Order Follow-up"
	InteractionOrderCancellation = "Order Cancellation"
	InteractionOrderRefund       = "Order Refund"
	InteractionOrderReturn       = "Order Return"
	InteractionOrderExchange     = "Order Exchange"
	InteractionOrderStatus       = "Order Status"
	InteractionOrderPayment      = "Order Payment"
	InteractionOrderDelivery     = "Order Delivery"
	InteractionOther             = "Other"
)

// InteractionTypes lists every accepted interaction_type value.
var InteractionTypes = []string{
	InteractionCall, InteractionEmail, InteractionMeeting,
	InteractionOrderPlacement, InteractionOrderFollowUp,
	InteractionOrderCancellation, InteractionOrderRefund,
	InteractionOrderReturn, InteractionOrderExchange,
	InteractionOrderStatus, InteractionOrderPayment,
	InteractionOrderDelivery, InteractionOther,
}

// ValidInteractionType reports whether t belongs to the closed type set.
func ValidInteractionType(t string) bool {
	for _, v := range InteractionTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Order is one line item embedded in an interaction. Quantity and price are
// pointers so a missing field is distinguishable from an explicit zero.
type Order struct {
	Item     string   `bson:"item" json:"item" validate:"required"`
	Quantity *int     `bson:"quantity" json:"quantity" validate:"required,gt=0"`
	Price    *float64 `bson:"price" json:"price" validate:"required,gte=0"`
}

// Interaction is one contact event stored in the interaction collection.
type Interaction struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`

	LeadID          uint      `bson:"lead_id" json:"lead_id"`
	CallID          *uint     `bson:"call_id,omitempty" json:"call_id,omitempty"`
	InteractionType string    `bson:"interaction_type" json:"interaction_type"`
	InteractionDate time.Time `bson:"interaction_date" json:"interaction_date"`
	Order           []Order   `bson:"order" json:"order"`
	Notes           string    `bson:"interaction_notes,omitempty" json:"interaction_notes,omitempty"`
	FollowUp        string    `bson:"follow_up" json:"follow_up"` // "Yes" or "No"

	// Filled on reads that join against the directory; never stored.
	LeadName string `bson:"-" json:"lead_name,omitempty"`
}

// MetricOrderLine is the loose projection of an order line used by the
// performance scan. Quantity and price stay untyped so a malformed document
// coerces to zero instead of failing the whole scan.
type MetricOrderLine struct {
	Quantity interface{} `bson:"quantity"`
	Price    interface{} `bson:"price"`
}

// MetricDoc is the slice of an interaction document the performance scan
// reads. Decoded once at the store boundary.
type MetricDoc struct {
	LeadID          uint              `bson:"lead_id"`
	InteractionDate time.Time         `bson:"interaction_date"`
	Order           []MetricOrderLine `bson:"order"`
}
