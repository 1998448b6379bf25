package events

// EventType defines the type of event in the system
type EventType string

const (
	// RecordDeleted fires after a Lead or Opportunity row is removed
	RecordDeleted EventType = "record.deleted"
	// LeadConverted fires after a lead's notes and contacts moved to an opportunity
	LeadConverted EventType = "lead.converted"
)

// String returns the string representation of the event type
func (e EventType) String() string {
	return string(e)
}
