package orders

// Status is the customer order fulfillment status.
// Stored as text, but every write goes through the transition table below,
// so unlisted edges are rejected at the boundary regardless of what the
// client UI shows.
type Status string

const (
	StatusPlaced          Status = "PLACED"
	StatusProcessing      Status = "PROCESSING"
	StatusPicked          Status = "PICKED"
	StatusPacked          Status = "PACKED"
	StatusReadyToDispatch Status = "READY_TO_DISPATCH"
	StatusShipped         Status = "SHIPPED"
	StatusDelivered       Status = "DELIVERED"
	StatusCancelled       Status = "CANCELLED"
)

// transitions maps each status to the statuses reachable in one step.
// CANCELLED is reachable from every non-terminal status; DELIVERED and
// CANCELLED are terminal.
var transitions = map[Status][]Status{
	StatusPlaced:          {StatusProcessing, StatusCancelled},
	StatusProcessing:      {StatusPicked, StatusCancelled},
	StatusPicked:          {StatusPacked, StatusCancelled},
	StatusPacked:          {StatusReadyToDispatch, StatusCancelled},
	StatusReadyToDispatch: {StatusShipped, StatusCancelled},
	StatusShipped:         {StatusDelivered, StatusCancelled},
	StatusDelivered:       {},
	StatusCancelled:       {},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0 && s.IsValid()
}

// CanTransitionTo reports whether (s, target) is an edge of the table.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns a copy of the statuses reachable from s.
func (s Status) NextStatuses() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}
