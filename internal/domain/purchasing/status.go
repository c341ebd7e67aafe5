package purchasing

// Status is the supplier purchase order status.
// Forward-only: CREATED → {APPROVED, CANCELED}; APPROVED → {SHIPPED,
// CANCELED}; SHIPPED → DELIVERED; DELIVERED → RECEIVED.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusApproved  Status = "APPROVED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusReceived  Status = "RECEIVED"
	StatusCanceled  Status = "CANCELED"
)

var transitions = map[Status][]Status{
	StatusCreated:   {StatusApproved, StatusCanceled},
	StatusApproved:  {StatusShipped, StatusCanceled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {StatusReceived},
	StatusReceived:  {},
	StatusCanceled:  {},
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

// IsEditable reports whether item/supplier/delivery-date edits are allowed.
// Editability is a function of current state, not a transition.
func (s Status) IsEditable() bool {
	return s == StatusCreated
}

// IsCancelable reports whether cancellation is allowed from s.
func (s Status) IsCancelable() bool {
	return s == StatusCreated || s == StatusApproved
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}
