package reservation

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusReturned, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition may leave s.
// Returned is terminal for equipment and spaces; vehicles advance the
// separate return_status to verified without touching status again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusReturned, StatusCancelled:
		return true
	default:
		return false
	}
}

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusReturned, StatusCancelled},
}

// CanTransitionTo enforces the lifecycle: no transition skips states,
// and terminal states accept nothing.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// ActiveStatuses are the statuses that occupy a resource's timeline
// for conflict detection.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusApproved}
}

type ResourceKind string

const (
	KindAsset   ResourceKind = "asset"
	KindSpace   ResourceKind = "space"
	KindVehicle ResourceKind = "vehicle"
)

func (k ResourceKind) String() string {
	return string(k)
}

func (k ResourceKind) IsValid() bool {
	switch k {
	case KindAsset, KindSpace, KindVehicle:
		return true
	default:
		return false
	}
}

type ReturnStatus string

const (
	ReturnStatusReturned ReturnStatus = "returned"
	ReturnStatusVerified ReturnStatus = "verified"
)

func (r ReturnStatus) String() string {
	return string(r)
}
