package model

// Role decides what a user may do. It replaces per-page email allow-lists.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// EventStatus controls catalog visibility; only published events reach users.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventPublished:
		return true
	default:
		return false
	}
}

// EventMode is how an event is attended.
type EventMode string

const (
	ModeOnline  EventMode = "online"
	ModeOffline EventMode = "offline"
	ModeHybrid  EventMode = "hybrid"
)

// PaymentStatus is the review state of a payment submission.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentApproved, PaymentRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further review is expected.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentApproved, PaymentRejected:
		return true
	case PaymentPending:
		return false
	default:
		return false
	}
}

// CanTransition is the payment review state machine. approved -> rejected is
// the only reverse edge and models revoking an approved payment.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	switch s {
	case PaymentPending:
		return to == PaymentApproved || to == PaymentRejected
	case PaymentApproved:
		return to == PaymentRejected
	case PaymentRejected:
		return false
	default:
		return false
	}
}

// AttendanceStatus tracks a user's registration for an event.
// AttendanceRegistered doubles as "awaiting confirmation".
type AttendanceStatus string

const (
	AttendanceRegistered  AttendanceStatus = "registered"
	AttendanceAttended    AttendanceStatus = "attended"
	AttendanceNotAttended AttendanceStatus = "not_attended"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceRegistered, AttendanceAttended, AttendanceNotAttended:
		return true
	default:
		return false
	}
}

// RegistrationSource records who set the current attendance status.
type RegistrationSource string

const (
	SourceSelf RegistrationSource = "self"
	SourceAuto RegistrationSource = "auto"
)
