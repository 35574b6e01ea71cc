package entity

// Registration is one waitlist submission. It lives for a single request and
// is never persisted.
type Registration struct {
	FullName     string
	Email        string
	FieldOfStudy string
}

// Outcome is the terminal state of a submission.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeFailed   Outcome = "failed"
)

// DispatchKind names which notification a dispatch carried.
type DispatchKind string

const (
	DispatchConfirmation  DispatchKind = "confirmation"
	DispatchOperatorAlert DispatchKind = "operator_alert"
)
