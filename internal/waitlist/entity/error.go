package entity

import "fmt"

// ErrorKind classifies why a submission failed. Clients never see it.
type ErrorKind int

const (
	KindMalformedInput ErrorKind = iota + 1
	KindComposeFailure
	KindDispatchFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedInput:
		return "malformed_input"
	case KindComposeFailure:
		return "compose_failure"
	case KindDispatchFailure:
		return "dispatch_failure"
	default:
		return "unknown"
	}
}

// Step names the point of the submission flow where it stopped.
type Step string

const (
	StepDecode               Step = "decode"
	StepValidate             Step = "validate"
	StepComposeConfirmation  Step = "compose_confirmation"
	StepSendConfirmation     Step = "send_confirmation"
	StepComposeOperatorAlert Step = "compose_operator_alert"
	StepSendOperatorAlert    Step = "send_operator_alert"
)

// Sentinels for errors.Is checks on the kind only.
var (
	ErrMalformedInput  = &SubmissionError{Kind: KindMalformedInput}
	ErrComposeFailure  = &SubmissionError{Kind: KindComposeFailure}
	ErrDispatchFailure = &SubmissionError{Kind: KindDispatchFailure}
)

// SubmissionError is the typed failure of a submission: what went wrong, where,
// and the underlying cause.
type SubmissionError struct {
	Kind ErrorKind
	Step Step
	Err  error
}

func NewSubmissionError(kind ErrorKind, step Step, err error) *SubmissionError {
	return &SubmissionError{Kind: kind, Step: step, Err: err}
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("waitlist: %s", e.Kind)
	}
	return fmt.Sprintf("waitlist: %s at %s: %v", e.Kind, e.Step, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Is matches another SubmissionError of the same kind. A target with a Step
// also has to match the step.
func (e *SubmissionError) Is(target error) bool {
	t, ok := target.(*SubmissionError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Step == "" || t.Step == e.Step)
}
