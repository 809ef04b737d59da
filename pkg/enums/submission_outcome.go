package enums

import "fmt"

// SubmissionOutcome is the terminal result of one submit attempt.
type SubmissionOutcome string

const (
	SubmissionSent          SubmissionOutcome = "sent"
	SubmissionInvalid       SubmissionOutcome = "invalid"
	SubmissionNotConfigured SubmissionOutcome = "not_configured"
	SubmissionDispatchError SubmissionOutcome = "dispatch_failed"
)

var validSubmissionOutcomes = []SubmissionOutcome{
	SubmissionSent,
	SubmissionInvalid,
	SubmissionNotConfigured,
	SubmissionDispatchError,
}

func (o SubmissionOutcome) String() string {
	return string(o)
}

func (o SubmissionOutcome) IsValid() bool {
	for _, candidate := range validSubmissionOutcomes {
		if candidate == o {
			return true
		}
	}
	return false
}

func ParseSubmissionOutcome(value string) (SubmissionOutcome, error) {
	for _, candidate := range validSubmissionOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid submission outcome %q", value)
}
