package enums

import "fmt"

// CollaboratorState tracks whether an external collaborator finished its
// initialization handshake.
type CollaboratorState string

const (
	CollaboratorUninitialized CollaboratorState = "uninitialized"
	CollaboratorReady         CollaboratorState = "ready"
	CollaboratorFailed        CollaboratorState = "failed"
)

var validCollaboratorStates = []CollaboratorState{
	CollaboratorUninitialized,
	CollaboratorReady,
	CollaboratorFailed,
}

func (s CollaboratorState) String() string {
	return string(s)
}

func (s CollaboratorState) IsValid() bool {
	for _, candidate := range validCollaboratorStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsReady reports whether the collaborator may be called.
func (s CollaboratorState) IsReady() bool {
	return s == CollaboratorReady
}

func ParseCollaboratorState(value string) (CollaboratorState, error) {
	for _, candidate := range validCollaboratorStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid collaborator state %q", value)
}
