package forms

import (
	"github.com/angelmondragon/customorder-backend/internal/draft"
	"github.com/angelmondragon/customorder-backend/internal/validation"
	"github.com/angelmondragon/customorder-backend/internal/wizard"
)

// State is everything a client needs to render the current step.
type State struct {
	SessionID    string                  `json:"sessionId"`
	Step         int                     `json:"step"`
	StepTitle    string                  `json:"stepTitle"`
	Values       *draft.Draft            `json:"values"`
	Progress     wizard.Progress         `json:"progress"`
	Selection    wizard.SelectionSummary `json:"selection"`
	Requirements wizard.Requirements     `json:"requirements"`
}

// FieldsInput is a batch of field edits. Products replaces the selection
// when non-nil.
type FieldsInput struct {
	Values   map[string]string
	Products []string
}

// FieldsResult echoes the stored (possibly reformatted) values with a
// verdict for each edited field.
type FieldsResult struct {
	Values   map[string]string             `json:"values"`
	Verdicts map[string]validation.Verdict `json:"verdicts"`
	State    *State                        `json:"state"`
}

// ToggleResult reports the product's new selection flag.
type ToggleResult struct {
	ProductID string `json:"productId"`
	Selected  bool   `json:"selected"`
	State     *State `json:"state"`
}

type StepResult struct {
	Transition wizard.Transition `json:"transition"`
	State      *State            `json:"state"`
}
