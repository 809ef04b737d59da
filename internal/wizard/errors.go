package wizard

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
)

const (
	MsgFillRequired     = "Please fill in all required fields."
	MsgSelectProduct    = "Please select at least one product to continue."
	MsgMinimumPieces    = "Minimum order quantity is 72 pieces."
	MsgCorrectErrors    = "Please correct the errors before submitting."
	MsgSelectAtLeastOne = "Please select at least one product."
)

// StepError reports why a transition or submission was refused. Fields maps
// each failing field to its verdict message.
type StepError struct {
	Step    Step
	Message string
	Fields  map[string]string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %s", e.Step, e.Message)
}

// AppError converts the refusal into the API error shape.
func (e *StepError) AppError() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, e.Message).WithDetails(map[string]any{
		"step":   int(e.Step),
		"fields": e.Fields,
	})
}
