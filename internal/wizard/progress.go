package wizard

import (
	"fmt"

	"github.com/angelmondragon/customorder-backend/internal/catalog"
	"github.com/angelmondragon/customorder-backend/internal/draft"
	"github.com/angelmondragon/customorder-backend/internal/fields"
)

// StepState is one entry of the progress indicator.
type StepState struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

type Progress struct {
	Current int         `json:"current"`
	Total   int         `json:"total"`
	Steps   []StepState `json:"steps"`
}

// Progress marks every step up to and including the current one as active.
func (c *Controller) Progress(d *draft.Draft) Progress {
	p := Progress{Current: d.CurrentStep, Total: TotalSteps, Steps: make([]StepState, 0, TotalSteps)}
	for step := StepContact; step <= StepReview; step++ {
		p.Steps = append(p.Steps, StepState{
			Number: int(step),
			Title:  step.Title(),
			Active: int(step) <= d.CurrentStep,
		})
	}
	return p
}

type SelectionSummary struct {
	Count        int               `json:"count"`
	Text         string            `json:"text"`
	HasSelection bool              `json:"hasSelection"`
	Products     []catalog.Product `json:"products"`
}

func (c *Controller) SelectionSummary(d *draft.Draft) SelectionSummary {
	products := c.catalog.Filter(d.Selection())
	count := len(products)
	plural := "s"
	if count == 1 {
		plural = ""
	}
	return SelectionSummary{
		Count:        count,
		Text:         fmt.Sprintf("%d product%s selected", count, plural),
		HasSelection: count > 0,
		Products:     products,
	}
}

// Requirements lists the dynamic required flag of every field and whether
// the custom spec field is shown.
type Requirements struct {
	Required           map[string]bool `json:"required"`
	CustomSpecsVisible bool            `json:"customSpecsVisible"`
}

func (c *Controller) Requirements(d *draft.Draft) Requirements {
	req := Requirements{Required: map[string]bool{}, CustomSpecsVisible: c.CustomSpecsRequired(d)}
	for name := range fieldStep {
		req.Required[name] = c.Required(d, name)
	}
	req.Required[fields.Products] = true
	return req
}
