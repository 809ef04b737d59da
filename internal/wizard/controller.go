// Package wizard moves a draft through the ordered form steps and keeps the
// fields that depend on the product selection consistent.
package wizard

import (
	"time"

	"github.com/angelmondragon/customorder-backend/internal/catalog"
	"github.com/angelmondragon/customorder-backend/internal/draft"
	"github.com/angelmondragon/customorder-backend/internal/fields"
	"github.com/angelmondragon/customorder-backend/internal/validation"
	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
)

// Controller is stateless; every call works on the draft it is given.
type Controller struct {
	engine  *validation.Engine
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewController(engine *validation.Engine, cat *catalog.Catalog, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{engine: engine, catalog: cat, now: now}
}

func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

func (c *Controller) Engine() *validation.Engine {
	return c.engine
}

// Now is the controller's clock.
func (c *Controller) Now() time.Time {
	return c.now()
}

func (c *Controller) snapshot(d *draft.Draft) validation.Snapshot {
	return validation.Snapshot{Values: d.Scalars(), Today: c.now()}
}

// CustomSpecsRequired reports whether the selection includes a quote-priced
// product, which makes the custom spec field visible and required.
func (c *Controller) CustomSpecsRequired(d *draft.Draft) bool {
	return c.catalog.HasCustom(d.Selection())
}

// Required is the dynamic required flag for a field.
func (c *Controller) Required(d *draft.Draft, name string) bool {
	if name == fields.CustomPoloSpecs {
		return c.CustomSpecsRequired(d)
	}
	step, found := fieldStep[name]
	if !found {
		return false
	}
	for _, spec := range stepFields[step] {
		if spec.Name == name {
			return spec.Required
		}
	}
	return false
}

// SetField stores one scalar value and returns what was stored. Phone input
// is reformatted as it arrives.
func (c *Controller) SetField(d *draft.Draft, name, value string) (string, error) {
	if name == fields.Products {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "use the product selection to change %s", fields.Products)
	}
	if !KnownField(name) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown field").WithDetails(map[string]string{"field": name})
	}
	if name == fields.Phone {
		value = validation.FormatPhone(value)
	}
	d.Set(name, value)
	c.reconcileCustomSpecs(d)
	return d.Get(name), nil
}

// ValidateField runs the engine for one field against the current draft.
func (c *Controller) ValidateField(d *draft.Draft, name string) validation.Verdict {
	return c.engine.Validate(validation.Field{
		Name:     name,
		Value:    d.Get(name),
		Required: c.Required(d, name),
	}, c.snapshot(d))
}

// ToggleProduct flips one product in the selection and reports whether it
// is now selected.
func (c *Controller) ToggleProduct(d *draft.Draft, id string) (bool, error) {
	if !c.catalog.Contains(id) {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "unknown product").WithDetails(map[string]string{"product": id})
	}
	current := d.Selection()
	next := make([]string, 0, len(current)+1)
	selected := true
	for _, existing := range current {
		if existing == id {
			selected = false
			continue
		}
		next = append(next, existing)
	}
	if selected {
		next = append(next, id)
	}
	d.SetList(fields.Products, c.catalog.Normalize(next))
	c.reconcileCustomSpecs(d)
	return selected, nil
}

// SetSelection replaces the whole selection.
func (c *Controller) SetSelection(d *draft.Draft, ids []string) error {
	for _, id := range ids {
		if !c.catalog.Contains(id) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "unknown product").WithDetails(map[string]string{"product": id})
		}
	}
	d.SetList(fields.Products, c.catalog.Normalize(ids))
	c.reconcileCustomSpecs(d)
	return nil
}

func (c *Controller) reconcileCustomSpecs(d *draft.Draft) {
	if !c.CustomSpecsRequired(d) {
		d.Delete(fields.CustomPoloSpecs)
	}
}

// Reconcile repairs a restored draft: the step is clamped, unknown products
// are dropped and the custom spec rule is applied.
func (c *Controller) Reconcile(d *draft.Draft) {
	switch {
	case d.CurrentStep < int(StepContact):
		d.CurrentStep = int(StepContact)
	case d.CurrentStep > TotalSteps:
		d.CurrentStep = TotalSteps
	}
	if _, found := d.Values[fields.Products]; found {
		d.SetList(fields.Products, c.catalog.Normalize(d.Selection()))
	}
	c.reconcileCustomSpecs(d)
}

// Transition describes a step change.
type Transition struct {
	From          Step `json:"from"`
	To            Step `json:"to"`
	EnteredReview bool `json:"enteredReview"`
}

// Next validates the current step and advances when it passes.
func (c *Controller) Next(d *draft.Draft) (Transition, error) {
	from := Step(d.CurrentStep)
	if err := c.validateStep(d, from); err != nil {
		return Transition{From: from, To: from}, err
	}
	to := from
	if int(from) < TotalSteps {
		to = from + 1
	}
	d.CurrentStep = int(to)
	return Transition{From: from, To: to, EnteredReview: to == StepReview && from != StepReview}, nil
}

// Prev steps back without validation.
func (c *Controller) Prev(d *draft.Draft) Transition {
	from := Step(d.CurrentStep)
	to := from
	if from > StepContact {
		to = from - 1
	}
	d.CurrentStep = int(to)
	return Transition{From: from, To: to}
}

// Reset empties the draft and returns to the first step.
func (c *Controller) Reset(d *draft.Draft) {
	*d = *draft.New()
}

func (c *Controller) validateStep(d *draft.Draft, step Step) *StepError {
	failures := c.fieldFailures(d, step)

	if step == StepProducts && len(d.Selection()) == 0 {
		return &StepError{Step: step, Message: MsgSelectProduct, Fields: map[string]string{fields.Products: MsgSelectProduct}}
	}
	if len(failures) == 0 {
		return nil
	}
	msg := MsgFillRequired
	if step == StepQuantity && failures[fields.TotalQuantity] == validation.MsgQuantityMinimum {
		msg = MsgMinimumPieces
	}
	return &StepError{Step: step, Message: msg, Fields: failures}
}

func (c *Controller) fieldFailures(d *draft.Draft, step Step) map[string]string {
	failures := map[string]string{}
	for _, spec := range stepFields[step] {
		if v := c.ValidateField(d, spec.Name); !v.Valid {
			failures[spec.Name] = v.Message
		}
	}
	return failures
}

// ValidateAll is the submission gate: every field of every step, the
// selection and the strict file rule.
func (c *Controller) ValidateAll(d *draft.Draft, file *validation.FileMeta) error {
	failures := map[string]string{}
	for step := StepContact; step <= StepReview; step++ {
		for name, msg := range c.fieldFailures(d, step) {
			failures[name] = msg
		}
	}
	if v := validation.ValidateFile(file); !v.Valid {
		failures[fields.LogoUpload] = v.Message
	}
	if len(failures) > 0 {
		return &StepError{Step: Step(d.CurrentStep), Message: MsgCorrectErrors, Fields: failures}
	}
	if len(d.Selection()) == 0 {
		return &StepError{Step: Step(d.CurrentStep), Message: MsgSelectAtLeastOne, Fields: map[string]string{fields.Products: MsgSelectAtLeastOne}}
	}
	return nil
}
