package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sort"
	"strings"

	"github.com/angelmondragon/customorder-backend/internal/catalog"
	"github.com/angelmondragon/customorder-backend/internal/draft"
	"github.com/angelmondragon/customorder-backend/internal/fields"
	"github.com/angelmondragon/customorder-backend/internal/forms"
	"github.com/angelmondragon/customorder-backend/internal/orders"
	"github.com/angelmondragon/customorder-backend/internal/submission"
	"github.com/angelmondragon/customorder-backend/internal/validation"
	"github.com/angelmondragon/customorder-backend/internal/wizard"
)

const (
	reviewSubmit = iota
	reviewBack
	reviewStartOver
	reviewQuit
)

var reviewOptions = []string{"Submit order", "Go back", "Start over", "Save and quit"}

var fieldHelp = map[string]string{
	fields.EventDate:     "YYYY-MM-DD",
	fields.Deadline:      "YYYY-MM-DD, at least 30 days from today and before the event",
	fields.TotalQuantity: "Minimum 72 pieces",
}

// runner walks the wizard step by step in the terminal, saving the draft to
// the local slot after every step.
type runner struct {
	prompt     prompter
	controller *wizard.Controller
	assembler  *orders.Assembler
	submitter  forms.Submitter
	drafts     forms.DraftStore
	key        string
	out        io.Writer
	readFile   func(string) ([]byte, error)

	logo *submission.Attachment
}

func (r *runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *runner) Run(ctx context.Context) error {
	d := r.drafts.Load(ctx, r.key)
	r.controller.Reconcile(d)

	if len(d.Values) > 0 {
		resume, err := r.prompt.Confirm(ctx, fmt.Sprintf("Resume your saved order (step %d)?", d.CurrentStep), true)
		if err != nil {
			return err
		}
		if !resume {
			r.controller.Reset(d)
		}
	}

	for {
		step := wizard.Step(d.CurrentStep)
		r.printf("\n%s\n", r.progressLine(d))

		if step == wizard.StepReview {
			done, err := r.review(ctx, d)
			if err != nil || done {
				return err
			}
			continue
		}

		if err := r.askStep(ctx, d, step); err != nil {
			return err
		}
		r.drafts.Save(ctx, r.key, d)

		if _, err := r.controller.Next(d); err != nil {
			var stepErr *wizard.StepError
			if !errors.As(err, &stepErr) {
				return err
			}
			r.printStepError(stepErr)
			continue
		}
		r.drafts.Save(ctx, r.key, d)
	}
}

func (r *runner) progressLine(d *draft.Draft) string {
	p := r.controller.Progress(d)
	marks := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		if s.Active {
			marks = append(marks, "●")
		} else {
			marks = append(marks, "○")
		}
	}
	return fmt.Sprintf("%s  Step %d of %d: %s", strings.Join(marks, " "), p.Current, p.Total, wizard.Step(p.Current).Title())
}

func (r *runner) printStepError(e *wizard.StepError) {
	r.printf("! %s\n", e.Message)
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.printf("  - %s: %s\n", name, e.Fields[name])
	}
}

func (r *runner) askStep(ctx context.Context, d *draft.Draft, step wizard.Step) error {
	if step == wizard.StepProducts {
		return r.askProducts(ctx, d)
	}
	for _, spec := range wizard.FieldsFor(step) {
		if spec.Name == fields.CustomPoloSpecs && !r.controller.CustomSpecsRequired(d) {
			continue
		}
		if err := r.askField(ctx, d, spec); err != nil {
			return err
		}
	}
	if step == wizard.StepCustomization {
		return r.askLogo(ctx)
	}
	return nil
}

// askField re-prompts until the value passes the field's blur check.
func (r *runner) askField(ctx context.Context, d *draft.Draft, spec wizard.FieldSpec) error {
	label := spec.Label
	if r.controller.Required(d, spec.Name) {
		label += " *"
	}
	for {
		value, err := r.prompt.Input(ctx, inputConfig{
			Message: label,
			Default: d.Get(spec.Name),
			Help:    fieldHelp[spec.Name],
		})
		if err != nil {
			return err
		}
		stored, err := r.controller.SetField(d, spec.Name, value)
		if err != nil {
			return err
		}
		if stored != strings.TrimSpace(value) && stored != "" {
			r.printf("  saved as %s\n", stored)
		}
		verdict := r.controller.ValidateField(d, spec.Name)
		if verdict.Valid {
			return nil
		}
		r.printf("! %s\n", verdict.Message)
	}
}

func priceLabel(p catalog.Price) string {
	if p.Quote {
		return "Quote"
	}
	return "$" + p.Amount.StringFixed(2)
}

func (r *runner) askProducts(ctx context.Context, d *draft.Draft) error {
	products := r.controller.Catalog().Products()
	options := make([]string, len(products))
	selected := map[string]bool{}
	for _, id := range d.Selection() {
		selected[id] = true
	}
	var defaults []int
	for i, p := range products {
		options[i] = fmt.Sprintf("%s (%s)", p.Name, priceLabel(p.Price))
		if selected[p.ID] {
			defaults = append(defaults, i)
		}
	}

	picked, err := r.prompt.MultiSelect(ctx, selectConfig{
		Message:  "Select products",
		Options:  options,
		Defaults: defaults,
		PageSize: 12,
	})
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(picked))
	for _, i := range picked {
		if i >= 0 && i < len(products) {
			ids = append(ids, products[i].ID)
		}
	}
	if err := r.controller.SetSelection(d, ids); err != nil {
		return err
	}
	r.printf("  %s\n", r.controller.SelectionSummary(d).Text)
	return nil
}

// askLogo keeps the attachment in memory only; the draft never stores file
// contents.
func (r *runner) askLogo(ctx context.Context) error {
	for {
		def := ""
		if r.logo != nil {
			def = r.logo.Name
		}
		path, err := r.prompt.Input(ctx, inputConfig{
			Message: "Logo file path (optional)",
			Default: def,
			Help:    "JPEG, PNG, GIF, SVG or PDF under 10MB",
		})
		if err != nil {
			return err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			r.logo = nil
			return nil
		}
		if r.logo != nil && path == r.logo.Name {
			return nil
		}

		data, err := r.readFile(path)
		if err != nil {
			r.printf("! could not read %s: %v\n", path, err)
			continue
		}
		file := &submission.Attachment{
			Name:        filepath.Base(path),
			ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
			Size:        int64(len(data)),
			Data:        data,
		}
		verdict := validation.InspectFile(file.Meta())
		if verdict.Valid && validation.ValidateFile(file.Meta()).Valid {
			r.logo = file
			return nil
		}
		msg := validation.MsgFile
		if !verdict.Valid {
			msg = verdict.Message
		}
		r.printf("! %s\n", msg)
	}
}

func (r *runner) review(ctx context.Context, d *draft.Draft) (bool, error) {
	r.printSummary(r.assembler.Summary(d))

	choice, err := r.prompt.Select(ctx, selectConfig{Message: "What next?", Options: reviewOptions})
	if err != nil {
		return false, err
	}
	switch choice {
	case reviewBack:
		r.controller.Prev(d)
		r.drafts.Save(ctx, r.key, d)
		return false, nil
	case reviewStartOver:
		r.drafts.Clear(ctx, r.key)
		r.controller.Reset(d)
		r.logo = nil
		return false, nil
	case reviewQuit:
		r.drafts.Save(ctx, r.key, d)
		r.printf("Draft saved. Run again to continue.\n")
		return true, nil
	}

	outcome, err := r.submitter.Submit(ctx, submission.Request{
		SessionID:  "terminal",
		SessionKey: r.key,
		Draft:      d,
		File:       r.logo,
	})
	if outcome != nil {
		r.printf("\n%s\n", outcome.Notice.Message)
	}
	if err != nil {
		var stepErr *wizard.StepError
		if errors.As(err, &stepErr) {
			r.printStepError(stepErr)
		}
		return false, nil
	}
	return true, nil
}

func (r *runner) printSummary(s orders.Summary) {
	r.printf("Order Summary\n")
	r.printf("  Contact: %s <%s> %s", s.Contact.Name, s.Contact.Email, s.Contact.Phone)
	if s.Contact.Company != "" {
		r.printf(" (%s)", s.Contact.Company)
	}
	r.printf("\n  Event: %s on %s, deliver by %s\n", s.Event.Name, s.Event.Date, s.Event.Deadline)
	if len(s.Products) > 0 {
		r.printf("  Products:\n")
		for _, p := range s.Products {
			r.printf("    • %s - %s\n", p.Name, p.Price)
		}
		r.printf("  Estimated Total: %s\n", s.EstimatedTotal)
	}
	if c := s.Customization; c != nil {
		r.printf("  Customization:\n")
		if c.LogoPosition != "" {
			r.printf("    Logo position: %s\n", c.LogoPosition)
		}
		if c.LogoColors != "" {
			r.printf("    Logo colors: %s\n", c.LogoColors)
		}
		if c.Details != "" {
			r.printf("    Details: %s\n", c.Details)
		}
		for _, line := range c.CustomSpecLines {
			r.printf("    %s\n", line)
		}
	}
	r.printf("  Quantity: %s\n", s.Quantity.Total)
	if s.Quantity.SizingBreakdown != "" {
		r.printf("    Sizing: %s\n", s.Quantity.SizingBreakdown)
	}
	if s.Quantity.SpecialRequests != "" {
		r.printf("    Special requests: %s\n", s.Quantity.SpecialRequests)
	}
	if r.logo != nil {
		r.printf("  Logo: %s\n", r.logo.Name)
	}
}
