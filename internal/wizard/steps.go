package wizard

import "github.com/angelmondragon/customorder-backend/internal/fields"

// Step is a 1-based position in the form.
type Step int

const (
	StepContact Step = iota + 1
	StepProducts
	StepCustomization
	StepQuantity
	StepReview
)

// TotalSteps is the number of steps; the last one is the review step.
const TotalSteps = int(StepReview)

var stepTitles = map[Step]string{
	StepContact:       "Contact & Event",
	StepProducts:      "Product Selection",
	StepCustomization: "Customization",
	StepQuantity:      "Quantity & Sizing",
	StepReview:        "Review & Submit",
}

func (s Step) Title() string {
	return stepTitles[s]
}

func (s Step) Valid() bool {
	return s >= StepContact && s <= StepReview
}

// FieldSpec is a draft field shown on a step. Required is the static flag;
// the custom spec field is required dynamically.
type FieldSpec struct {
	Name     string
	Label    string
	Required bool
}

var stepFields = map[Step][]FieldSpec{
	StepContact: {
		{Name: fields.ContactName, Label: "Contact Name", Required: true},
		{Name: fields.Email, Label: "Email", Required: true},
		{Name: fields.Phone, Label: "Phone", Required: true},
		{Name: fields.Company, Label: "Company"},
		{Name: fields.EventName, Label: "Event Name", Required: true},
		{Name: fields.EventDate, Label: "Event Date", Required: true},
		{Name: fields.Deadline, Label: "Delivery Deadline", Required: true},
	},
	StepProducts: {},
	StepCustomization: {
		{Name: fields.LogoPosition, Label: "Logo Position"},
		{Name: fields.LogoColors, Label: "Logo Colors"},
		{Name: fields.CustomizationDetails, Label: "Customization Details"},
		{Name: fields.CustomPoloSpecs, Label: "Custom Polo Specifications"},
	},
	StepQuantity: {
		{Name: fields.TotalQuantity, Label: "Total Quantity", Required: true},
		{Name: fields.SizingBreakdown, Label: "Sizing Breakdown"},
		{Name: fields.SpecialRequests, Label: "Special Requests"},
	},
	StepReview: {},
}

var fieldStep = func() map[string]Step {
	out := map[string]Step{}
	for step, specs := range stepFields {
		for _, spec := range specs {
			out[spec.Name] = step
		}
	}
	return out
}()

// FieldsFor returns the fields shown on step.
func FieldsFor(step Step) []FieldSpec {
	return append([]FieldSpec(nil), stepFields[step]...)
}

// KnownField reports whether name is a scalar draft field.
func KnownField(name string) bool {
	_, found := fieldStep[name]
	return found
}
