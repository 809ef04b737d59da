// Package fields names the form fields shared by the validation, wizard and
// order packages and by API clients.
package fields

const (
	ContactName = "contactName"
	Email       = "email"
	Phone       = "phone"
	Company     = "company"
	EventName   = "eventName"
	EventDate   = "eventDate"
	Deadline    = "deadline"

	// Products holds the ordered selection of catalog ids.
	Products = "selected_products[]"

	LogoPosition         = "logoPosition"
	LogoColors           = "logoColors"
	CustomizationDetails = "customizationDetails"
	CustomPoloSpecs      = "customPoloSpecs"
	LogoUpload           = "logoUpload"

	TotalQuantity   = "totalQuantity"
	SizingBreakdown = "sizingBreakdown"
	SpecialRequests = "specialRequests"

	// CurrentStep is the reserved draft key for the step index.
	CurrentStep = "_currentStep"
)
