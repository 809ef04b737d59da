package orders

import (
	"strconv"

	"github.com/angelmondragon/customorder-backend/internal/fields"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
)

const (
	notProvided  = "Not provided"
	notSpecified = "Not specified"
	noProducts   = "No products selected"
	noRequests   = "None"
	noLogo       = "No logo uploaded"

	SubmissionDateLayout = "January 2, 2006 at 03:04 PM MST"
)

var providerLabels = map[enums.StorageProvider]string{
	enums.StorageProviderDrive: "Google Drive",
	enums.StorageProviderGCS:   "Google Cloud Storage",
}

// Payload flattens the order into the template parameters of the email.
// Every key is always present.
func (o *Order) Payload() map[string]string {
	products := o.ProductList()
	if products == "" {
		products = noProducts
	}

	payload := map[string]string{
		"contact_name":          o.value(fields.ContactName, notProvided),
		"email":                 o.value(fields.Email, notProvided),
		"phone":                 o.value(fields.Phone, notProvided),
		"company":               o.value(fields.Company, notProvided),
		"event_name":            o.value(fields.EventName, notProvided),
		"event_date":            o.value(fields.EventDate, notProvided),
		"delivery_deadline":     o.value(fields.Deadline, notProvided),
		"selected_products":     products,
		"product_count":         strconv.Itoa(len(o.Lines)),
		"logo_position":         o.value(fields.LogoPosition, notSpecified),
		"logo_colors":           o.value(fields.LogoColors, notSpecified),
		"customization_details": o.value(fields.CustomizationDetails, notProvided),
		"custom_polo_specs":     o.value(fields.CustomPoloSpecs, ""),
		"total_quantity":        o.value(fields.TotalQuantity, notProvided),
		"sizing_breakdown":      o.value(fields.SizingBreakdown, notProvided),
		"special_requests":      o.value(fields.SpecialRequests, noRequests),
		"estimated_total":       o.EstimatedTotalText(),
		"submission_date":       o.SubmittedAt.Format(SubmissionDateLayout),
		"has_custom_polo":       yesNo(o.value(fields.CustomPoloSpecs, "") != ""),
	}
	o.addLogo(payload)
	return payload
}

func (o *Order) addLogo(payload map[string]string) {
	payload["logo_filename"] = noLogo
	payload["logo_info"] = noLogo
	payload["logo_drive_link"] = ""
	payload["has_logo"] = "no"
	payload["drive_upload_success"] = "no"

	u := o.Upload
	if u == nil || !u.Attempted {
		return
	}
	if u.FileName != "" {
		payload["logo_filename"] = u.FileName
		payload["has_logo"] = "yes"
	}
	if !u.Success {
		payload["logo_info"] = "File upload failed: " + u.Error
		return
	}
	label, found := providerLabels[u.Provider]
	if !found {
		label = "file storage"
	}
	payload["logo_info"] = "File uploaded to " + label + ": " + u.ViewLink
	payload["logo_drive_link"] = u.ViewLink
	payload["drive_upload_success"] = "yes"
}

func (o *Order) value(name, fallback string) string {
	if v := o.Values[name]; v != "" {
		return v
	}
	return fallback
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
