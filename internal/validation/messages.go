package validation

const (
	MsgRequired         = "This field is required"
	MsgEmail            = "Please enter a valid email address"
	MsgPhone            = "Please enter a valid phone number (XXX) XXX-XXXX"
	MsgEventDate        = "Event date must be in the future"
	MsgDeadline         = "Delivery deadline must be at least 30 days from today and before event date"
	MsgQuantityMinimum  = "Minimum order quantity is 72 pieces"
	MsgQuantityNumber   = "Please enter a valid number"
	MsgQuantityMaximum  = "Please contact us directly for orders over 10,000 pieces"
	MsgFile             = "Please upload a valid file (JPEG, PNG, GIF, SVG, or PDF) under 10MB"
	MsgFileType         = "Please upload a valid file (JPEG, PNG, GIF, SVG, or PDF)"
	MsgLargeFileWarning = "Very large file detected"
)
