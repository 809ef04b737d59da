package submission

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/customorder-backend/pkg/enums"
)

const (
	MsgSubmitted      = "Thank you! Your custom order requirements have been submitted successfully. Our team will contact you within 24 hours to discuss your project."
	MsgNotConfigured  = "Email service not configured. Please contact us directly."
	MsgDispatchFailed = "There was an error sending your request. Please try again or contact us directly."
)

// Notice is the single user-visible message produced by a submission.
type Notice struct {
	Kind             enums.NoticeKind
	Message          string
	Dismissible      bool
	AutoDismissAfter time.Duration
	ResetAfter       time.Duration
}

// NoticeTimings controls how long notices stay up and when the form resets
// after a successful send.
type NoticeTimings struct {
	AutoDismiss time.Duration
	ResetDelay  time.Duration
}

func (t NoticeTimings) notice(kind enums.NoticeKind, message string) Notice {
	n := Notice{Kind: kind, Message: message, Dismissible: true}
	if kind.AutoDismiss() {
		n.AutoDismissAfter = t.AutoDismiss
	}
	if kind == enums.NoticeSuccess {
		n.ResetAfter = t.ResetDelay
	}
	return n
}

// MarshalJSON reports the durations in milliseconds.
func (n Notice) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind               enums.NoticeKind `json:"kind"`
		Message            string           `json:"message"`
		Dismissible        bool             `json:"dismissible"`
		AutoDismissAfterMs int64            `json:"autoDismissAfterMs,omitempty"`
		ResetAfterMs       int64            `json:"resetAfterMs,omitempty"`
	}{
		Kind:               n.Kind,
		Message:            n.Message,
		Dismissible:        n.Dismissible,
		AutoDismissAfterMs: n.AutoDismissAfter.Milliseconds(),
		ResetAfterMs:       n.ResetAfter.Milliseconds(),
	})
}
