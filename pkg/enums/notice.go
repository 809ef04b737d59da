package enums

import "fmt"

// NoticeKind classifies the user-visible message produced by a form action.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

var validNoticeKinds = []NoticeKind{
	NoticeSuccess,
	NoticeError,
	NoticeInfo,
}

func (k NoticeKind) String() string {
	return string(k)
}

func (k NoticeKind) IsValid() bool {
	for _, candidate := range validNoticeKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// AutoDismiss reports whether the notice disappears on its own; errors stay
// until the user closes them.
func (k NoticeKind) AutoDismiss() bool {
	return k != NoticeError
}

func ParseNoticeKind(value string) (NoticeKind, error) {
	for _, candidate := range validNoticeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notice kind %q", value)
}
