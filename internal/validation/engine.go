// Package validation turns a field value plus a snapshot of its siblings
// into a verdict. Nothing here reads the clock or mutates state.
package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/angelmondragon/customorder-backend/internal/fields"
)

const (
	MinimumQuantity = 72
	MaximumQuantity = 10000

	deadlineLeadDays = 30
	dateLayout       = "2006-01-02"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\(\d{3}\)\s\d{3}-\d{4}$`)
)

// Verdict is the outcome of validating one value.
type Verdict struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Warning string `json:"warning,omitempty"`
}

func ok() Verdict { return Verdict{Valid: true} }

func fail(msg string) Verdict { return Verdict{Valid: false, Message: msg} }

// Snapshot carries the sibling values and the caller's notion of today.
type Snapshot struct {
	Values map[string]string
	Today  time.Time
}

func (s Snapshot) value(name string) string {
	if s.Values == nil {
		return ""
	}
	return strings.TrimSpace(s.Values[name])
}

// Field is the value under validation together with its dynamic required flag.
type Field struct {
	Name     string
	Value    string
	Required bool
}

// Rule is either a pattern or a check; Message is reported on failure.
type Rule struct {
	Pattern *regexp.Regexp
	Check   func(value string, snap Snapshot) bool
	Message string
}

func (r Rule) passes(value string, snap Snapshot) bool {
	if r.Pattern != nil && !r.Pattern.MatchString(value) {
		return false
	}
	if r.Check != nil && !r.Check(value, snap) {
		return false
	}
	return true
}

// Engine holds the immutable rule table.
type Engine struct {
	rules map[string]Rule
	loc   *time.Location
}

// NewEngine builds the rule table. Dates are interpreted in loc.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	e := &Engine{loc: loc}
	e.rules = map[string]Rule{
		fields.Email:         {Pattern: emailPattern, Message: MsgEmail},
		fields.Phone:         {Pattern: phonePattern, Message: MsgPhone},
		fields.EventDate:     {Check: e.eventDateInFuture, Message: MsgEventDate},
		fields.Deadline:      {Check: e.deadlineInWindow, Message: MsgDeadline},
		fields.TotalQuantity: {Check: quantityMeetsMinimum, Message: MsgQuantityMinimum},
	}
	return e
}

// Location is the zone used to interpret dates.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// HasRule reports whether a value rule exists for the field.
func (e *Engine) HasRule(name string) bool {
	_, found := e.rules[name]
	return found
}

// Validate applies the required rule first, then the field's value rule.
// A blank optional value is always valid.
func (e *Engine) Validate(f Field, snap Snapshot) Verdict {
	value := strings.TrimSpace(f.Value)
	if value == "" {
		if f.Required {
			return fail(MsgRequired)
		}
		return ok()
	}

	rule, found := e.rules[f.Name]
	if !found {
		return ok()
	}
	if !rule.passes(value, snap) {
		return fail(rule.Message)
	}
	return ok()
}

func (e *Engine) today(snap Snapshot) time.Time {
	now := snap.Today
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(e.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)
}

// ParseDate reads a YYYY-MM-DD value in the engine's location.
func (e *Engine) ParseDate(value string) (time.Time, bool) {
	parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), e.loc)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func (e *Engine) eventDateInFuture(value string, snap Snapshot) bool {
	date, parsed := e.ParseDate(value)
	if !parsed {
		return false
	}
	return date.After(e.today(snap))
}

func (e *Engine) deadlineInWindow(value string, snap Snapshot) bool {
	deadline, parsed := e.ParseDate(value)
	if !parsed {
		return false
	}
	earliest := e.today(snap).AddDate(0, 0, deadlineLeadDays)
	if deadline.Before(earliest) {
		return false
	}

	rawEvent := snap.value(fields.EventDate)
	if rawEvent == "" {
		return true
	}
	event, parsed := e.ParseDate(rawEvent)
	if !parsed {
		return false
	}
	return !deadline.After(event)
}

func quantityMeetsMinimum(value string, _ Snapshot) bool {
	q, parsed := LeadingInt(value)
	return parsed && q >= MinimumQuantity
}

// CheckQuantityLive is the stricter check run while the user types. It is
// not part of step gating.
func CheckQuantityLive(value string) Verdict {
	q, parsed := LeadingInt(value)
	switch {
	case !parsed:
		return fail(MsgQuantityNumber)
	case q < MinimumQuantity:
		return fail(MsgQuantityMinimum)
	case q > MaximumQuantity:
		return fail(MsgQuantityMaximum)
	}
	return ok()
}
