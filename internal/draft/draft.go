// Package draft holds the in-progress form state and the slots it is
// persisted to between interactions.
package draft

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/angelmondragon/customorder-backend/internal/fields"
)

// StorageKey is the fixed slot name; sessions append their id to it.
const StorageKey = "customOrderFormProgress"

// Key returns the slot for a session, or the bare key when session is empty.
func Key(session string) string {
	if session == "" {
		return StorageKey
	}
	return StorageKey + ":" + session
}

// Value is either a single string or, for multi-select fields, a list.
type Value struct {
	Text  string
	List  []string
	Multi bool
}

func Text(s string) Value { return Value{Text: s} }

func List(items ...string) Value {
	return Value{List: append([]string(nil), items...), Multi: true}
}

func (v Value) Equal(other Value) bool {
	if v.Multi != other.Multi || v.Text != other.Text || len(v.List) != len(other.List) {
		return false
	}
	for i := range v.List {
		if v.List[i] != other.List[i] {
			return false
		}
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Multi {
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*v = Value{}
	case trimmed[0] == '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*v = List(items...)
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = Text(s)
	default:
		// numbers and booleans written by older clients are kept as text
		var raw any
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		*v = Text(fmt.Sprint(raw))
	}
	return nil
}

// Draft is the full state of one in-progress form.
type Draft struct {
	Values      map[string]Value
	CurrentStep int
}

func New() *Draft {
	return &Draft{Values: map[string]Value{}, CurrentStep: 1}
}

func (d *Draft) ensure() {
	if d.Values == nil {
		d.Values = map[string]Value{}
	}
}

// Get returns a scalar value; lists are not returned here.
func (d *Draft) Get(name string) string {
	v, found := d.Values[name]
	if !found || v.Multi {
		return ""
	}
	return v.Text
}

// GetList returns a copy of a list value.
func (d *Draft) GetList(name string) []string {
	v, found := d.Values[name]
	if !found || !v.Multi {
		return nil
	}
	return append([]string(nil), v.List...)
}

func (d *Draft) Set(name, value string) {
	d.ensure()
	d.Values[name] = Text(value)
}

func (d *Draft) SetList(name string, items []string) {
	d.ensure()
	d.Values[name] = List(items...)
}

func (d *Draft) Delete(name string) {
	delete(d.Values, name)
}

// Selection is the ordered list of selected product ids.
func (d *Draft) Selection() []string {
	return d.GetList(fields.Products)
}

// Scalars flattens the draft into the snapshot shape used by validators.
func (d *Draft) Scalars() map[string]string {
	out := make(map[string]string, len(d.Values))
	for name, v := range d.Values {
		if !v.Multi {
			out[name] = v.Text
		}
	}
	return out
}

func (d *Draft) Clone() *Draft {
	out := &Draft{Values: make(map[string]Value, len(d.Values)), CurrentStep: d.CurrentStep}
	for name, v := range d.Values {
		if v.Multi {
			v.List = append([]string(nil), v.List...)
		}
		out.Values[name] = v
	}
	return out
}

func (d *Draft) Equal(other *Draft) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.CurrentStep != other.CurrentStep || len(d.Values) != len(other.Values) {
		return false
	}
	for name, v := range d.Values {
		o, found := other.Values[name]
		if !found || !v.Equal(o) {
			return false
		}
	}
	return true
}

// MarshalJSON writes one flat object with the step under _currentStep.
func (d *Draft) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(d.Values))
	for name := range d.Values {
		if name != fields.CurrentStep {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, name := range names {
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.Values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
		buf.WriteByte(',')
	}
	buf.WriteString(`"` + fields.CurrentStep + `":`)
	buf.WriteString(strconv.Itoa(d.CurrentStep))
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Draft) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := New()
	for name, msg := range raw {
		if name == fields.CurrentStep {
			var step int
			if err := json.Unmarshal(msg, &step); err != nil {
				return fmt.Errorf("draft: invalid %s: %w", fields.CurrentStep, err)
			}
			if step > 0 {
				out.CurrentStep = step
			}
			continue
		}
		var v Value
		if err := json.Unmarshal(msg, &v); err != nil {
			return fmt.Errorf("draft: field %q: %w", name, err)
		}
		out.Values[name] = v
	}
	*d = *out
	return nil
}
