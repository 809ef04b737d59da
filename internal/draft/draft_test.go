package draft

import (
	"encoding/json"
	"testing"

	"github.com/angelmondragon/customorder-backend/internal/fields"
	"github.com/google/go-cmp/cmp"
)

func sampleDraft() *Draft {
	d := New()
	d.Set(fields.ContactName, "Jane Doe")
	d.Set(fields.Email, "jane@example.com")
	d.Set(fields.Phone, "(555) 123-4567")
	d.Set(fields.CustomizationDetails, "Left chest \"embroidery\"\nsecond line")
	d.SetList(fields.Products, []string{"perform-ace-black", "mens-custom-polo"})
	d.CurrentStep = 3
	return d
}

func TestDraftJSONShape(t *testing.T) {
	d := New()
	d.Set(fields.Email, "jane@example.com")
	d.SetList(fields.Products, []string{"bag-tag"})
	d.CurrentStep = 2

	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"email":"jane@example.com","selected_products[]":["bag-tag"],"_currentStep":2}`
	if string(raw) != want {
		t.Fatalf("unexpected json\n got: %s\nwant: %s", raw, want)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	cases := map[string]*Draft{
		"empty":      New(),
		"populated":  sampleDraft(),
		"empty list": func() *Draft { d := New(); d.SetList(fields.Products, nil); return d }(),
	}
	for name, d := range cases {
		raw, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
		got := New()
		if err := json.Unmarshal(raw, got); err != nil {
			t.Fatalf("%s: unmarshal: %v", name, err)
		}
		if !got.Equal(d) {
			t.Fatalf("%s: round trip mismatch\n got: %+v\nwant: %+v", name, got, d)
		}
	}
}

func TestDraftUnmarshalLenient(t *testing.T) {
	d := New()
	raw := `{"totalQuantity":150,"company":null,"selected_products[]":["a","b"]}`
	if err := json.Unmarshal([]byte(raw), d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Get(fields.TotalQuantity) != "150" {
		t.Fatalf("numeric value should become text, got %q", d.Get(fields.TotalQuantity))
	}
	if d.CurrentStep != 1 {
		t.Fatalf("missing step should default to 1, got %d", d.CurrentStep)
	}
	if diff := cmp.Diff([]string{"a", "b"}, d.Selection()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}

	if err := json.Unmarshal([]byte(`{"_currentStep":"two"}`), New()); err == nil {
		t.Fatalf("expected error for non-numeric step")
	}
	if err := json.Unmarshal([]byte(`{"email":{"nested":true}}`), New()); err != nil {
		t.Fatalf("objects are stringified rather than rejected: %v", err)
	}
}

func TestAccessors(t *testing.T) {
	d := sampleDraft()
	if d.Get(fields.Products) != "" {
		t.Fatalf("Get should not return list values")
	}
	if d.GetList(fields.Email) != nil {
		t.Fatalf("GetList should not return scalar values")
	}

	list := d.GetList(fields.Products)
	list[0] = "mutated"
	if d.Selection()[0] != "perform-ace-black" {
		t.Fatalf("GetList must return a copy")
	}

	scalars := d.Scalars()
	if _, found := scalars[fields.Products]; found {
		t.Fatalf("scalars should skip lists")
	}
	if scalars[fields.Email] != "jane@example.com" {
		t.Fatalf("unexpected scalars %v", scalars)
	}

	clone := d.Clone()
	clone.Set(fields.Email, "other@example.com")
	if d.Get(fields.Email) != "jane@example.com" {
		t.Fatalf("clone must not share values")
	}

	d.Delete(fields.Email)
	if d.Get(fields.Email) != "" {
		t.Fatalf("delete failed")
	}
}

func TestKey(t *testing.T) {
	if Key("") != "customOrderFormProgress" {
		t.Fatalf("unexpected bare key %q", Key(""))
	}
	if Key("abc") != "customOrderFormProgress:abc" {
		t.Fatalf("unexpected session key %q", Key("abc"))
	}
}
