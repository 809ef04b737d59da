package validation

import (
	"math"
	"testing"
)

func TestLeadingInt(t *testing.T) {
	cases := []struct {
		in     string
		want   int64
		parsed bool
	}{
		{"100", 100, true},
		{"  100 pcs", 100, true},
		{"-5", -5, true},
		{"+80", 80, true},
		{"1e3", 1, true},
		{"", 0, false},
		{"pcs 100", 0, false},
		{"-", 0, false},
		{"99999999999999999999999", math.MaxInt64, true},
	}
	for _, tc := range cases {
		got, parsed := LeadingInt(tc.in)
		if got != tc.want || parsed != tc.parsed {
			t.Fatalf("LeadingInt(%q) = %d,%v want %d,%v", tc.in, got, parsed, tc.want, tc.parsed)
		}
	}
}

func TestFormatPhone(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"55":                 "55",
		"555":                "(555) ",
		"55512":              "(555) 12",
		"555123":             "(555) 123-",
		"5551234567":         "(555) 123-4567",
		"555-123-4567 ext 9": "(555) 123-4567",
		"+1 (555) 123 4567":  "(155) 512-3456",
	}
	for in, want := range cases {
		if got := FormatPhone(in); got != want {
			t.Fatalf("FormatPhone(%q) = %q want %q", in, got, want)
		}
	}
}

func TestFormatPhoneIdempotent(t *testing.T) {
	for _, raw := range []string{"5551234567", "(212) 555-0199", "9998887777"} {
		once := FormatPhone(raw)
		if twice := FormatPhone(once); twice != once {
			t.Fatalf("FormatPhone not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestValidateFile(t *testing.T) {
	if v := ValidateFile(nil); !v.Valid {
		t.Fatalf("absent file should be valid")
	}

	cases := []struct {
		meta  FileMeta
		valid bool
	}{
		{FileMeta{Name: "logo.png", ContentType: "image/png", Size: 1024}, true},
		{FileMeta{Name: "logo.svg", ContentType: "image/svg+xml", Size: MaxUploadBytes}, true},
		{FileMeta{Name: "logo.pdf", ContentType: "application/pdf; charset=binary", Size: 10}, true},
		{FileMeta{Name: "logo.JPG", ContentType: "IMAGE/JPEG", Size: 10}, true},
		{FileMeta{Name: "logo.png", ContentType: "image/png", Size: MaxUploadBytes + 1}, false},
		{FileMeta{Name: "logo.bmp", ContentType: "image/bmp", Size: 10}, false},
		{FileMeta{Name: "logo", ContentType: "", Size: 10}, false},
	}
	for _, tc := range cases {
		v := ValidateFile(&tc.meta)
		if v.Valid != tc.valid {
			t.Fatalf("ValidateFile(%+v) = %+v want valid=%v", tc.meta, v, tc.valid)
		}
		if !tc.valid && v.Message != MsgFile {
			t.Fatalf("unexpected message %q", v.Message)
		}
	}
}

func TestInspectFileWarnsOnlyAboveAdvisoryCeiling(t *testing.T) {
	between := InspectFile(&FileMeta{ContentType: "image/png", Size: 20 * 1024 * 1024})
	if !between.Valid || between.Warning != "" {
		t.Fatalf("20MB file should pass preview without warning, got %+v", between)
	}
	if strict := ValidateFile(&FileMeta{ContentType: "image/png", Size: 20 * 1024 * 1024}); strict.Valid {
		t.Fatalf("20MB file must still fail the submission rule")
	}

	huge := InspectFile(&FileMeta{ContentType: "application/pdf", Size: LargeFileWarningBytes + 1})
	if !huge.Valid || huge.Warning != MsgLargeFileWarning {
		t.Fatalf("expected warning for very large file, got %+v", huge)
	}

	wrong := InspectFile(&FileMeta{ContentType: "text/plain", Size: 1})
	if wrong.Valid || wrong.Message != MsgFileType {
		t.Fatalf("expected type rejection, got %+v", wrong)
	}
}
