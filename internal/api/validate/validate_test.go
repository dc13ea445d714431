package validate

import "testing"

func TestRequired(t *testing.T) {
	if e := Required("title", "  "); e == nil {
		t.Error("whitespace-only value passed Required")
	}
	if e := Required("title", "x"); e != nil {
		t.Errorf("unexpected error: %v", e)
	}
}

func TestMaxLen(t *testing.T) {
	if e := MaxLen("title", "abcdef", 5); e == nil {
		t.Error("over-length value passed MaxLen")
	}
	if e := MaxLen("title", "abcde", 5); e != nil {
		t.Errorf("unexpected error: %v", e)
	}
	// Limits count characters, not bytes.
	if e := MaxLen("title", "héllö", 5); e != nil {
		t.Errorf("5-rune multibyte value failed MaxLen: %v", e)
	}
	if e := MaxLen("title", "héllö!", 5); e == nil {
		t.Error("6-rune multibyte value passed MaxLen")
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErrs int
	}{
		{"valid", "Sup3rsecret", 0},
		{"too short but complete", "Ab1x", 1},
		{"no uppercase", "sup3rsecret", 1},
		{"no lowercase", "SUP3RSECRET", 1},
		{"no digit", "Supersecret", 1},
		{"empty", "", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Password("password", tt.password)
			if len(errs) != tt.wantErrs {
				t.Errorf("Password(%q) = %d errors (%v), want %d", tt.password, len(errs), errs, tt.wantErrs)
			}
		})
	}
}

func TestErrsError(t *testing.T) {
	var errs Errs
	errs.Add("username", "required")
	errs.Add("email", "invalid")
	want := "username: required; email: invalid"
	if errs.Error() != want {
		t.Errorf("Error() = %q, want %q", errs.Error(), want)
	}
}
