package postgres

import (
	"strings"
	"testing"
)

func TestExistsQuery(t *testing.T) {
	tests := []struct {
		name    string
		col     string
		exclude bool
		wantIn  string
		wantOut string
	}{
		{"username without exclusion", "username", false, "username=$1", "id<>$2"},
		{"username with exclusion", "username", true, "id<>$2", ""},
		{"email without exclusion", "email", false, "email=$1", "id<>$2"},
		{"email with exclusion", "email", true, "id<>$2", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := existsQuery(tt.col, tt.exclude)
			if !strings.Contains(q, tt.wantIn) {
				t.Fatalf("existsQuery(%q, %v) = %q, missing %q", tt.col, tt.exclude, q, tt.wantIn)
			}
			if tt.wantOut != "" && strings.Contains(q, tt.wantOut) {
				t.Fatalf("existsQuery(%q, %v) = %q, must not reference %q", tt.col, tt.exclude, q, tt.wantOut)
			}
		})
	}
}
