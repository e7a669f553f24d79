package common

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	allowed := []string{"json", "text", "markdown"}

	tests := []struct {
		name      string
		format    string
		supported []string
		wantErr   bool
	}{
		{name: "json allowed", format: "json", supported: allowed},
		{name: "text allowed", format: "text", supported: allowed},
		{name: "markdown allowed", format: "markdown", supported: allowed},
		{name: "unknown format rejected", format: "xml", supported: allowed, wantErr: true},
		{name: "match is case sensitive", format: "JSON", supported: allowed, wantErr: true},
		{name: "empty format rejected", format: "", supported: allowed, wantErr: true},
		{name: "empty allow-list accepts anything", format: "xml", supported: nil},
		{name: "single-entry allow-list", format: "text", supported: []string{"json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.wantErr && err == nil {
				t.Fatalf("ValidateOutputFormat(%q, %v) = nil, want error", tt.format, tt.supported)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("ValidateOutputFormat(%q, %v) = %v, want nil", tt.format, tt.supported, err)
			}
		})
	}
}

func TestValidateOutputFormatErrorListsSupported(t *testing.T) {
	err := ValidateOutputFormat("yaml", []string{"json", "text"})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	for _, want := range []string{"yaml", "json", "text"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
