package errors

import (
	"strings"
	"testing"
)

func TestValidateElementID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "A", false},
		{"valid with dash", "node-1", false},
		{"valid with dot", "a.b", false},
		{"valid unicode", "節点", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 600), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateElementID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateElementID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidElementID) {
				t.Errorf("ValidateElementID(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateSpriteID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "s1", false},
		{"dotted", "s.1", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpriteID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSpriteID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStyleSheetPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"toml", "styles/default.toml", false},
		{"yaml", "dark.yaml", false},
		{"yml upper", "DARK.YML", false},

		{"empty", "", true},
		{"css", "style.css", true},
		{"no extension", "style", true},
		{"null byte", "a\x00.toml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStyleSheetPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStyleSheetPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
