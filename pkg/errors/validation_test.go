package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "requests", false},
		{"valid with dash", "my-package", false},
		{"valid with underscore", "my_package", false},
		{"valid with dot", "my.package", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo..bar", true},
		{"slash", "foo/bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"carriage return", "foo\rbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidatePackageName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateModule(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "vision", false},
		{"dotted", "vision.models", false},
		{"deeply dotted", "vision.models.extras", false},
		{"private segment", "vision._internal", false},
		{"with digits", "vision2", false},
		{"underscored", "torch_vision", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"empty segment", "vision..models", true},
		{"trailing dot", "vision.", true},
		{"leading digit", "2vision", true},
		{"dash", "torch-vision", true},
		{"slash", "vision/models", true},
		{"space", "vision models", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModule(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModule(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidModule) {
				t.Errorf("ValidateModule(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateBundleName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "demo-vision", false},
		{"with dots", "demo.vision", false},

		{"empty", "", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"traversal", "..", true},
		{"control char", "a\x01b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBundleName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBundleName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidBundle) {
				t.Errorf("ValidateBundleName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateManifestFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid depshim.toml", "depshim.toml", false},
		{"valid custom", "project.toml", false},

		{"empty", "", true},
		{"with path /", "path/to/file", true},
		{"with path \\", "path\\to\\file", true},
		{"hidden file", ".hidden", true},
		{"hidden file long", ".secret.toml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateManifestFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateManifestFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidModule,
		ErrCodeInvalidManifest,
		ErrCodeInvalidBundle,
		ErrCodeInvalidFormat,
		ErrCodeNotFound,
		ErrCodeModuleNotFound,
		ErrCodeBundleNotFound,
		ErrCodeFileNotFound,
		ErrCodeStorage,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
