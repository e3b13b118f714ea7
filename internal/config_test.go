package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Inbox.Enabled() {
		t.Error("inbox should be disabled by default")
	}
	if !cfg.Report.Justify {
		t.Error("justification should default to on")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
	cfg := HTTPConfig{Port: 9090}
	if cfg.Address() != ":9090" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestUploadConfig(t *testing.T) {
	cfg := UploadConfig{MaxWorkbookMB: 2, MaxPhotoMB: 1}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid limits rejected: %v", err)
	}
	if cfg.WorkbookBytes() != 2<<20 || cfg.PhotoBytes() != 1<<20 {
		t.Errorf("bytes = %d/%d", cfg.WorkbookBytes(), cfg.PhotoBytes())
	}

	cfg = UploadConfig{MaxWorkbookMB: 0, MaxPhotoMB: 100}
	if err := cfg.Validate(); err == nil {
		t.Error("zero workbook limit and oversized photo limit should fail")
	}
}

func TestReportConfig_AuthorLength(t *testing.T) {
	cfg := ReportConfig{Author: strings.Repeat("a", 121)}
	if err := cfg.Validate(); err == nil {
		t.Error("overlong author should fail validation")
	}
}
