package updater

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCurlFallbackMessage(t *testing.T) {
	msg := CurlFallbackMessage(os.ErrPermission)
	if msg == "" {
		t.Error("CurlFallbackMessage should not return empty string")
	}
	if !strings.Contains(msg, "Self-update failed") {
		t.Errorf("expected message to contain 'Self-update failed', got: %s", msg)
	}
	if !strings.Contains(msg, "curl") {
		t.Errorf("expected message to contain 'curl', got: %s", msg)
	}
	if !strings.Contains(msg, "install.sh") {
		t.Errorf("expected message to contain 'install.sh', got: %s", msg)
	}
}

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{"  v0.1.0 ", "0.1.0"},
	}
	for _, tt := range tests {
		if got := normalizeVersion(tt.in); got != tt.want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSkipUpdateCheck(t *testing.T) {
	orig := os.Getenv("CSVPRISM_SKIP_UPDATE_CHECK")
	defer os.Setenv("CSVPRISM_SKIP_UPDATE_CHECK", orig)

	for _, v := range []string{"1", "true", "yes", "on"} {
		os.Setenv("CSVPRISM_SKIP_UPDATE_CHECK", v)
		if !IsSkipUpdateCheck() {
			t.Errorf("IsSkipUpdateCheck() should be true for %q", v)
		}
	}

	os.Setenv("CSVPRISM_SKIP_UPDATE_CHECK", "0")
	if IsSkipUpdateCheck() {
		t.Error("IsSkipUpdateCheck() should be false for '0'")
	}
	os.Unsetenv("CSVPRISM_SKIP_UPDATE_CHECK")
	if IsSkipUpdateCheck() {
		t.Error("IsSkipUpdateCheck() should be false when unset")
	}
}

func TestUpdateCheckIntervalDays(t *testing.T) {
	orig := os.Getenv("CSVPRISM_UPDATE_CHECK_INTERVAL")
	defer os.Setenv("CSVPRISM_UPDATE_CHECK_INTERVAL", orig)

	os.Unsetenv("CSVPRISM_UPDATE_CHECK_INTERVAL")
	if got := UpdateCheckIntervalDays(); got != 7 {
		t.Errorf("default interval should be 7, got %d", got)
	}

	os.Setenv("CSVPRISM_UPDATE_CHECK_INTERVAL", "14")
	if got := UpdateCheckIntervalDays(); got != 14 {
		t.Errorf("interval should be 14, got %d", got)
	}

	os.Setenv("CSVPRISM_UPDATE_CHECK_INTERVAL", "invalid")
	if got := UpdateCheckIntervalDays(); got != 7 {
		t.Errorf("invalid interval should fallback to 7, got %d", got)
	}
}

func TestCachePath(t *testing.T) {
	orig := os.Getenv("HOME")
	os.Setenv("HOME", t.TempDir())
	defer os.Setenv("HOME", orig)

	path, err := cachePath()
	if err != nil {
		t.Fatalf("cachePath failed: %v", err)
	}
	if path == "" {
		t.Error("cachePath should not return empty string")
	}
	if !filepath.IsAbs(path) {
		t.Errorf("cachePath should return absolute path, got: %s", path)
	}
	if filepath.Base(path) != "update-check.json" {
		t.Errorf("unexpected cache filename: %s", path)
	}
}
