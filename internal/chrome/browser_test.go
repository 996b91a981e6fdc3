package chrome

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	u "mapprint/internal/utils"
)

func testConfig(t *testing.T) u.Config {
	cfg := u.DefaultConfig()
	cfg.PDF.UserDataDir = t.TempDir()
	cfg.PDF.NavTimeoutSecs = 1
	cfg.PDF.TimeoutSecs = 5
	return cfg
}

func TestCreateProfileDir_DefaultAndCustomBase(t *testing.T) {
	cfg := testConfig(t)
	cfg.PDF.UserDataDir = ""
	dir1, err := createProfileDir(cfg)
	if err != nil {
		t.Fatalf("createProfileDir default base failed: %v", err)
	}
	defer os.RemoveAll(dir1)
	if _, err := os.Stat(dir1); err != nil {
		t.Fatalf("expected created dir to exist: %v", err)
	}

	customBase := t.TempDir()
	cfg.PDF.UserDataDir = customBase
	dir2, err := createProfileDir(cfg)
	if err != nil {
		t.Fatalf("createProfileDir custom base failed: %v", err)
	}
	defer os.RemoveAll(dir2)
	if filepath.Dir(dir2) != customBase {
		t.Fatalf("expected profile dir under custom base %q, got %q", customBase, dir2)
	}
}

func TestCreateProfileDir_InvalidBase(t *testing.T) {
	var cfg u.Config
	cfg.PDF.UserDataDir = "/dev/null/x"
	if _, err := createProfileDir(cfg); err == nil {
		t.Fatalf("expected error for invalid base dir")
	}
}

func TestAllocatorOptions_OptionalFlags(t *testing.T) {
	cfg := testConfig(t)
	base := len(allocatorOptions(cfg, "/tmp/p"))

	cfg.PDF.ChromePath = "/usr/bin/chromium"
	cfg.PDF.ChromeNoSandbox = true
	if got := len(allocatorOptions(cfg, "/tmp/p")); got != base+2 {
		t.Fatalf("expected exec path and no-sandbox to add 2 options, got %d -> %d", base, got)
	}
}

func TestIsSessionInterrupted(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: context.Canceled, want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "wrapped deadline", err: errors.Join(ErrPageLoad, context.DeadlineExceeded), want: true},
		{name: "target closed", err: errors.New("target closed"), want: true},
		{name: "normal error", err: errors.New("page load error net::ERR_NAME_NOT_RESOLVED"), want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsSessionInterrupted(tc.err); got != tc.want {
				t.Fatalf("IsSessionInterrupted(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
