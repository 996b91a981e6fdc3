package chrome

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chromedp/chromedp"

	u "mapprint/internal/utils"
)

// createProfileDir makes a throwaway Chrome profile directory under
// cfg.PDF.UserDataDir, or the OS temp dir when that is empty.
func createProfileDir(cfg u.Config) (string, error) {
	base := cfg.PDF.UserDataDir
	if base == "" {
		base = os.TempDir()
	}
	dir, err := os.MkdirTemp(base, "chromedata-*")
	if err != nil {
		return "", fmt.Errorf("cannot create temp profile dir: %w", err)
	}
	return dir, nil
}

// allocatorOptions returns the exec allocator flags for a single headless run.
func allocatorOptions(cfg u.Config, profileDir string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		chromedp.WindowSize(viewportWidth, viewportHeight),
		// Force software rendering and avoid Vulkan/ANGLE issues in minimal container environments.
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-gpu-compositing", true),
		chromedp.Flag("disable-features", "Vulkan,UseSkiaRenderer"),
		chromedp.Flag("use-gl", "swiftshader"),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.PDF.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.PDF.ChromePath))
	}
	if cfg.PDF.ChromeNoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	return opts
}

// IsSessionInterrupted reports whether err means the browser session went
// away underneath us rather than the page itself failing.
func IsSessionInterrupted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "target closed") ||
		strings.Contains(msg, "websocket") ||
		strings.Contains(msg, "browser closed")
}
