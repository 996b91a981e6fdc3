package chrome

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	u "mapprint/internal/utils"
)

const (
	viewportWidth  = 1024
	viewportHeight = 1024

	// A4 in inches.
	a4WidthInches  = 8.27
	a4HeightInches = 11.7

	// Chrome emits this lifecycle event once a document has had at most two
	// in-flight connections for 500ms.
	networkAlmostIdle = "networkAlmostIdle"
	lifecycleInit     = "init"
)

var (
	// ErrBrowserLaunch means Chrome could not be started or its profile created.
	ErrBrowserLaunch = errors.New("failed to launch browser")
	// ErrPageLoad wraps navigation and network-idle failures. It is logged, not returned.
	ErrPageLoad = errors.New("failed to load page")
	// ErrPDFExport means Page.printToPDF failed or produced an empty document.
	ErrPDFExport = errors.New("failed to export pdf")
)

// Renderer prints web pages to A4 PDFs with a fresh headless Chrome per call.
type Renderer struct {
	cfg u.Config
}

// NewRenderer returns a Renderer using the Chrome settings in cfg.PDF.
func NewRenderer(cfg u.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render launches Chrome, loads targetURL in a 1024x1024 viewport, waits for
// the network to settle and prints the page. A navigation failure is logged
// and the page is printed in whatever state it reached. The browser and its
// profile directory are always torn down before Render returns.
func (r *Renderer) Render(ctx context.Context, targetURL string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := r.cfg.RenderTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	profileDir, err := createProfileDir(r.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}
	defer os.RemoveAll(profileDir)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(r.cfg, profileDir)...)
	defer allocCancel()
	// Cancelling the first context closes the browser, or returns at once
	// when it never started.
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	watcher := newIdleWatcher()
	chromedp.ListenTarget(browserCtx, watcher.handle)

	// The first Run starts the browser; its lifetime is bound to browserCtx.
	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			watcher.setMainFrame(tree.Frame.ID)
			return page.SetLifecycleEventsEnabled(true).Do(ctx)
		}),
	); err != nil {
		u.Error("Error launching browser", "error", err, "interrupted", IsSessionInterrupted(err))
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	if err := r.navigate(browserCtx, targetURL, watcher); err != nil {
		u.Error("Error loading page", "url", targetURL, "error", err, "interrupted", IsSessionInterrupted(err))
	}

	var pdfBuf []byte
	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdfBuf, _, err = printParams().Do(ctx)
		return err
	})); err != nil {
		u.Error("Error generating pdf page", "url", targetURL, "error", err, "interrupted", IsSessionInterrupted(err))
		return nil, fmt.Errorf("%w: %v", ErrPDFExport, err)
	}
	if len(pdfBuf) == 0 {
		u.Error("Error generating pdf page", "url", targetURL, "error", "empty document")
		return nil, fmt.Errorf("%w: empty document", ErrPDFExport)
	}
	return pdfBuf, nil
}

// navigate loads targetURL and waits for network idle, bounded by the
// configured navigation timeout.
func (r *Renderer) navigate(ctx context.Context, targetURL string, watcher *idleWatcher) error {
	if timeout := r.cfg.NavTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := chromedp.Run(ctx,
		chromedp.Navigate(targetURL),
		chromedp.ActionFunc(watcher.wait),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return nil
}

func printParams() *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(a4WidthInches).
		WithPaperHeight(a4HeightInches)
}

// idleWatcher follows lifecycle events of the main frame and records when
// the current document reaches networkAlmostIdle.
type idleWatcher struct {
	mu        sync.Mutex
	mainFrame cdp.FrameID
	loader    cdp.LoaderID
	idle      bool
	notify    chan struct{}
}

func newIdleWatcher() *idleWatcher {
	return &idleWatcher{notify: make(chan struct{}, 1)}
}

func (w *idleWatcher) setMainFrame(id cdp.FrameID) {
	w.mu.Lock()
	w.mainFrame = id
	w.mu.Unlock()
}

// handle is a chromedp target listener; it must not block.
func (w *idleWatcher) handle(ev interface{}) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok {
		return
	}

	w.mu.Lock()
	if w.mainFrame == "" || e.FrameID != w.mainFrame {
		w.mu.Unlock()
		return
	}
	switch e.Name {
	case lifecycleInit:
		w.loader = e.LoaderID
		w.idle = false
	case networkAlmostIdle:
		if e.LoaderID == w.loader {
			w.idle = true
		}
	}
	idle := w.idle
	w.mu.Unlock()

	if idle {
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
}

func (w *idleWatcher) isIdle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.idle
}

// wait blocks until the current document is network idle or ctx ends.
func (w *idleWatcher) wait(ctx context.Context) error {
	for {
		if w.isIdle() {
			return nil
		}
		select {
		case <-w.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
