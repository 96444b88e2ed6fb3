// Package browser drives a headless Chrome to load a page, let it hydrate
// and serialize the resulting live DOM.
package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// serializeJS returns the doctype (if any) followed by the root element's
// outer HTML.
const serializeJS = `(() => {
	const d = document.doctype;
	const dt = d ? new XMLSerializer().serializeToString(d) + "\n" : "";
	return dt + document.documentElement.outerHTML;
})()`

const pollInterval = 50 * time.Millisecond

// ConsoleFunc observes console output and uncaught exceptions raised by the
// page while it loads and hydrates. level is the console API type ("error",
// "warning", "log", ...) or "exception".
type ConsoleFunc func(level, text string)

// Options configure how hydration is awaited.
type Options struct {
	// Wait is a fixed grace delay after the document is ready.
	Wait time.Duration
	// ReadyExpr, when set, is a JavaScript expression polled until it is
	// truthy, e.g. "window.__HYDRATED__".
	ReadyExpr string
	// Timeout bounds the whole load; zero means no limit beyond ctx.
	Timeout time.Duration
	// ExecPath overrides the Chrome binary.
	ExecPath string
	// NoSandbox disables the Chrome sandbox, needed when running as root in
	// most CI containers.
	NoSandbox bool
	// OnConsole is called for console messages and exceptions.
	OnConsole ConsoleFunc
}

// Browser launches one Chrome process per Hydrated call.
type Browser struct {
	opts Options
}

// New returns a Browser with the given options.
func New(opts Options) *Browser {
	return &Browser{opts: opts}
}

// Hydrated loads url, waits for hydration to settle and returns the live
// DOM serialization. The browser is shut down before returning, on success
// and on failure.
func (b *Browser) Hydrated(ctx context.Context, url string) (string, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if b.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(b.opts.ExecPath))
	}
	if b.opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	bctx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if b.opts.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		bctx, cancelTimeout = context.WithTimeout(bctx, b.opts.Timeout)
		defer cancelTimeout()
	}

	if b.opts.OnConsole != nil {
		chromedp.ListenTarget(bctx, b.listen)
	}

	var html string
	if err := chromedp.Run(bctx, b.tasks(url, &html)); err != nil {
		return "", fmt.Errorf("hydrating %s: %w", url, err)
	}
	return html, nil
}

func (b *Browser) tasks(url string, html *string) chromedp.Tasks {
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if expr := strings.TrimSpace(b.opts.ReadyExpr); expr != "" {
		var ready bool
		tasks = append(tasks, chromedp.Poll("Boolean("+expr+")", &ready, chromedp.WithPollingInterval(pollInterval)))
	}
	if b.opts.Wait > 0 {
		tasks = append(tasks, chromedp.Sleep(b.opts.Wait))
	}
	return append(tasks, chromedp.Evaluate(serializeJS, html))
}

func (b *Browser) listen(ev any) {
	switch e := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		b.opts.OnConsole(string(e.Type), consoleText(e.Args))
	case *runtime.EventExceptionThrown:
		b.opts.OnConsole("exception", exceptionText(e.ExceptionDetails))
	}
}

// consoleText joins console arguments the way a devtools console shows them.
func consoleText(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == nil {
			continue
		}
		if raw := string(arg.Value); raw != "" {
			if s, err := strconv.Unquote(raw); err == nil {
				parts = append(parts, s)
			} else {
				parts = append(parts, raw)
			}
			continue
		}
		parts = append(parts, arg.Description)
	}
	return strings.Join(parts, " ")
}

func exceptionText(d *runtime.ExceptionDetails) string {
	if d == nil {
		return ""
	}
	if d.Exception != nil && d.Exception.Description != "" {
		return d.Exception.Description
	}
	return d.Text
}
