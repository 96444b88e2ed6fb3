package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleText(t *testing.T) {
	args := []*runtime.RemoteObject{
		{Type: runtime.TypeString, Value: []byte(`"Hydration failed"`)},
		{Type: runtime.TypeNumber, Value: []byte(`42`)},
		nil,
		{Type: runtime.TypeObject, Description: "Error: text content does not match"},
	}

	assert.Equal(t, "Hydration failed 42 Error: text content does not match", consoleText(args))
	assert.Equal(t, "", consoleText(nil))
}

func TestExceptionText(t *testing.T) {
	assert.Equal(t, "", exceptionText(nil))
	assert.Equal(t, "Uncaught", exceptionText(&runtime.ExceptionDetails{Text: "Uncaught"}))
	assert.Equal(t, "TypeError: x is undefined", exceptionText(&runtime.ExceptionDetails{
		Text:      "Uncaught",
		Exception: &runtime.RemoteObject{Description: "TypeError: x is undefined"},
	}))
}

func TestTasksFollowOptions(t *testing.T) {
	var html string

	assert.Len(t, New(Options{}).tasks("http://x", &html), 3)
	assert.Len(t, New(Options{Wait: time.Second}).tasks("http://x", &html), 4)
	assert.Len(t, New(Options{Wait: time.Second, ReadyExpr: "window.done"}).tasks("http://x", &html), 5)
	assert.Len(t, New(Options{ReadyExpr: "   "}).tasks("http://x", &html), 3)
}

func TestListenForwardsEvents(t *testing.T) {
	var got [][2]string
	b := New(Options{OnConsole: func(level, text string) {
		got = append(got, [2]string{level, text})
	}})

	b.listen(&runtime.EventConsoleAPICalled{
		Type: runtime.APITypeError,
		Args: []*runtime.RemoteObject{{Value: []byte(`"mismatch"`)}},
	})
	b.listen(&runtime.EventExceptionThrown{ExceptionDetails: &runtime.ExceptionDetails{Text: "boom"}})
	b.listen("unrelated")

	assert.Equal(t, [][2]string{{"error", "mismatch"}, {"exception", "boom"}}, got)
}

func chromePath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no Chrome binary on PATH")
	return ""
}

func TestHydratedIntegration(t *testing.T) {
	path := chromePath(t)

	page := `<!DOCTYPE html><html><body><div id="root">server</div>
<script>
document.getElementById("root").textContent = "client";
console.error("hydrated");
window.__HYDRATED__ = true;
</script></body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer ts.Close()

	var (
		mu       sync.Mutex
		messages []string
	)
	b := New(Options{
		ReadyExpr: "window.__HYDRATED__",
		Timeout:   30 * time.Second,
		ExecPath:  path,
		NoSandbox: true,
		OnConsole: func(level, text string) {
			mu.Lock()
			defer mu.Unlock()
			messages = append(messages, level+":"+text)
		},
	})

	html, err := b.Hydrated(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Contains(t, html, `<div id="root">client</div>`)
	assert.Contains(t, html, "<!DOCTYPE html>")
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, messages, "error:hydrated")
}
