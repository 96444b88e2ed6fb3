// Package log configures apex/log for hydrodiff. Diagnostics go to stderr
// so stdout carries only the report.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "HYDRODIFF_LOG"

// Init sets up apex/log with a compact handler writing to w. The level comes
// from HYDRODIFF_LOG (debug, info, warn, error, fatal); verbose raises it to
// at least info.
func Init(w io.Writer, verbose bool) {
	level := ParseLevel(os.Getenv(EnvLevel))
	if verbose && level > log.InfoLevel {
		level = log.InfoLevel
	}
	log.SetHandler(NewHandler(w))
	log.SetLevel(level)
}

// ParseLevel maps a level name to an apex level, defaulting to warn.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
	}
}

// Handler formats entries as "<time> <L> <message> key=value ...".
type Handler struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewHandler returns a Handler writing to w.
func NewHandler(w io.Writer) *Handler {
	return &Handler{w: w, now: time.Now}
}

// HandleLog implements log.Handler.
func (h *Handler) HandleLog(e *log.Entry) error {
	var b strings.Builder
	b.WriteString(h.now().Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(levelLetter(e.Level))
	b.WriteByte(' ')
	b.WriteString(e.Message)
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func levelLetter(l log.Level) string {
	switch l {
	case log.DebugLevel:
		return "D"
	case log.InfoLevel:
		return "I"
	case log.WarnLevel:
		return "W"
	case log.ErrorLevel:
		return "E"
	case log.FatalLevel:
		return "F"
	default:
		return "?"
	}
}
