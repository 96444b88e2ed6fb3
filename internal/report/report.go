// Package report renders a mismatch report as colorized text or JSON and
// maps it to a process exit status.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sprite-ai/hydrodiff/internal/model"
)

// Process exit statuses.
const (
	ExitOK       = 0
	ExitMismatch = 1 // mismatches found, or any operational failure
)

// ErrInvalidFormat is returned for an unknown output format.
var ErrInvalidFormat = errors.New("invalid output format")

// Format selects the renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (want text or json)", ErrInvalidFormat, s)
	}
}

// ExitCode returns the exit status for a report.
func ExitCode(r *model.MismatchReport) int {
	if r.Clean() {
		return ExitOK
	}
	return ExitMismatch
}

// Render writes r to w in the given format and returns the exit status the
// report maps to. The report is never modified.
func Render(w io.Writer, r *model.MismatchReport, f Format, opts Options) (int, error) {
	var err error
	switch f {
	case FormatJSON:
		err = RenderJSON(w, r)
	case FormatText, "":
		err = RenderText(w, r, opts)
	default:
		return ExitMismatch, fmt.Errorf("%w: %q", ErrInvalidFormat, f)
	}
	if err != nil {
		return ExitMismatch, err
	}
	return ExitCode(r), nil
}

// RenderJSON writes {"mismatches": [...]} with every line array present,
// empty arrays included.
func RenderJSON(w io.Writer, r *model.MismatchReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document(r)); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// Document returns a copy of r suitable for serialization: nil slices are
// replaced with empty ones so they encode as [] rather than null.
func Document(r *model.MismatchReport) model.MismatchReport {
	out := model.MismatchReport{Mismatches: []model.MismatchRecord{}}
	if r == nil {
		return out
	}
	for _, m := range r.Mismatches {
		out.Mismatches = append(out.Mismatches, model.MismatchRecord{
			ContextBefore: lines(m.ContextBefore),
			ServerLines:   lines(m.ServerLines),
			ClientLines:   lines(m.ClientLines),
			ContextAfter:  lines(m.ContextAfter),
		})
	}
	return out
}

func lines(in []model.LineInfo) []model.LineInfo {
	out := make([]model.LineInfo, len(in))
	copy(out, in)
	return out
}

// Decode reads a report previously written by RenderJSON.
func Decode(rd io.Reader) (*model.MismatchReport, error) {
	var r model.MismatchReport
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &r, nil
}
