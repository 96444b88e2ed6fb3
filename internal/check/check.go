// Package check wires snapshot acquisition to the mismatch pipeline:
// normalize, diff, group and filter.
package check

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/sprite-ai/hydrodiff/internal/diff"
	"github.com/sprite-ai/hydrodiff/internal/mismatch"
	"github.com/sprite-ai/hydrodiff/internal/model"
	"github.com/sprite-ai/hydrodiff/internal/normalize"
	"github.com/sprite-ai/hydrodiff/internal/server"
)

// ErrInternal wraps a panic recovered from the pipeline.
var ErrInternal = errors.New("internal pipeline failure")

// Options select the normalization policy and the relevance predicate.
type Options struct {
	Normalize normalize.Policy
	// Predicate restricts reported records; nil uses the default root
	// markers.
	Predicate mismatch.Predicate
}

// DefaultOptions returns the policy used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Normalize: normalize.DefaultPolicy(),
		Predicate: mismatch.DefaultPredicate(),
	}
}

// Compare runs the pipeline on two documents and returns the filtered
// report. It never fails.
func Compare(serverHTML, clientHTML string, opts Options) *model.MismatchReport {
	n := normalize.New(opts.Normalize)
	serverDoc := n.Normalize(serverHTML)
	clientDoc := n.Normalize(clientHTML)

	chunks := diff.Lines(serverDoc, clientDoc)
	records := mismatch.Group(chunks, diff.SplitLines(serverDoc))
	kept := mismatch.Filter(records, opts.Predicate)

	log.WithFields(log.Fields{
		"chunks":   len(chunks),
		"records":  len(records),
		"reported": len(kept),
	}).Debug("compared snapshots")

	return &model.MismatchReport{Mismatches: kept}
}

// Hydrator produces the live DOM serialization of a page after hydration.
type Hydrator interface {
	Hydrated(ctx context.Context, url string) (string, error)
}

// Target names the artifact to check.
type Target struct {
	Folder string
	Index  string
	Port   int // 0 picks an ephemeral port
}

// Snapshot holds both serializations of one page.
type Snapshot struct {
	URL        string
	ServerHTML string
	ClientHTML string
}

// Acquire serves the artifact folder, fetches the literal server response
// and asks h for the hydrated DOM. The server is shut down before Acquire
// returns, whatever the outcome.
func Acquire(ctx context.Context, t Target, h Hydrator) (snap *Snapshot, err error) {
	srv, err := server.New(t.Folder, t.Index)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(t.Port); err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("stopping artifact server: %w", closeErr)
		}
	}()

	log.WithField("folder", t.Folder).Info("serving artifact")
	log.WithField("url", srv.URL()).Info("loading page")

	page, err := srv.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	client, err := h.Hydrated(ctx, page.URL)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"server": humanize.Bytes(uint64(len(page.Body))),
		"client": humanize.Bytes(uint64(len(client))),
	}).Info("captured snapshots")

	return &Snapshot{URL: page.URL, ServerHTML: page.Body, ClientHTML: client}, nil
}

// Run acquires both snapshots of t and compares them. A panic inside the
// pipeline is recovered and returned as ErrInternal.
func Run(ctx context.Context, t Target, h Hydrator, opts Options) (rep *model.MismatchReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("stack", string(debug.Stack())).Error("pipeline panic")
			rep, err = nil, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	snap, err := Acquire(ctx, t, h)
	if err != nil {
		return nil, err
	}
	return Compare(snap.ServerHTML, snap.ClientHTML, opts), nil
}
