// Package extract drives the streaming claim-extraction job: a
// long-lived backend stream of progress events consumed into an ordered
// log, ending in an explicit terminal success or failure.
// Implements: prd003-extraction-stream (R1-R4);
//
//	docs/ARCHITECTURE § Extraction Stream.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/pdiddy/paperdash/pkg/types"
)

// State is the lifecycle position of an extraction run (R2.1).
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// ErrRunInProgress rejects a start while a run is already in flight
// (R2.4). The in-flight run is untouched by the rejected call.
var ErrRunInProgress = errors.New("extraction already running")

// StreamError wraps any failure of a streaming run: transport drops,
// backend error frames, malformed payloads (R4).
type StreamError struct {
	// Reason is the human-readable failure message stored in run state.
	Reason string
	// Err is the underlying cause when one exists.
	Err error
}

func (e *StreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *StreamError) Unwrap() error { return e.Err }

// StreamClient is the slice of the backend client the runner uses.
// *api.Client satisfies it.
type StreamClient interface {
	Stream(ctx context.Context, path string) (io.ReadCloser, error)
}

// Runner drives claim-extraction runs for papers, one at a time. The
// zero state is idle with an empty log; observation methods are safe to
// call from other goroutines while a run is in flight (R3).
type Runner struct {
	client  StreamClient
	onEntry func(types.LogEntry)

	mu         sync.Mutex
	state      State
	entries    []types.LogEntry
	errMsg     string
	logVisible bool
}

// NewRunner wires a runner to a backend client. onEntry, when non-nil,
// fires once per received entry in arrival order, from the goroutine
// that called Run.
func NewRunner(client StreamClient, onEntry func(types.LogEntry)) *Runner {
	return &Runner{client: client, onEntry: onEntry, state: StateIdle}
}

// Run drives one paper's extraction to a terminal state and returns nil
// on success or the StreamError the run failed with. Starting clears the
// previous error and log before any new event can arrive (R2.2) and
// latches the log-visible flag (R2.1). A second Run while one is in
// flight returns ErrRunInProgress (R2.4).
func (r *Runner) Run(ctx context.Context, paperID string) error {
	if err := r.begin(); err != nil {
		return err
	}

	body, err := r.client.Stream(ctx, "/papers/"+paperID+"/extract-claims")
	if err != nil {
		serr := &StreamError{Reason: "starting extraction", Err: err}
		r.fail(serr.Error())
		return serr
	}
	defer body.Close()

	signals := make(chan streamSignal)
	go produce(body, signals)

	var termErr *StreamError
	for sig := range signals {
		if sig.terminal {
			termErr = sig.err
			break
		}
		r.appendEntry(sig.entry)
		log.WithFields(log.Fields{"paper": paperID, "type": sig.entry.Type}).Debug(sig.entry.Message)
		if r.onEntry != nil {
			r.onEntry(sig.entry)
		}
	}

	if termErr != nil {
		r.fail(termErr.Error())
		return termErr
	}
	r.succeed()
	return nil
}

// State reports the current lifecycle position.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Entries returns a copy of the accumulated log, in arrival order.
// Entries survive a failure; only the next start clears them (R2.5).
func (r *Runner) Entries() []types.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ErrMessage reports the failure reason of the last run, empty unless
// the state is failed.
func (r *Runner) ErrMessage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errMsg
}

// LogVisible reports the latched log-panel flag: false until the first
// run starts, true from then on (R2.1).
func (r *Runner) LogVisible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logVisible
}

func (r *Runner) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateRunning {
		return ErrRunInProgress
	}
	r.state = StateRunning
	r.entries = nil
	r.errMsg = ""
	r.logVisible = true
	return nil
}

func (r *Runner) appendEntry(e types.LogEntry) {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
}

func (r *Runner) succeed() {
	r.mu.Lock()
	r.state = StateSucceeded
	r.mu.Unlock()
}

func (r *Runner) fail(msg string) {
	r.mu.Lock()
	r.state = StateFailed
	r.errMsg = msg
	r.mu.Unlock()
}
