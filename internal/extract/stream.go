// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/pdiddy/paperdash/pkg/types"
)

// maxEventLine bounds a single stream line. Backend log messages are
// short; the ceiling guards against a runaway frame.
const maxEventLine = 1 << 20

// streamSignal is one message from the stream producer to the consumer:
// a progress entry, or the terminal sentinel that ends the run.
type streamSignal struct {
	entry    types.LogEntry
	terminal bool
	err      *StreamError // nil on clean termination
}

// produce parses text/event-stream frames from body and feeds them to
// out in arrival order: data lines accumulate until a blank line
// dispatches the frame; comment, id, and retry fields are ignored
// (R1.5). It always emits exactly one terminal signal, then closes out:
// a clean close or a done frame for success; an error frame, malformed
// payload, or read failure otherwise. It is the stream's only producer,
// and the consumer in Run is the log's only writer (R2.6).
func produce(body io.Reader, out chan<- streamSignal) {
	defer close(out)

	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventLine)

	var name string
	var data []string

	for sc.Scan() {
		line := sc.Text()

		// A blank line dispatches the pending frame.
		if line == "" {
			if name == "" && len(data) == 0 {
				continue
			}
			sig, terminal := dispatch(name, strings.Join(data, "\n"))
			name, data = "", nil
			if sig != nil {
				out <- *sig
			}
			if terminal {
				return
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, ":"):
			// Comment heartbeat.
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		default:
			// id:, retry:, and unknown fields carry nothing we consume.
		}
	}

	if err := sc.Err(); err != nil {
		out <- streamSignal{terminal: true, err: &StreamError{Reason: "reading stream", Err: err}}
		return
	}
	// Clean EOF: the backend finished and closed the stream (R1.4). An
	// unterminated trailing frame is discarded.
	out <- streamSignal{terminal: true}
}

// dispatch interprets one complete frame. Frames without an event name
// (or named "log") are progress entries; "error" and "done" are
// terminal (R1.2-R1.4). Unknown event names are skipped so the backend
// can add frame kinds without breaking older clients.
func dispatch(name, data string) (*streamSignal, bool) {
	switch name {
	case "", "log":
		var entry types.LogEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			return &streamSignal{terminal: true, err: &StreamError{Reason: "malformed stream event", Err: err}}, true
		}
		return &streamSignal{entry: entry}, false
	case "error":
		return &streamSignal{terminal: true, err: &StreamError{Reason: errorReason(data)}}, true
	case "done":
		return &streamSignal{terminal: true}, true
	default:
		return nil, false
	}
}

// errorReason extracts the failure message from an error frame: the
// message of a JSON log entry when the data parses as one, the raw text
// otherwise. Error frames are not appended to the log (R1.3).
func errorReason(data string) string {
	var entry types.LogEntry
	if err := json.Unmarshal([]byte(data), &entry); err == nil && entry.Message != "" {
		return entry.Message
	}
	if data == "" {
		return "backend reported failure"
	}
	return data
}
