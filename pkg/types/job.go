// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Well-known LogEntry type tags. The stream may carry others; renderers
// fall back to plain output for tags they do not recognize.
const (
	LogInfo    = "info"
	LogWarn    = "warn"
	LogError   = "error"
	LogSuccess = "success"
)

// LogEntry is one unit of streamed progress from a claim-extraction run.
// Per prd003-extraction-stream R2.3: entries accumulate strictly in
// arrival order for the duration of one run.
type LogEntry struct {
	// Type is a severity or category tag (see the Log* constants).
	Type string `json:"type" yaml:"type"`

	// Message is the human-readable progress text.
	Message string `json:"message" yaml:"message"`
}

// ModuleResult is the terminal output of a deferred module job.
// Per prd004-modules R1.1.
type ModuleResult struct {
	// SignedURL locates the generated artifact (e.g. the storybook PDF).
	SignedURL string `json:"signed_url" yaml:"signed_url"`
}
