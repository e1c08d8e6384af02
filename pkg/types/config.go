package types

import "time"

// HTTPConfig holds shared HTTP settings for backend requests.
type HTTPConfig struct {
	// Timeout is the per-request deadline for non-streaming calls.
	// Per prd001-backend-client R1.3.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with backend requests
	// (e.g. "paperdash/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ExecutionContext identifies where the process runs relative to the
// backend's network. Per prd001-backend-client R1.2.
type ExecutionContext string

const (
	// ContextInternal marks a process inside the backend's private network
	// (a compose service or cluster pod); it reaches the backend by an
	// internal service address.
	ContextInternal ExecutionContext = "internal"

	// ContextPublic marks a process outside that network; it reaches the
	// backend by its publicly routable address.
	ContextPublic ExecutionContext = "public"
)

// BackendConfig holds settings for reaching the paper-analysis backend.
// Per prd001-backend-client R1.1: the base address is explicit
// configuration passed in at client construction, one per execution
// context, never ambient environment state read inside the client.
type BackendConfig struct {
	HTTPConfig `yaml:",inline"`

	// InternalURL is the base address routable only inside the backend's
	// private network (e.g. "http://backend:8000").
	InternalURL string `json:"internal_url" yaml:"internal_url"`

	// PublicURL is the publicly routable base address.
	PublicURL string `json:"public_url" yaml:"public_url"`

	// Context selects which address the client resolves.
	Context ExecutionContext `json:"context" yaml:"context"`

	// Token is an optional bearer token sent as Authorization on every
	// request. Empty disables the header.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// SnapshotConfig holds settings for the local claims snapshot.
// Per prd005-claim-snapshot R1.1, R1.3.
type SnapshotConfig struct {
	// Dir is the directory holding claims.db and export files.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
