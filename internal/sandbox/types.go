// Package sandbox defines the capability-based driver abstraction every
// provider adapter implements: the data model shared across providers
// and the six orthogonal capability interfaces (Lifecycle, Process, Fs,
// Snapshots, Volumes, Code) plus the composite Driver facade.
package sandbox

import (
	"encoding/json"
	"time"
)

// Status is the uniform four-valued sandbox lifecycle status. Providers
// with richer native enums map down to this set (see each adapter's
// status.go).
type Status string

const (
	StatusCreating Status = "creating"
	StatusReady    Status = "ready"
	StatusStopped  Status = "stopped"
	StatusFailed   Status = "failed"
)

// SandboxInfo is the uniform sandbox record returned by Lifecycle
// operations. Once CreatedAt is set it never changes; ID is immutable.
type SandboxInfo struct {
	ID        string
	Name      string
	Provider  string
	Status    Status
	CreatedAt time.Time
	Metadata  map[string]string
}

// NetworkPolicy controls outbound internet access from a sandbox.
type NetworkPolicy struct {
	EnableInternet bool
	AllowDomains   []string
}

// SourceKind discriminates CreateOptions.Source's tagged variants.
type SourceKind string

const (
	SourceKindGit      SourceKind = "git"
	SourceKindTarball  SourceKind = "tarball"
	SourceKindSnapshot SourceKind = "snapshot"
)

// Source is a tagged union over the three ways a sandbox's initial
// filesystem can be seeded. Exactly one branch is meaningful for a given
// Kind; the others are zero-valued.
type Source struct {
	Kind SourceKind

	// SourceKindGit
	GitURL         string
	GitRevision    string
	GitDepth       int
	GitCredentials string

	// SourceKindTarball
	TarballURL string

	// SourceKindSnapshot
	SnapshotID string
}

// CreateOptions configures a new sandbox. Fields not meaningful to a
// given provider are ignored by that provider's adapter rather than
// erroring, except where the spec calls out a hard requirement.
type CreateOptions struct {
	Image            string
	Name             string
	Env              map[string]string
	Workdir          string
	CPU              float64
	MemoryMiB        int64
	GPU              string
	TimeoutMs        int64
	IdleTimeoutMs    int64
	Volumes          map[string]string // mount path -> volume name
	EncryptedPorts   []int
	UnencryptedPorts []int
	Command          []string
	Source           *Source
	NetworkPolicy    NetworkPolicy
	Labels           map[string]string
}

// RunCommand describes a single foreground command execution.
type RunCommand struct {
	Cmd       string
	Args      []string
	Cwd       string
	Env       map[string]string
	TimeoutMs int64
}

// RunResult is the outcome of a completed command execution.
type RunResult struct {
	ExitCode int    `json:"exitCode"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Channel identifies which stream a ProcessChunk came from.
type Channel string

const (
	ChannelStdout Channel = "stdout"
	ChannelStderr Channel = "stderr"
)

// ProcessChunk is a single piece of streamed process output, emitted in
// arrival order with no partial-UTF-8 normalization.
type ProcessChunk struct {
	Channel Channel
	Data    []byte
}

// ProcessStatus is the status of a background process started via
// StartProcess.
type ProcessStatus string

const (
	ProcessRunning ProcessStatus = "running"
	ProcessExited  ProcessStatus = "exited"
)

// ProcessInfo identifies a background process started via StartProcess.
type ProcessInfo struct {
	ID     string
	Status ProcessStatus
}

// StartProcessOptions configures a background process.
type StartProcessOptions struct {
	Cmd        string
	Args       []string
	Cwd        string
	Env        map[string]string
	Background bool
}

// EntryType distinguishes files from directories in FsEntry.
type EntryType string

const (
	EntryFile EntryType = "file"
	EntryDir  EntryType = "dir"
)

// FsEntry describes one path returned by ListDir.
type FsEntry struct {
	Path       string    `json:"path"`
	Type       EntryType `json:"type"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// SnapshotInfo is an immutable frozen filesystem image of a sandbox.
type SnapshotInfo struct {
	ID        string
	CreatedAt time.Time
	Metadata  map[string]string
}

// VolumeInfo is a named persistent filesystem region mountable into one
// or more sandboxes, outliving any of them.
type VolumeInfo struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Language is the normalized lowercase token accepted by RunCode.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangBash       Language = "bash"
)

// NormalizeLanguage maps the aliases from spec.md (py/js/ts/sh) onto the
// canonical Language tokens. Returns ok=false for anything else.
func NormalizeLanguage(s string) (Language, bool) {
	switch s {
	case "python", "py":
		return LangPython, true
	case "javascript", "js":
		return LangJavaScript, true
	case "typescript", "ts":
		return LangTypeScript, true
	case "bash", "sh":
		return LangBash, true
	default:
		return "", false
	}
}

// RunCodeInput is the payload for Code.RunCode.
type RunCodeInput struct {
	Language  Language
	Code      string
	TimeoutMs int64
}

// EventType is the closed set of AgentEvent types flowing through the
// per-run Event Bus.
type EventType string

const (
	EventStatus          EventType = "status"
	EventCloneProgress   EventType = "clone_progress"
	EventInstallProgress EventType = "install_progress"
	EventThought         EventType = "thought"
	EventToolCall        EventType = "tool_call"
	EventToolResult      EventType = "tool_result"
	EventOutput          EventType = "output"
	EventError           EventType = "error"
	EventComplete        EventType = "complete"
	EventOpencodeReady   EventType = "opencode_ready"
	EventRalphIteration  EventType = "ralph_iteration"
	EventRalphComplete   EventType = "ralph_complete"
	EventPing            EventType = "ping"
)

// AgentEvent is one entry in a run's Event Bus.
type AgentEvent struct {
	ID          string          `json:"id"`
	Seq         uint64          `json:"seq"`
	Type        EventType       `json:"type"`
	TimestampMs int64           `json:"timestamp_ms"`
	Provider    string          `json:"provider,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// RunStatus is the aggregate status of a multi-provider run.
type RunStatus string

const (
	RunIdle       RunStatus = "idle"
	RunCloning    RunStatus = "cloning"
	RunInstalling RunStatus = "installing"
	RunRunning    RunStatus = "running"
	RunPaused     RunStatus = "paused"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// LaneState is the per-provider slice of a RunState.
type LaneState struct {
	Provider    string
	SandboxID   string
	Status      RunStatus
	Events      []AgentEvent
	OpencodeURL string
	SessionID   string
}

// RunState is a serializable snapshot of a multi-provider run, as
// returned by the orchestrator's status/list endpoints.
type RunState struct {
	ID          string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt time.Time
	PerProvider map[string]LaneState
}
