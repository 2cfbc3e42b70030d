package sandbox

import "context"

// Lifecycle provisions, inspects, and destroys sandboxes. Pause/Resume
// are optional — implementations that do not support them simply do not
// satisfy Pauser, and callers must type-assert before calling.
type Lifecycle interface {
	Create(ctx context.Context, opts CreateOptions) (*SandboxInfo, error)
	Destroy(ctx context.Context, id string) error
	Status(ctx context.Context, id string) (Status, error)
	List(ctx context.Context) ([]*SandboxInfo, error)
	Get(ctx context.Context, id string) (*SandboxInfo, error)
}

// Pauser is an optional Lifecycle extension for providers with native
// pause/resume support (e.g. Daytona).
type Pauser interface {
	Pause(ctx context.Context, id string) error
	Resume(ctx context.Context, id string) error
}

// Process runs commands to completion or streams their output.
type Process interface {
	Run(ctx context.Context, id string, cmd RunCommand) (*RunResult, error)

	// Stream runs cmd and returns a channel of ProcessChunks in arrival
	// order. The channel is closed when the process exits or ctx is
	// canceled; cancellation aborts the remote process best-effort.
	Stream(ctx context.Context, id string, cmd RunCommand) (<-chan ProcessChunk, error)
}

// ProcessStarter is an optional Process extension for providers that can
// start a detached background process and expose its ports.
type ProcessStarter interface {
	StartProcess(ctx context.Context, id string, opts StartProcessOptions) (*ProcessInfo, error)
	StopProcess(ctx context.Context, id, procID string) error
	GetProcessURLs(ctx context.Context, id string, ports []int) (map[int]string, error)
}

// Fs manipulates a sandbox's filesystem.
type Fs interface {
	ReadFile(ctx context.Context, id, path string) ([]byte, error)
	WriteFile(ctx context.Context, id, path string, content []byte, mode int64) error
	ListDir(ctx context.Context, id, path string, recursive bool) ([]*FsEntry, error)
	Mkdir(ctx context.Context, id, path string) error
	Rm(ctx context.Context, id, path string, recursive, force bool) error
}

// Snapshots freezes and lists a sandbox's filesystem state. Restore is
// optional: restoring creates a new sandbox and never mutates an
// existing one.
type Snapshots interface {
	Create(ctx context.Context, id string, metadata map[string]string) (*SnapshotInfo, error)
	List(ctx context.Context, id string) ([]*SnapshotInfo, error)
}

// Restorer is an optional Snapshots extension.
type Restorer interface {
	Restore(ctx context.Context, id, snapshotID string) (*SandboxInfo, error)
}

// Volumes manages named persistent storage, independent of any single
// sandbox's lifetime.
type Volumes interface {
	Create(ctx context.Context, name string) (*VolumeInfo, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]*VolumeInfo, error)
	Get(ctx context.Context, name string) (*VolumeInfo, error)
}

// Code executes a self-contained snippet in one of the normalized
// languages.
type Code interface {
	RunCode(ctx context.Context, id string, in RunCodeInput) (*RunResult, error)
}
