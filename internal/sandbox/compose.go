package sandbox

import (
	"context"

	"github.com/boxed-run/sdk/internal/boxederr"
)

// Driver is the composite facade over the six capability services. It
// holds no sandbox state of its own — sandbox identity lives with the
// provider.
type Driver struct {
	name string

	Lifecycle Lifecycle
	Process   Process
	Fs        Fs
	Snapshots Snapshots
	Volumes   Volumes
	Code      Code
}

// Compose assembles six capability services sharing one provider's
// state into a single Driver facade.
func Compose(name string, lc Lifecycle, pr Process, fs Fs, sn Snapshots, vo Volumes, co Code) *Driver {
	return &Driver{name: name, Lifecycle: lc, Process: pr, Fs: fs, Snapshots: sn, Volumes: vo, Code: co}
}

// Name returns the provider identifier this Driver was composed for.
func (d *Driver) Name() string { return d.name }

// Pauser returns this Driver's Lifecycle as a Pauser if the underlying
// implementation supports pause/resume.
func (d *Driver) Pauser() (Pauser, bool) {
	p, ok := d.Lifecycle.(Pauser)
	return p, ok
}

// ProcessStarter returns this Driver's Process as a ProcessStarter if
// supported.
func (d *Driver) ProcessStarter() (ProcessStarter, bool) {
	p, ok := d.Process.(ProcessStarter)
	return p, ok
}

// Restorer returns this Driver's Snapshots as a Restorer if supported.
func (d *Driver) Restorer() (Restorer, bool) {
	r, ok := d.Snapshots.(Restorer)
	return r, ok
}

// Pause calls the optional Pauser capability, or returns a classified
// unsupported error.
func (d *Driver) Pause(ctx context.Context, id string) error {
	p, ok := d.Pauser()
	if !ok {
		return boxederr.Unsupported(boxederr.OpContext{Provider: d.name, SandboxID: id}, "pause")
	}
	return p.Pause(ctx, id)
}

// Resume calls the optional Pauser capability, or returns a classified
// unsupported error.
func (d *Driver) Resume(ctx context.Context, id string) error {
	p, ok := d.Pauser()
	if !ok {
		return boxederr.Unsupported(boxederr.OpContext{Provider: d.name, SandboxID: id}, "resume")
	}
	return p.Resume(ctx, id)
}

// unsupportedSnapshots and unsupportedVolumes let an adapter declare a
// capability entirely absent (spec.md §4.4 closing paragraph: "Adapters
// that don't support persistent volumes leave the capability absent")
// while still satisfying Driver's non-nil Snapshots/Volumes fields, so
// callers get a classified boxederr.Unsupported instead of a nil-pointer
// panic when they reach for a capability the provider never had.
type unsupportedSnapshots struct{ provider string }

func (u unsupportedSnapshots) Create(ctx context.Context, id string, metadata map[string]string) (*SnapshotInfo, error) {
	return nil, boxederr.Unsupported(boxederr.OpContext{Provider: u.provider, Capability: "snapshots", SandboxID: id}, "snapshots")
}
func (u unsupportedSnapshots) List(ctx context.Context, id string) ([]*SnapshotInfo, error) {
	return nil, boxederr.Unsupported(boxederr.OpContext{Provider: u.provider, Capability: "snapshots", SandboxID: id}, "snapshots")
}

// UnsupportedSnapshots returns a Snapshots implementation whose every
// method fails with boxederr.Unsupported, for adapters with no
// snapshot capability.
func UnsupportedSnapshots(provider string) Snapshots { return unsupportedSnapshots{provider} }

type unsupportedVolumes struct{ provider string }

func (u unsupportedVolumes) Create(ctx context.Context, name string) (*VolumeInfo, error) {
	return nil, boxederr.Unsupported(boxederr.OpContext{Provider: u.provider, Capability: "volumes"}, "volumes")
}
func (u unsupportedVolumes) Delete(ctx context.Context, name string) error {
	return boxederr.Unsupported(boxederr.OpContext{Provider: u.provider, Capability: "volumes"}, "volumes")
}
func (u unsupportedVolumes) List(ctx context.Context) ([]*VolumeInfo, error) {
	return nil, boxederr.Unsupported(boxederr.OpContext{Provider: u.provider, Capability: "volumes"}, "volumes")
}
func (u unsupportedVolumes) Get(ctx context.Context, name string) (*VolumeInfo, error) {
	return nil, boxederr.Unsupported(boxederr.OpContext{Provider: u.provider, Capability: "volumes"}, "volumes")
}

// UnsupportedVolumes returns a Volumes implementation whose every method
// fails with boxederr.Unsupported, for adapters with no volume
// capability.
func UnsupportedVolumes(provider string) Volumes { return unsupportedVolumes{provider} }

// LegacyDriver is the shape of the teacher's original monolithic
// interface, kept so FromMonolith has a real legacy shape to adapt (see
// internal/legacy/dockerdriver).
type LegacyDriver interface {
	Create(ctx context.Context, opts CreateOptions) (*SandboxInfo, error)
	Destroy(ctx context.Context, id string) error
	Status(ctx context.Context, id string) (Status, error)
	List(ctx context.Context) ([]*SandboxInfo, error)
	Get(ctx context.Context, id string) (*SandboxInfo, error)
	Run(ctx context.Context, id string, cmd RunCommand) (*RunResult, error)
	Stream(ctx context.Context, id string, cmd RunCommand) (<-chan ProcessChunk, error)
	ReadFile(ctx context.Context, id, path string) ([]byte, error)
	WriteFile(ctx context.Context, id, path string, content []byte, mode int64) error
	ListDir(ctx context.Context, id, path string, recursive bool) ([]*FsEntry, error)
	Mkdir(ctx context.Context, id, path string) error
	Rm(ctx context.Context, id, path string, recursive, force bool) error
	CreateSnapshot(ctx context.Context, id string, metadata map[string]string) (*SnapshotInfo, error)
	ListSnapshots(ctx context.Context, id string) ([]*SnapshotInfo, error)
	CreateVolume(ctx context.Context, name string) (*VolumeInfo, error)
	DeleteVolume(ctx context.Context, name string) error
	ListVolumes(ctx context.Context) ([]*VolumeInfo, error)
	GetVolume(ctx context.Context, name string) (*VolumeInfo, error)
	RunCode(ctx context.Context, id string, in RunCodeInput) (*RunResult, error)
	Name() string
}

// monolithLifecycle, monolithProcess, ... adapt one LegacyDriver method
// set into the six narrow capability interfaces, so FromMonolith can
// present a legacy driver as a capability-split Driver without the
// legacy implementation knowing anything changed.
type monolithLifecycle struct{ d LegacyDriver }

func (m monolithLifecycle) Create(ctx context.Context, opts CreateOptions) (*SandboxInfo, error) {
	return m.d.Create(ctx, opts)
}
func (m monolithLifecycle) Destroy(ctx context.Context, id string) error { return m.d.Destroy(ctx, id) }
func (m monolithLifecycle) Status(ctx context.Context, id string) (Status, error) {
	return m.d.Status(ctx, id)
}
func (m monolithLifecycle) List(ctx context.Context) ([]*SandboxInfo, error) { return m.d.List(ctx) }
func (m monolithLifecycle) Get(ctx context.Context, id string) (*SandboxInfo, error) {
	return m.d.Get(ctx, id)
}

type monolithProcess struct{ d LegacyDriver }

func (m monolithProcess) Run(ctx context.Context, id string, cmd RunCommand) (*RunResult, error) {
	return m.d.Run(ctx, id, cmd)
}
func (m monolithProcess) Stream(ctx context.Context, id string, cmd RunCommand) (<-chan ProcessChunk, error) {
	return m.d.Stream(ctx, id, cmd)
}

type monolithFs struct{ d LegacyDriver }

func (m monolithFs) ReadFile(ctx context.Context, id, path string) ([]byte, error) {
	return m.d.ReadFile(ctx, id, path)
}
func (m monolithFs) WriteFile(ctx context.Context, id, path string, content []byte, mode int64) error {
	return m.d.WriteFile(ctx, id, path, content, mode)
}
func (m monolithFs) ListDir(ctx context.Context, id, path string, recursive bool) ([]*FsEntry, error) {
	return m.d.ListDir(ctx, id, path, recursive)
}
func (m monolithFs) Mkdir(ctx context.Context, id, path string) error { return m.d.Mkdir(ctx, id, path) }
func (m monolithFs) Rm(ctx context.Context, id, path string, recursive, force bool) error {
	return m.d.Rm(ctx, id, path, recursive, force)
}

type monolithSnapshots struct{ d LegacyDriver }

func (m monolithSnapshots) Create(ctx context.Context, id string, metadata map[string]string) (*SnapshotInfo, error) {
	return m.d.CreateSnapshot(ctx, id, metadata)
}
func (m monolithSnapshots) List(ctx context.Context, id string) ([]*SnapshotInfo, error) {
	return m.d.ListSnapshots(ctx, id)
}

type monolithVolumes struct{ d LegacyDriver }

func (m monolithVolumes) Create(ctx context.Context, name string) (*VolumeInfo, error) {
	return m.d.CreateVolume(ctx, name)
}
func (m monolithVolumes) Delete(ctx context.Context, name string) error { return m.d.DeleteVolume(ctx, name) }
func (m monolithVolumes) List(ctx context.Context) ([]*VolumeInfo, error) { return m.d.ListVolumes(ctx) }
func (m monolithVolumes) Get(ctx context.Context, name string) (*VolumeInfo, error) {
	return m.d.GetVolume(ctx, name)
}

type monolithCode struct{ d LegacyDriver }

func (m monolithCode) RunCode(ctx context.Context, id string, in RunCodeInput) (*RunResult, error) {
	return m.d.RunCode(ctx, id, in)
}

// FromMonolith produces a capability-services Driver backed by a
// monolithic LegacyDriver, for gradual migration and for symmetric
// testing against the capability-split implementation (spec.md §4.5,
// §9 Open Question 1).
func FromMonolith(d LegacyDriver) *Driver {
	return Compose(d.Name(),
		monolithLifecycle{d},
		monolithProcess{d},
		monolithFs{d},
		monolithSnapshots{d},
		monolithVolumes{d},
		monolithCode{d},
	)
}
