package sandbox

import (
	"time"

	"github.com/boxed-run/sdk/internal/boxederr"
)

// Default resource limits applied by Validate, mirroring the teacher's
// SandboxConfig.Validate defaulting/bounds-checking.
const (
	DefaultMemoryMiB     = 512
	DefaultCPUCores      = 1.0
	DefaultWorkdir       = "/workspace"
	DefaultTimeout       = 5 * time.Minute
	MaxMemoryMiB         = 8192
	MaxCPUCores          = 4.0
	MaxTimeout           = 30 * time.Minute
)

// Validate checks opts for well-formedness and fills in defaults for
// zero-valued fields. provider is used only for error context.
func (o *CreateOptions) Validate(provider string) error {
	ctx := boxederr.OpContext{Provider: provider, Capability: "lifecycle", Operation: "Create"}

	// Image is intentionally allowed to be empty here: each adapter's
	// resolveImage fills in a provider-specific default after Validate
	// runs (spec.md §4.4.2), so callers can ask for "the provider's
	// default runtime" by simply leaving it unset.

	if o.MemoryMiB <= 0 {
		o.MemoryMiB = DefaultMemoryMiB
	}
	if o.CPU <= 0 {
		o.CPU = DefaultCPUCores
	}
	if o.TimeoutMs <= 0 {
		o.TimeoutMs = DefaultTimeout.Milliseconds()
	}
	if o.Workdir == "" {
		o.Workdir = DefaultWorkdir
	}

	if o.MemoryMiB > MaxMemoryMiB {
		return boxederr.New(boxederr.KindValidation, ctx, "memory cannot exceed %dMiB", MaxMemoryMiB)
	}
	if o.CPU > MaxCPUCores {
		return boxederr.New(boxederr.KindValidation, ctx, "cpu cannot exceed %.1f cores", MaxCPUCores)
	}
	if time.Duration(o.TimeoutMs)*time.Millisecond > MaxTimeout {
		return boxederr.New(boxederr.KindValidation, ctx, "timeout cannot exceed %s", MaxTimeout)
	}

	return nil
}
