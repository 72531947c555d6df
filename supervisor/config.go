package supervisor

import (
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/aryanbdps9/gpumcts/games"
	"github.com/aryanbdps9/gpumcts/internal/device"
	"github.com/aryanbdps9/gpumcts/internal/kernel"
)

// Config configures one Supervisor instance. The CLI flag set cmd/mctsctl
// exposes maps directly onto these fields.
type Config struct {
	Game games.GameID

	Backend      device.Backend
	NodePoolSize int
	NumWorkers   int

	ExplorationConstant  float32
	VirtualLossMagnitude int32
	SimMode              kernel.SimMode
	HeuristicMargin      float32
	MaxRolloutPlies      int
	Seed                 int64

	// ReadbackTimeout bounds how long GetChildrenStats may block waiting on
	// its stats copy. ReadbackPollSleep is the per-child poll granularity
	// of that copy; a slow poll relative to the timeout is what makes the
	// bound actually triggerable rather than theoretical.
	ReadbackTimeout   time.Duration
	ReadbackPollSleep time.Duration

	// DrainTimeout bounds how long AdvanceRoot may wait for the re-root
	// protocol to finish before a pending dispatch is considered stuck.
	DrainTimeout time.Duration

	// MinBatchIterations is the smallest dispatch worth running; a
	// RunIterations call asking for fewer than this is rejected rather than
	// paying dispatch overhead for a handful of iterations.
	MinBatchIterations int64

	// PreferHighPerformance requests the highest-throughput adapter during
	// device selection. The CPU backend has only one device to offer, so
	// this is threaded through to internal/device.Limits for a future real
	// backend to act on rather than acted on here.
	PreferHighPerformance bool

	// GPUOnly rejects CreateContext outright rather than silently falling
	// back to the CPU backend when no GPU-class adapter is available.
	GPUOnly bool

	// DebugMode raises the supervisor's logger to debug level.
	DebugMode bool

	// RootNoiseAlpha/RootNoiseEpsilon configure the one-time Dirichlet
	// exploration noise blended into the root's child priors once it is
	// first expanded. RootNoiseEpsilon 0 disables it.
	RootNoiseAlpha   float64
	RootNoiseEpsilon float64
}

// DefaultConfig returns sane defaults for the given game, tuned for a
// goroutine-pool CPU backend rather than "modern GPU" parameters.
func DefaultConfig(g games.GameID) Config {
	return Config{
		Game:                 g,
		Backend:              device.BackendAuto,
		NodePoolSize:         1 << 20,
		NumWorkers:           8,
		ExplorationConstant:  1.4,
		VirtualLossMagnitude: 3,
		SimMode:              kernel.SimRandomRollout,
		HeuristicMargin:      0.5,
		MaxRolloutPlies:      400,
		Seed:                 1,
		ReadbackTimeout:       2 * time.Second,
		ReadbackPollSleep:     time.Millisecond,
		DrainTimeout:          2 * time.Second,
		MinBatchIterations:    1,
		PreferHighPerformance: true,
		RootNoiseAlpha:        0.3,
		RootNoiseEpsilon:      0.25,
	}
}

// Validate collects every configuration problem (rather than stopping at
// the first) into a single error, the way alphabeth's callers surface
// multiple dualnet/config validation failures via hashicorp/go-multierror.
// A non-nil return is always a *ConfigError, so callers can distinguish
// misconfiguration from a runtime failure.
func (c Config) Validate() error {
	var errs *multierror.Error
	if c.NodePoolSize < 2 {
		errs = multierror.Append(errs, errf("NodePoolSize must be at least 2 (root plus one child), got %d", c.NodePoolSize))
	}
	if c.NumWorkers < 1 {
		errs = multierror.Append(errs, errf("NumWorkers must be at least 1, got %d", c.NumWorkers))
	}
	if c.ExplorationConstant < 0 {
		errs = multierror.Append(errs, errf("ExplorationConstant must be non-negative, got %f", c.ExplorationConstant))
	}
	if c.VirtualLossMagnitude < 0 {
		errs = multierror.Append(errs, errf("VirtualLossMagnitude must be non-negative, got %d", c.VirtualLossMagnitude))
	}
	if c.MaxRolloutPlies < 1 {
		errs = multierror.Append(errs, errf("MaxRolloutPlies must be at least 1, got %d", c.MaxRolloutPlies))
	}
	if c.MinBatchIterations < 1 {
		errs = multierror.Append(errs, errf("MinBatchIterations must be at least 1, got %d", c.MinBatchIterations))
	}
	switch c.Backend {
	case device.BackendAuto, device.BackendVulkan, device.BackendDX12, device.BackendCPU:
	default:
		errs = multierror.Append(errs, errf("Backend %q is not a recognized backend", c.Backend))
	}
	if c.ReadbackTimeout <= 0 {
		errs = multierror.Append(errs, errf("ReadbackTimeout must be positive, got %s", c.ReadbackTimeout))
	}
	if c.ReadbackPollSleep < 0 {
		errs = multierror.Append(errs, errf("ReadbackPollSleep must be non-negative, got %s", c.ReadbackPollSleep))
	}
	if c.DrainTimeout <= 0 {
		errs = multierror.Append(errs, errf("DrainTimeout must be positive, got %s", c.DrainTimeout))
	}
	return NewConfigError(errs.ErrorOrNil())
}
