// Package supervisor is the thin CPU host that owns the node pool, urgent
// event ring, and telemetry, and drives internal/kernel and internal/reroot
// through the host API: CreateContext, InitTree, RunIterations,
// GetChildrenStats, AdvanceRoot, PollUrgentEvents, SetHalt.
// Grounded on alphabeth's cmd/train and cmd/infer main loops (load/search/
// apply/repeat), generalized from "one fixed chess game" into a
// games.GameID-dispatched loop, and from flag-driven one-shot CLI tools
// into a long-lived host object a CLI (or a future embedder) drives.
package supervisor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/aryanbdps9/gpumcts/games"
	"github.com/aryanbdps9/gpumcts/internal/device"
	"github.com/aryanbdps9/gpumcts/internal/events"
	"github.com/aryanbdps9/gpumcts/internal/kernel"
	"github.com/aryanbdps9/gpumcts/internal/nodepool"
	"github.com/aryanbdps9/gpumcts/internal/reroot"
	"github.com/aryanbdps9/gpumcts/internal/telemetry"
	"github.com/aryanbdps9/gpumcts/internal/worklist"
)

// Telemetry is a point-in-time snapshot RunIterations hands back to the
// caller, mirroring what a GPU backend's readback buffer would expose.
type Telemetry struct {
	IterationsRun       int64
	RootVisits          int32
	LiveNodes           int64
	AllocFailures       int64
	ExpansionAttempts   int64
	ExpansionSuccess    int64
	SelectionNoChildren int64
	Elapsed             time.Duration
}

// ChildStat is one child of the current root, as GetChildrenStats reports
// visit counts and win rates for the root's direct children.
type ChildStat struct {
	Move    games.MoveID
	Visits  int32
	Wins    int32
	Q       float32
	NodeIdx nodepool.NodeIndex
}

// Supervisor is a single search context: one device, one node pool, one
// game, driven by one caller goroutine. The host API is not itself
// required to be called concurrently; the kernel's own workers are the
// parallelism.
type Supervisor struct {
	cfg    Config
	game   games.Game
	dev    device.Device
	pool   *nodepool.Pool
	ring   *events.Ring
	items  []*worklist.Item
	params *kernel.Params

	metrics *telemetry.Metrics
	log     *logrus.Logger

	rootBoard []games.Cell
	contextID uuid.UUID

	halt             atomic.Bool
	ringLastSeen     uint32
	turn             uint32
	initialized      bool
	rootNoiseApplied bool
}

// CreateContext validates cfg, probes a device, and returns a Supervisor
// ready for InitTree. reg is the prometheus registerer metrics are
// registered against (pass prometheus.NewRegistry() in tests).
func CreateContext(cfg Config, reg prometheus.Registerer) (*Supervisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Backend requests anything other than the one backend this release
	// ships (or GPUOnly asks for a GPU-class adapter specifically) can
	// never be satisfied: surface it the same way a real adapter probe
	// failure would, rather than silently downgrading the request.
	if cfg.Backend != device.BackendAuto && cfg.Backend != device.BackendCPU {
		return nil, ErrAdapterUnavailable
	}
	if cfg.GPUOnly {
		return nil, ErrAdapterUnavailable
	}

	dev := device.NewCPUDevice(device.Limits{
		MaxWorkers:            cfg.NumWorkers,
		MaxNodes:              cfg.NodePoolSize,
		MaxBoardCells:         0,
		PreferHighPerformance: cfg.PreferHighPerformance,
	})
	if !dev.Available() {
		return nil, ErrAdapterUnavailable
	}

	log := telemetry.Logger()
	if cfg.DebugMode {
		log.SetLevel(logrus.DebugLevel)
	}

	s := &Supervisor{
		cfg:       cfg,
		game:      games.ByID(cfg.Game),
		dev:       dev,
		pool:      nodepool.NewPool(cfg.NodePoolSize),
		ring:      events.NewRing(),
		metrics:   telemetry.NewMetrics(reg),
		log:       log,
		contextID: uuid.New(),
	}
	s.params = &kernel.Params{
		Game:                 s.game,
		ExplorationConstant:  cfg.ExplorationConstant,
		VirtualLossMagnitude: cfg.VirtualLossMagnitude,
		SimMode:              cfg.SimMode,
		HeuristicMargin:      cfg.HeuristicMargin,
		MaxRolloutPlies:      cfg.MaxRolloutPlies,
		Seed:                 cfg.Seed,
	}
	s.items = worklist.NewItems(cfg.NumWorkers, s.game.BoardCells())
	return s, nil
}

// InitTree (re)starts the search from a fresh initial position. The board
// lives on the Supervisor rather than in the node pool: nodepool.Node
// deliberately carries no board of its own, only move/player bookkeeping,
// so the root's actual position has to be tracked
// alongside it by whoever walks the tree from the top.
func (s *Supervisor) InitTree() {
	board, firstPlayer := s.game.InitialBoard()
	s.pool = nodepool.NewPool(s.cfg.NodePoolSize)
	s.pool.ResetRootAsUnexpanded(firstPlayer, -1)
	s.rootBoard = board
	s.halt.Store(false)
	s.turn = 0
	s.ringLastSeen = 0
	s.initialized = true
	s.rootNoiseApplied = false
}

// ContextID returns the unique identifier assigned to this search context
// at CreateContext time, suitable for correlating logs/traces/metrics
// across a long-running session.
func (s *Supervisor) ContextID() uuid.UUID { return s.contextID }

// RunIterations dispatches up to n MCTS iterations against the current
// root and returns a telemetry snapshot.
func (s *Supervisor) RunIterations(ctx context.Context, n int64) (Telemetry, error) {
	if !s.initialized {
		return Telemetry{}, ErrNotInitialized
	}
	if !s.dev.Available() {
		return Telemetry{}, ErrDeviceLost
	}
	if n < s.cfg.MinBatchIterations {
		return Telemetry{}, ErrBatchTooSmall
	}

	_, span := telemetry.StartSpan(ctx, "supervisor.RunIterations")
	defer span.End()

	start := time.Now()
	remaining := &atomic.Int64{}
	remaining.Store(n)

	diag := kernel.Dispatch(s.pool, s.params, s.items, nodepool.NodeIndex(0), s.rootBoard, s.ring, remaining, &s.halt)
	elapsed := time.Since(start)
	s.applyRootExplorationNoise()

	s.metrics.DispatchDuration.Observe(elapsed.Seconds())
	s.metrics.RootVisits.Set(float64(s.pool.Root().Visits.Load()))
	s.metrics.LiveNodes.Set(float64(s.pool.LiveCount()))
	if diag.AllocFailures.Load() > 0 {
		s.metrics.AllocFailuresTotal.Add(float64(diag.AllocFailures.Load()))
	}

	return Telemetry{
		IterationsRun:       diag.IterationsRun.Load(),
		RootVisits:          s.pool.Root().Visits.Load(),
		LiveNodes:           s.pool.LiveCount(),
		AllocFailures:        diag.AllocFailures.Load(),
		ExpansionAttempts:    diag.ExpansionAttempts.Load(),
		ExpansionSuccess:     diag.ExpansionSuccess.Load(),
		SelectionNoChildren:  diag.SelectionNoChildren.Load(),
		Elapsed:              elapsed,
	}, nil
}

// GetChildrenStats reports visit/win/Q for every live child of the current
// root. The copy is bounded by cfg.ReadbackTimeout, polling every
// cfg.ReadbackPollSleep the way a real device's buffer-map-async readback
// would be bounded by a host-side wait; on timeout it returns
// ErrReadbackTimeout rather than blocking indefinitely.
func (s *Supervisor) GetChildrenStats() ([]ChildStat, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	done := make(chan []ChildStat, 1)
	go func() {
		root := s.pool.Root()
		stats := make([]ChildStat, 0, root.NumChildren)
		for i := uint8(0); i < root.NumChildren; i++ {
			if s.cfg.ReadbackPollSleep > 0 {
				time.Sleep(s.cfg.ReadbackPollSleep)
			}
			idx := root.Children[i]
			if idx == nodepool.NoNode {
				continue
			}
			child := s.pool.Node(idx)
			stats = append(stats, ChildStat{
				Move:    games.MoveID(child.MoveInto),
				Visits:  child.Visits.Load(),
				Wins:    child.Wins.Load(),
				Q:       child.Q(),
				NodeIdx: idx,
			})
		}
		done <- stats
	}()

	select {
	case stats := <-done:
		return stats, nil
	case <-time.After(s.cfg.ReadbackTimeout):
		s.metrics.ReadbackTimeoutTotal.Inc()
		return nil, ErrReadbackTimeout
	}
}

// AdvanceRoot re-roots the tree at the child that played move, reclaiming
// the rest of the tree. Returns ErrRerootInvariant if move does not match
// any live child of the current root.
func (s *Supervisor) AdvanceRoot(move games.MoveID) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	root := s.pool.Root()
	chosen := nodepool.NoNode
	for i := uint8(0); i < root.NumChildren; i++ {
		idx := root.Children[i]
		if idx != nodepool.NoNode && s.pool.Node(idx).MoveInto == nodepool.MoveID(move) {
			chosen = idx
			break
		}
	}
	if chosen == nodepool.NoNode {
		return ErrRerootInvariant
	}

	s.game.ApplyMove(s.rootBoard, root.PlayerToMove, move)
	s.turn++

	done := make(chan struct{})
	go func() {
		reroot.AdvanceRoot(s.pool, chosen, s.ring, s.turn)
		close(done)
	}()

	select {
	case <-done:
		s.metrics.RerootTotal.Inc()
		return nil
	case <-time.After(s.cfg.DrainTimeout):
		return ErrDrainTimeout
	}
}

// PollUrgentEvents drains every ring record since the last poll. Callers
// should treat EventMemoryPressure/EventEarlyExit as soft signals and
// EventHalt as a request to call SetHalt(true) promptly.
func (s *Supervisor) PollUrgentEvents() []events.Record {
	recs, last, overflow := s.ring.Drain(s.ringLastSeen)
	s.ringLastSeen = last
	if overflow > 0 {
		s.log.WithField("overflowed", overflow).Warn("urgent event ring overflowed before host drained it")
	}
	for _, r := range recs {
		if r.EventType == events.EventMemoryPressure {
			s.metrics.MemoryPressureTotal.Inc()
		}
	}
	return recs
}

// SetHalt requests every in-flight worker goroutine stop after its current
// iteration; workers must check this promptly, not just between dispatch
// batches.
func (s *Supervisor) SetHalt(halt bool) { s.halt.Store(halt) }

// Logger exposes the supervisor's structured logger for callers (e.g.
// cmd/mctsctl) that want to log alongside it with consistent fields.
func (s *Supervisor) Logger() *logrus.Logger { return s.log }

// Pool exposes the underlying node pool for diagnostics consumers (e.g.
// internal/diag's tree dump) without handing out write access to anything
// else.
func (s *Supervisor) Pool() *nodepool.Pool { return s.pool }

// Device reports which compute backend this context is bound to.
func (s *Supervisor) Device() device.Device { return s.dev }
