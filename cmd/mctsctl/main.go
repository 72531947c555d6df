// Command mctsctl is the thin CLI front-end for the search engine,
// standing in for alphabeth's cmd/train and cmd/infer one-shot tools. It
// runs a fixed number of iteration batches against a chosen game's initial
// position and prints the resulting root child statistics, the way a real
// deployment would loop RunIterations/GetChildrenStats/AdvanceRoot to play
// a full game.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aryanbdps9/gpumcts/games"
	"github.com/aryanbdps9/gpumcts/internal/device"
	"github.com/aryanbdps9/gpumcts/internal/diag"
	"github.com/aryanbdps9/gpumcts/internal/kernel"
	"github.com/aryanbdps9/gpumcts/supervisor"
)

var (
	flagGame                  string
	flagWorkers               int
	flagNodePoolSize          int
	flagBatchIterations       int64
	flagBatches               int
	flagExploration           float64
	flagVirtualLoss           int
	flagHeuristic             bool
	flagMaxRolloutPlies       int
	flagSeed                  int64
	flagSearchDuration        time.Duration
	flagDumpTree              bool
	flagBackend               string
	flagPreferHighPerformance bool
	flagGPUOnly               bool
	flagReadbackTimeout       time.Duration
	flagReadbackPollSleep     time.Duration
	flagDrainTimeout          time.Duration
	flagMinBatchIterations    int64
	flagDebug                 bool
)

func main() {
	root := &cobra.Command{
		Use:   "mctsctl",
		Short: "Run the GPU-style MCTS engine's CPU backend against a representative game",
		RunE:  run,
	}

	root.Flags().StringVar(&flagGame, "game", "gomoku", "game to search: gomoku|connect4|othello|blokus")
	root.Flags().IntVar(&flagWorkers, "workers", 8, "number of persistent worker goroutines")
	root.Flags().IntVar(&flagNodePoolSize, "node-pool-size", 1<<20, "number of node slots to pre-allocate")
	root.Flags().Int64Var(&flagBatchIterations, "batch-iterations", 2000, "iterations dispatched per batch")
	root.Flags().IntVar(&flagBatches, "batches", 5, "number of dispatch batches to run before reporting")
	root.Flags().Float64Var(&flagExploration, "exploration-constant", 1.4, "PUCT exploration constant c")
	root.Flags().IntVar(&flagVirtualLoss, "virtual-loss", 3, "virtual-loss magnitude applied during selection")
	root.Flags().BoolVar(&flagHeuristic, "heuristic-rollout", false, "use heuristic evaluation instead of random rollout")
	root.Flags().IntVar(&flagMaxRolloutPlies, "max-rollout-plies", 400, "ply cap on a random rollout before scoring it a draw")
	root.Flags().Int64Var(&flagSeed, "seed", 1, "PRNG seed")
	root.Flags().DurationVar(&flagSearchDuration, "search-duration", 0, "if set, stop after this wall-clock duration instead of --batches")
	root.Flags().BoolVar(&flagDumpTree, "dump-tree", false, "print a Graphviz DOT dump of the live tree after searching")
	root.Flags().StringVar(&flagBackend, "backend", string(device.BackendAuto), "compute backend override: auto|vulkan|dx12|cpu")
	root.Flags().BoolVar(&flagPreferHighPerformance, "prefer-high-performance", true, "request the highest-throughput adapter during device selection")
	root.Flags().BoolVar(&flagGPUOnly, "gpu-only", false, "fail CreateContext rather than fall back to the CPU backend")
	root.Flags().DurationVar(&flagReadbackTimeout, "readback-timeout", 2*time.Second, "bound on how long GetChildrenStats may block on its stats copy")
	root.Flags().DurationVar(&flagReadbackPollSleep, "readback-poll-sleep", time.Millisecond, "per-child poll granularity of the stats copy")
	root.Flags().DurationVar(&flagDrainTimeout, "drain-timeout", 2*time.Second, "bound on how long AdvanceRoot may wait for the re-root protocol")
	root.Flags().Int64Var(&flagMinBatchIterations, "min-batch-iterations", 1, "smallest iteration count RunIterations will accept")
	root.Flags().BoolVar(&flagDebug, "debug", false, "raise the supervisor's logger to debug level")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var cfgErr *supervisor.ConfigError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	gameID, err := parseGameID(flagGame)
	if err != nil {
		return supervisor.NewConfigError(err)
	}

	cfg := supervisor.DefaultConfig(gameID)
	cfg.NumWorkers = flagWorkers
	cfg.NodePoolSize = flagNodePoolSize
	cfg.ExplorationConstant = float32(flagExploration)
	cfg.VirtualLossMagnitude = int32(flagVirtualLoss)
	cfg.MaxRolloutPlies = flagMaxRolloutPlies
	cfg.Seed = flagSeed
	cfg.Backend = device.Backend(flagBackend)
	cfg.PreferHighPerformance = flagPreferHighPerformance
	cfg.GPUOnly = flagGPUOnly
	cfg.ReadbackTimeout = flagReadbackTimeout
	cfg.ReadbackPollSleep = flagReadbackPollSleep
	cfg.DrainTimeout = flagDrainTimeout
	cfg.MinBatchIterations = flagMinBatchIterations
	cfg.DebugMode = flagDebug
	if flagHeuristic {
		cfg.SimMode = kernel.SimHeuristicEval
	}

	sup, err := supervisor.CreateContext(cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	sup.InitTree()

	ctx := context.Background()
	deadline := time.Time{}
	if flagSearchDuration > 0 {
		deadline = time.Now().Add(flagSearchDuration)
	}

	batches := flagBatches
	if !deadline.IsZero() {
		batches = 0 // the deadline alone ends the loop
	}
	for i := 0; batches <= 0 || i < batches; i++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		tel, err := sup.RunIterations(ctx, flagBatchIterations)
		if err != nil {
			return err
		}
		sup.Logger().WithField("context_id", sup.ContextID()).WithField("batch", i).
			WithField("iterations_run", tel.IterationsRun).
			WithField("root_visits", tel.RootVisits).WithField("live_nodes", tel.LiveNodes).
			Info("dispatch complete")

		for _, rec := range sup.PollUrgentEvents() {
			sup.Logger().WithField("event", rec.EventType.String()).Warn("urgent event observed")
		}
	}

	stats, err := sup.GetChildrenStats()
	if err != nil {
		return err
	}
	for _, c := range stats {
		fmt.Printf("move=%d visits=%d wins=%d q=%.4f\n", c.Move, c.Visits, c.Wins, c.Q)
	}

	if flagDumpTree {
		dot, truncated, err := diag.DumpTree(sup.Pool(), 0)
		if err != nil {
			return err
		}
		if truncated {
			fmt.Fprintln(os.Stderr, "tree dump truncated at diag.MaxDumpNodes")
		}
		fmt.Println(dot)
	}

	return nil
}

func parseGameID(name string) (games.GameID, error) {
	switch name {
	case "gomoku":
		return games.GameGomoku, nil
	case "connect4":
		return games.GameConnect4, nil
	case "othello":
		return games.GameOthello, nil
	case "blokus":
		return games.GameBlokus, nil
	default:
		return 0, fmt.Errorf("mctsctl: unknown game %q", name)
	}
}
