// Panoramyx drives one parallel constraint-solving run: it loads a
// RunConfig, builds the transport/cube/bound stack it describes, and runs
// either cube-and-conquer (EPS) or portfolio search to completion, exactly
// as the teacher's main.go wires reinforcement.FromYaml -> reinforcement.Train
// -> server.NewServer. "-debug"/selectTrack's role is played here by
// "-demo", which builds a small in-memory instance instead of requiring a
// real universe.Solver plugin.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/crillab/panoramyx/bounds"
	"github.com/crillab/panoramyx/config"
	"github.com/crillab/panoramyx/coordinator"
	"github.com/crillab/panoramyx/cube"
	"github.com/crillab/panoramyx/dashboard"
	"github.com/crillab/panoramyx/internal/logx"
	"github.com/crillab/panoramyx/transport"
	"github.com/crillab/panoramyx/transport/factory"
	"github.com/crillab/panoramyx/universe"
	"github.com/crillab/panoramyx/universe/refsolver"
	"github.com/crillab/panoramyx/worker"
)

var (
	configPath  *string
	rank        *int
	demo        *bool
	dashAddr    *string
	instanceDef *string
)

// TODO: per 12-factor rules these should also accept env overrides; KISS for now.
func init() {
	configPath = flag.String("config", "./config.yaml", "path to the run config")
	rank = flag.Int("rank", 0, "this process's rank (grpc transport only; ignored for thread)")
	demo = flag.Bool("demo", false, "build a small in-memory instance instead of loading one")
	dashAddr = flag.String("dashboard", "", "if set, serve the live dashboard on this address")
	instanceDef = flag.String("instance", "", "instance filename passed to LoadInstance")
	flag.Parse()
}

var log = logx.New("cmd")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromYaml(*configPath)
	if err != nil {
		return fmt.Errorf("panoramyx: loading config: %w", err)
	}

	if !*demo {
		return fmt.Errorf("panoramyx: no universe.Solver plugin wired; pass -demo to run against the built-in fixture instance")
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	runCtx, cancel, err := cfg.WithDeadline(appCtx)
	if err != nil {
		return fmt.Errorf("panoramyx: parsing deadline: %w", err)
	}
	defer cancel()

	if cfg.Transport.Kind == "thread" {
		return runThreadMode(runCtx, cfg)
	}
	return runGrpcMode(runCtx, cfg, *rank)
}

// runThreadMode runs every rank as a goroutine in this process: the
// transport/thread variant requires all ranks to share one router, so rank
// 0 (the coordinator) and every worker rank are started together here.
func runThreadMode(ctx context.Context, cfg *config.RunConfig) error {
	size := cfg.Transport.WorkerCount + 1
	transports := factory.NewThreadGroup(size)
	workerRanks := make([]int, 0, size-1)
	for i := 1; i < size; i++ {
		workerRanks = append(workerRanks, i)
	}

	for _, tr := range transports[1:] {
		go runWorker(ctx, tr, 0)
	}

	return runCoordinator(ctx, cfg, transports[0], workerRanks)
}

// runGrpcMode runs only this process's rank: rank 0 is the coordinator and
// also the grpc hub, every other rank is a worker and a spoke.
func runGrpcMode(ctx context.Context, cfg *config.RunConfig, thisRank int) error {
	tr, err := factory.New(cfg.Transport, thisRank)
	if err != nil {
		return fmt.Errorf("panoramyx: building transport: %w", err)
	}
	if thisRank == 0 {
		size := cfg.Transport.WorkerCount + 1
		workerRanks := make([]int, 0, size-1)
		for i := 1; i < size; i++ {
			workerRanks = append(workerRanks, i)
		}
		return runCoordinator(ctx, cfg, tr, workerRanks)
	}
	return runWorker(ctx, tr, 0)
}

func runWorker(ctx context.Context, tr transport.Transport, coordinatorRank int) error {
	return tr.Start(ctx, func(ctx context.Context, self transport.Transport) {
		loop := &worker.Loop{
			Solver:          buildSolver(),
			Transport:       self,
			CoordinatorRank: coordinatorRank,
		}
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Errorf("worker %d: %v", self.ID(), err)
		}
	})
}

func runCoordinator(ctx context.Context, cfg *config.RunConfig, tr transport.Transport, workerRanks []int) error {
	var bus *dashboard.Bus
	if *dashAddr != "" {
		bus = dashboard.NewRunBus(ctx)
		srv := dashboard.NewServer(*dashAddr, bus)
		go func() {
			if err := srv.Serve(ctx); err != nil {
				log.Errorf("dashboard: %v", err)
			}
		}()
	}

	var runErr error
	err := tr.Start(ctx, func(ctx context.Context, self transport.Transport) {
		solver, buildErr := buildCoordinatorSolver(cfg, self, workerRanks)
		if buildErr != nil {
			runErr = buildErr
			return
		}

		if *instanceDef != "" {
			if loadErr := solver.LoadInstance(ctx, *instanceDef); loadErr != nil {
				runErr = fmt.Errorf("panoramyx: loading instance: %w", loadErr)
				return
			}
		}

		result, searchErr := solver.StartSearch(ctx)
		if bus != nil {
			bus.Publish(ctx, &dashboard.Event{Kind: dashboard.EventRunFinished, Result: result})
		}
		if searchErr != nil {
			runErr = searchErr
			return
		}
		log.Infof("run finished: %s", result)
	})
	if err != nil {
		return err
	}
	return runErr
}

func buildCoordinatorSolver(cfg *config.RunConfig, tr transport.Transport, workerRanks []int) (coordinator.Solver, error) {
	b := coordinator.NewBuilder().WithTransport(tr).WithWorkers(workerRanks)

	if cfg.Bound.Strategy != "" {
		strategy, err := buildBoundStrategy(cfg.Bound)
		if err != nil {
			return nil, err
		}
		strategy.SetMinimization(cfg.Minimization)
		min, max, err := cfg.Bound.Bounds()
		if err != nil {
			return nil, err
		}
		return b.WithBoundStrategy(strategy, min, max).Build()
	}

	generator, err := buildGenerator(cfg.Cube)
	if err != nil {
		return nil, err
	}
	return b.WithCubeGenerator(generator).Build()
}

func buildBoundStrategy(cfg config.BoundConfig) (bounds.Strategy, error) {
	var iterFactory bounds.RangeIteratorFactory
	switch cfg.RangeIterator {
	case "", "linear":
		iterFactory = func(min, max *big.Int, steps int) bounds.RangeIterator {
			return bounds.NewLinearRangeIterator(min, max, steps)
		}
	case "logarithmic":
		iterFactory = func(min, max *big.Int, steps int) bounds.RangeIterator {
			return bounds.NewLogarithmicRangeIterator(min, max, steps, true)
		}
	default:
		return nil, fmt.Errorf("panoramyx: unknown range iterator %q", cfg.RangeIterator)
	}

	switch cfg.Strategy {
	case "", "range":
		return bounds.NewRangeBasedStrategy(iterFactory), nil
	case "aggressive-range":
		return bounds.NewAggressiveRangeBasedStrategy(iterFactory), nil
	default:
		return nil, fmt.Errorf("panoramyx: unknown bound strategy %q", cfg.Strategy)
	}
}

func buildGenerator(cfg config.CubeConfig) (cube.Generator, error) {
	genSolver := buildSolver()
	switch cfg.Strategy {
	case "", "lexicographic":
		return cube.NewLexicographicGenerator(genSolver, nil, cfg.NbCubesMax), nil
	case "lexicographic-interval":
		return cube.NewLexicographicIntervalGenerator(genSolver, nil, cfg.NbCubesMax, cfg.NbIntervals), nil
	case "cartesian":
		return cube.NewCartesianProductGenerator(genSolver, nil, cfg.NbCubesMax), nil
	default:
		return nil, fmt.Errorf("panoramyx: unknown or unsupported cube strategy %q (hypergraph-cutset needs a DecompositionSolver, wire it directly via cube.NewHypergraphCutsetGenerator)", cfg.Strategy)
	}
}

// buildSolver returns the demo fixture solver: a tiny hand-built instance,
// since universe/refsolver.LoadInstance always errors (it is a test/demo
// fixture, not a file-format parser; see universe/refsolver's doc comment).
// A production deployment plugs in a real universe.Solver here instead.
func buildSolver() universe.Solver {
	s := refsolver.New()
	s.NewVariable("x", []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(2)})
	s.NewVariable("y", []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(2)})
	s.AddConstraint(refsolver.Constraint{
		Scope: []string{"x", "y"},
		Check: func(a map[string]*big.Int) bool { return a["x"].Cmp(a["y"]) != 0 },
	})
	return s
}
