package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/tickmesh"
	"github.com/hupe1980/tickmesh/checkpoint"
	"github.com/hupe1980/tickmesh/config"
	"github.com/hupe1980/tickmesh/construction"
	"github.com/hupe1980/tickmesh/core"
	"github.com/hupe1980/tickmesh/metrics"
	"github.com/hupe1980/tickmesh/node"
	"github.com/hupe1980/tickmesh/runner"
	"github.com/hupe1980/tickmesh/sim"
)

type simulateFlags struct {
	ticks       int
	from        uint64
	shards      int
	metricsAddr string
}

// shardResult summarizes one simulated world after the run.
type shardResult struct {
	Shard            int
	Ticks            int
	Structures       int
	Bucket           int
	CheckpointErrors int
}

func newSimulateCmd(a *app) *cobra.Command {
	f := &simulateFlags{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the colony tree against simulated worlds",
		Long: `Run the colony tree for a number of ticks. Every shard simulates its own
world (seed + shard) in parallel and keeps its checkpoints under its own
key prefix, so a badger store can be resumed with --from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("metrics-addr") {
				a.cfg.Metrics.Addr = f.metricsAddr
			}
			if f.shards < 1 {
				return fmt.Errorf("--shards must be at least 1, got %d", f.shards)
			}
			return a.simulate(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().IntVarP(&f.ticks, "ticks", "n", 100, "Number of ticks to run")
	cmd.Flags().Uint64Var(&f.from, "from", 0, "Host time of the first tick")
	cmd.Flags().IntVar(&f.shards, "shards", 1, "Number of worlds simulated in parallel")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")

	return cmd
}

func (a *app) simulate(ctx context.Context, out io.Writer, f *simulateFlags) error {
	stores, closeStores, err := a.openStores()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStores(); err != nil {
			a.logger.Warn("Closing store failed", "error", err.Error())
		}
	}()

	reg := prometheus.NewRegistry()
	if addr := a.cfg.Metrics.Addr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: metrics.Handler(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Metrics endpoint failed", "addr", addr, "error", err.Error())
			}
		}()
		defer srv.Close()
		a.logger.Info("Serving metrics", "addr", addr)
	}

	results := make([]shardResult, f.shards)

	g, gctx := errgroup.WithContext(ctx)
	for i := range f.shards {
		g.Go(func() error {
			shardReg := prometheus.WrapRegistererWith(prometheus.Labels{"shard": strconv.Itoa(i)}, reg)
			res, err := a.runShard(gctx, i, stores(i), shardReg, f)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		fmt.Fprintf(out, "shard %d: ticks=%d structures=%d bucket=%d checkpoint_errors=%d\n",
			r.Shard, r.Ticks, r.Structures, r.Bucket, r.CheckpointErrors)
	}
	return nil
}

func (a *app) runShard(ctx context.Context, shard int, store checkpoint.Store, reg prometheus.Registerer, f *simulateFlags) (shardResult, error) {
	logger := a.logger.WithContext("shard", shard)
	defer logger.StartTimer("simulate")()
	world := sim.NewWorld(a.cfg.Sim.WorldOptions(shard))

	mesh := tickmesh.New(colonyTree(a.cfg, world), func(o *tickmesh.Options) {
		o.Store = store
		o.Budget = world
		o.Registerer = reg
		o.Observers = []core.Observer{world}
		o.MemoryKey = a.cfg.Runner.MemoryKey
		o.PruneInterval = a.cfg.Runner.PruneInterval
		o.Alive = world.Alive
		o.Logger = logger
	})

	res := shardResult{Shard: shard}
	err := mesh.Run(ctx, f.from, f.ticks, func(r runner.Report) {
		res.Ticks++
		if r.CheckpointErr != nil {
			res.CheckpointErrors++
			logger.Warn("Checkpoint failed", "tick", r.Time, "error", r.CheckpointErr.Error())
		}
	})

	res.Bucket = world.Bucket()
	for _, name := range world.Regions() {
		res.Structures += len(world.Structures(name))
	}

	if err != nil {
		logger.ErrorWithStack(err, "Shard stopped early")
		return res, err
	}
	logger.Info("Shard finished", "ticks", res.Ticks, "structures", res.Structures, "bucket", res.Bucket)

	return res, nil
}

// colonyTree builds the tree ticked by every shard: construction first,
// then repair, each gated by its configured budget.
func colonyTree(cfg config.Config, world *sim.World) core.Node {
	planner := construction.NewPlanner(world, world, func(o *construction.Options) {
		o.Regions = world.Regions()
		o.Search = cfg.Search.SearchOptions()
		o.MaxSteps = cfg.Search.MaxSteps
		o.MaxPerTick = cfg.Sim.StructuresPerTick
		o.RequiredBudget = cfg.Budget.Construction
		o.Priority = 1
	})

	repair := sim.NewRepairTask(world, func(o *sim.RepairOptions) {
		o.RequiredBudget = cfg.Budget.Repair
	})

	return node.NewAll("colony", repair, planner.Task()).SortByPriority()
}
