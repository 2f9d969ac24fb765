package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tickmesh/checkpoint"
	"github.com/hupe1980/tickmesh/checkpoint/badger"
	"github.com/hupe1980/tickmesh/config"
	"github.com/hupe1980/tickmesh/logging"
)

// app holds the state shared by every command: flags, the loaded
// configuration and the logger.
type app struct {
	configPath string
	logLevel   string

	storeKind string
	storePath string
	inMemory  bool

	cfg    config.Config
	logger *logging.TickLogger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tickmesh",
		Short: "Run tick-driven behavior trees against a simulated host",
		Long: `tickmesh drives a behavior tree once per simulated host tick: the
construction planner searches every region for free tiles while a repair
task keeps structures alive, all within a regenerating execution budget.
State between ticks lives in a checkpoint store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.storeKind, "store", "", "Checkpoint store: memory or badger")
	root.PersistentFlags().StringVar(&a.storePath, "path", "", "Directory of the badger store")
	root.PersistentFlags().BoolVar(&a.inMemory, "in-memory", false, "Run the badger store in memory")

	root.AddCommand(newSimulateCmd(a), newInspectCmd(a))

	return root
}

// load reads the configuration and applies the command line overrides.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("store") {
		cfg.Store.Kind = a.storeKind
	}
	if flags.Changed("path") {
		cfg.Store.Path = a.storePath
	}
	if flags.Changed("in-memory") {
		cfg.Store.InMemory = a.inMemory
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    cmd.ErrOrStderr(),
		Component: "tickmesh",
	})

	return nil
}

// shardPrefix namespaces a shard's keys in a shared badger database.
func shardPrefix(shard int) string { return fmt.Sprintf("shard-%d/", shard) }

// openStores returns a constructor for per-shard stores and a func closing
// whatever was opened.
func (a *app) openStores() (func(shard int) checkpoint.Store, func() error, error) {
	sc := a.cfg.Store

	if sc.Kind != "badger" {
		stores := func(int) checkpoint.Store {
			return checkpoint.NewMemoryStore(func(o *checkpoint.Options) { o.MaxSize = sc.MaxSize })
		}
		return stores, func() error { return nil }, nil
	}

	db, err := a.openBadger()
	if err != nil {
		return nil, nil, err
	}
	stores := func(shard int) checkpoint.Store { return db.Sub(shardPrefix(shard)) }
	return stores, db.Close, nil
}

func (a *app) openBadger() (*badger.Store, error) {
	sc := a.cfg.Store

	bc := badger.DefaultConfig(sc.Path)
	bc.InMemory = sc.InMemory
	bc.MaxSize = sc.MaxSize
	bc.Logger = a.logger.WithComponent("badger")

	return badger.Open(bc)
}
