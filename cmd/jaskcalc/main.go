package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/jaskcalc/internal/config"
	"github.com/jask/jaskcalc/internal/logging"
	"github.com/jask/jaskcalc/internal/service"
	"github.com/jask/jaskcalc/internal/solver"
	"github.com/jask/jaskcalc/internal/storage"
)

func main() {
	if err := execute(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// execute runs one command line and releases storage whether or not the
// command succeeded.
func execute(ctx context.Context, out, errOut io.Writer, args []string) error {
	a := &app{out: out}
	defer a.teardown()
	root := newRootCmd(a)
	root.SetErr(errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// app holds what the subcommands share once PersistentPreRunE has run.
type app struct {
	out        io.Writer
	configPath string
	variant    string
	backend    string

	cfg     config.Config
	logger  *zap.Logger
	store   storage.Store
	closeFn func() error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "jaskcalc",
		Short: "Machining calculator for drilling and milling",
		Long: "jaskcalc solves cutting speed, spindle speed, feeds, cutting time and removal rate.\n" +
			"Editing one value recomputes the values that depend on it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context())
		},
	}
	root.SetOut(a.out)
	root.PersistentFlags().StringVar(&a.configPath, "config", config.Path(), "config file (TOML)")
	root.PersistentFlags().StringVar(&a.variant, "variant", "", "drilling or milling (default from config)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "storage backend: sqlite, badger or memory")

	root.AddCommand(
		a.tuiCmd(),
		a.pressCmd(),
		a.setCmd(),
		a.showCmd(),
		a.resetCmd(),
		a.settingsCmd(),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return err
	}
	if a.backend != "" {
		cfg.Storage.Backend = a.backend
	}
	if a.variant != "" {
		cfg.Calculator.Variant = a.variant
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger

	store, closeFn, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	a.store, a.closeFn = store, closeFn
	logger.Debug("storage ready", zap.String("backend", cfg.Storage.Backend))
	return nil
}

func (a *app) teardown() {
	if a.closeFn != nil {
		if err := a.closeFn(); err != nil {
			a.logger.Warn("close storage", zap.Error(err))
		}
		a.closeFn = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) openCalculator(ctx context.Context, v solver.Variant) (*service.CalculatorService, error) {
	calc, err := service.NewCalculator(a.store, v, a.logger)
	if err != nil {
		return nil, err
	}
	if err := calc.Open(ctx); err != nil {
		return nil, err
	}
	return calc, nil
}

// calculator opens the configured variant.
func (a *app) calculator(ctx context.Context) (*service.CalculatorService, error) {
	v, err := solver.ParseVariant(a.cfg.Calculator.Variant)
	if err != nil {
		return nil, err
	}
	return a.openCalculator(ctx, v)
}
