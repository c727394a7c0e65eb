package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/jaskcalc/internal/config"
	"github.com/jask/jaskcalc/internal/solver"
	"github.com/jask/jaskcalc/internal/tui"
)

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive keypad (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context())
		},
	}
}

func (a *app) runTUI(ctx context.Context) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return errors.New("the keypad needs a terminal; use press, set or show instead")
	}
	calc, err := a.calculator(ctx)
	if err != nil {
		return err
	}
	model := tui.New(ctx, calc, a.openCalculator, a.logger)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (a *app) pressCmd() *cobra.Command {
	var selectIdx int
	cmd := &cobra.Command{
		Use:   "press <keys>...",
		Short: "Press keypad keys: digits, '.', C (clear), S (up), B (down)",
		Example: "  jaskcalc press --select 1 10\n" +
			"  jaskcalc press --select 3 C 120",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			calc, err := a.calculator(ctx)
			if err != nil {
				return err
			}
			if selectIdx != 0 {
				if selectIdx < 0 || selectIdx > calc.FieldSet().Editable() {
					return fmt.Errorf("--select must be between 1 and %d", calc.FieldSet().Editable())
				}
				calc.Select(selectIdx, 0)
			}
			var errs []error
			for _, arg := range args {
				for _, r := range strings.ToUpper(arg) {
					if _, err := calc.Apply(ctx, r); err != nil {
						errs = append(errs, err)
					}
				}
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}
			return render(a.out, calc, formatTable)
		},
	}
	cmd.Flags().IntVar(&selectIdx, "select", 0, "field to select before pressing (1-based)")
	return cmd
}

func (a *app) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set <field>=<value>...",
		Short:   "Type values into fields and recompute",
		Example: "  jaskcalc set D=10 Vc=100",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			calc, err := a.calculator(ctx)
			if err != nil {
				return err
			}
			for _, arg := range args {
				name, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected field=value, got %q", arg)
				}
				if _, err := calc.SetField(ctx, strings.TrimSpace(name), strings.TrimSpace(value)); err != nil {
					return err
				}
			}
			return render(a.out, calc, formatTable)
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			calc, err := a.calculator(cmd.Context())
			if err != nil {
				return err
			}
			return render(a.out, calc, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(formatTable), "output format: table, yaml or json")
	return cmd
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear every field of the variant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			calc, err := a.calculator(ctx)
			if err != nil {
				return err
			}
			if _, err := calc.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s cleared\n", calc.FieldSet().Variant)
			return nil
		},
	}
}

func (a *app) settingsCmd() *cobra.Command {
	var (
		units, speed, lock string
		saveVariant        bool
	)
	cmd := &cobra.Command{
		Use:     "settings",
		Short:   "Show or change units, speed mode and lock",
		Example: "  jaskcalc settings --units im --speed fast --lock spindle",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			calc, err := a.calculator(ctx)
			if err != nil {
				return err
			}
			if units != "" {
				if err := oneOf("units", units, "mt", "im", "metric", "imperial"); err != nil {
					return err
				}
				if err := calc.SetUnits(ctx, solver.ParseUnits(units)); err != nil {
					return err
				}
			}
			if speed != "" {
				if err := oneOf("speed", speed, "normal", "fast", "fn", "n"); err != nil {
					return err
				}
				if err := calc.SetSpeedMode(ctx, solver.ParseSpeedMode(speed)); err != nil {
					return err
				}
			}
			if lock != "" {
				if err := oneOf("lock", lock, "feed", "spindle", "vf", "n"); err != nil {
					return err
				}
				if err := calc.SetLock(ctx, solver.ParseLock(lock)); err != nil {
					return err
				}
			}
			if saveVariant {
				if err := config.SaveVariant(a.configPath, a.cfg.Calculator.Variant); err != nil {
					return err
				}
				a.logger.Info("default variant saved", zap.String("variant", a.cfg.Calculator.Variant))
			}
			m := calc.Modes()
			fmt.Fprintf(a.out, "variant %s\nunits   %s\nspeed   %s\nlock    %s\n",
				calc.FieldSet().Variant, unitsName(calc.Units()), m.Speed.Name(), m.Lock.Name())
			return nil
		},
	}
	cmd.Flags().StringVar(&units, "units", "", "mt (metric) or im (imperial)")
	cmd.Flags().StringVar(&speed, "speed", "", "normal or fast")
	cmd.Flags().StringVar(&lock, "lock", "", "feed or spindle (per variant)")
	cmd.Flags().BoolVar(&saveVariant, "save-variant", false, "write --variant to the config file as the default")
	return cmd
}

func oneOf(flag, value string, allowed ...string) error {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("--%s: %q is not one of %s", flag, value, strings.Join(allowed, ", "))
}

func unitsName(u solver.Units) string {
	if u == solver.Imperial {
		return "imperial"
	}
	return "metric"
}
