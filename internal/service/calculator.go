package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/jaskcalc/internal/solver"
	"github.com/jask/jaskcalc/internal/storage"
)

// Writes are the store updates produced by one key press. Batch is set
// after a full reset, when all entries go out in a single MultiSet.
type Writes struct {
	Entries []storage.Entry
	Batch   bool
}

// Row is one field prepared for display.
type Row struct {
	Index    int // selection index, 0 for derived fields
	ID       solver.FieldID
	Value    string
	Unit     string
	Selected bool
	Derived  bool
}

// CalculatorService binds a solver to a key-value store: it loads the
// persisted fields and settings of one variant and turns every mutation
// into namespaced writes.
type CalculatorService struct {
	store  storage.Store
	logger *zap.Logger
	set    *solver.FieldSet
	solver *solver.Solver
	modes  solver.Modes
	units  solver.Units
}

// NewCalculator returns a service for variant with every field at "0".
// Call Open to load persisted state.
func NewCalculator(store storage.Store, variant solver.Variant, logger *zap.Logger) (*CalculatorService, error) {
	if store == nil {
		return nil, errors.New("calculator: store not configured")
	}
	set, err := solver.ForVariant(variant)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session", uuid.NewString()), zap.String("variant", string(variant)))
	return &CalculatorService{
		store:  store,
		logger: logger,
		set:    set,
		solver: solver.New(set),
		modes:  solver.DefaultModes(),
		units:  solver.Metric,
	}, nil
}

func (c *CalculatorService) lockKey() string { return c.set.Prefix + "-bloqueo" }

// Open loads field values and settings with one MultiGet. Missing keys keep
// their defaults.
func (c *CalculatorService) Open(ctx context.Context) error {
	fields := c.set.Fields()
	keys := make([]string, 0, len(fields)+3)
	for _, f := range fields {
		keys = append(keys, c.set.Key(f.ID))
	}
	keys = append(keys, storage.KeyUnits, storage.KeySpeedMode, c.lockKey())

	entries, err := c.store.MultiGet(ctx, keys)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.set.Variant, err)
	}
	stored := storage.ToMap(entries)
	values := make(map[solver.FieldID]string, len(fields))
	for _, f := range fields {
		if v, ok := stored[c.set.Key(f.ID)]; ok {
			values[f.ID] = v
		}
	}
	c.solver.Load(values)
	if v, ok := stored[storage.KeyUnits]; ok {
		c.units = solver.ParseUnits(v)
	}
	if v, ok := stored[storage.KeySpeedMode]; ok {
		c.modes.Speed = solver.ParseSpeedMode(v)
	}
	if v, ok := stored[c.lockKey()]; ok {
		c.modes.Lock = solver.ParseLock(v)
	}
	c.logger.Debug("calculator loaded", zap.Int("keys", len(entries)))
	return nil
}

// FieldSet returns the active configuration.
func (c *CalculatorService) FieldSet() *solver.FieldSet { return c.set }

func (c *CalculatorService) State() solver.EditState { return c.solver.State() }

func (c *CalculatorService) Modes() solver.Modes { return c.modes }

func (c *CalculatorService) Units() solver.Units { return c.units }

// Value returns the display string of id.
func (c *CalculatorService) Value(id solver.FieldID) string { return c.solver.Value(id).Raw }

// Select moves the selection; see solver.Solver.Select.
func (c *CalculatorService) Select(index, direction int) solver.EditState {
	return c.solver.Select(index, direction)
}

// Press applies key and returns the writes it produced without issuing
// them, so a host can persist them asynchronously.
func (c *CalculatorService) Press(key rune) (solver.Result, Writes) {
	res := c.solver.Press(key, c.modes)
	w := Writes{Batch: res.Reset}
	for _, id := range res.Changed {
		w.Entries = append(w.Entries, storage.Entry{Key: c.set.Key(id), Value: c.solver.Value(id).Raw})
	}
	return res, w
}

// Persist issues w. Failures are logged and returned joined; the in-memory
// values stay authoritative either way.
func (c *CalculatorService) Persist(ctx context.Context, w Writes) error {
	if len(w.Entries) == 0 {
		return nil
	}
	if w.Batch {
		if err := c.store.MultiSet(ctx, w.Entries); err != nil {
			c.logger.Warn("persist reset", zap.Int("keys", len(w.Entries)), zap.Error(err))
			return err
		}
		return nil
	}
	var errs []error
	for _, e := range w.Entries {
		if err := c.store.Set(ctx, e.Key, e.Value); err != nil {
			c.logger.Warn("persist field", zap.String("key", e.Key), zap.Error(err))
			errs = append(errs, fmt.Errorf("set %s: %w", e.Key, err))
		}
	}
	return errors.Join(errs...)
}

// Apply presses key and persists the result synchronously.
func (c *CalculatorService) Apply(ctx context.Context, key rune) (solver.Result, error) {
	res, w := c.Press(key)
	return res, c.Persist(ctx, w)
}

// Reset clears every field of the variant and persists the zeros.
func (c *CalculatorService) Reset(ctx context.Context) (solver.Result, error) {
	res := c.solver.Reset()
	w := Writes{Batch: true}
	for _, id := range res.Changed {
		w.Entries = append(w.Entries, storage.Entry{Key: c.set.Key(id), Value: "0"})
	}
	c.logger.Info("calculator reset")
	return res, c.Persist(ctx, w)
}

// SetUnits switches the unit labels. Stored values are not rescaled.
func (c *CalculatorService) SetUnits(ctx context.Context, u solver.Units) error {
	c.units = u
	return c.persistSetting(ctx, storage.KeyUnits, string(u))
}

func (c *CalculatorService) SetSpeedMode(ctx context.Context, m solver.SpeedMode) error {
	c.modes.Speed = m
	return c.persistSetting(ctx, storage.KeySpeedMode, string(m))
}

func (c *CalculatorService) SetLock(ctx context.Context, l solver.Lock) error {
	c.modes.Lock = l
	return c.persistSetting(ctx, c.lockKey(), string(l))
}

func (c *CalculatorService) persistSetting(ctx context.Context, key, value string) error {
	if err := c.store.Set(ctx, key, value); err != nil {
		c.logger.Warn("persist setting", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetField types value into the field called name as keystrokes, clearing
// it first, so every dependent formula fires as it would from the keypad.
func (c *CalculatorService) SetField(ctx context.Context, name, value string) (solver.Result, error) {
	id, err := ResolveField(c.set, name)
	if err != nil {
		return solver.Result{}, err
	}
	f, _ := c.set.Field(id)
	if err := validateInput(f, value); err != nil {
		return solver.Result{}, err
	}

	c.solver.Select(c.set.Index(id), 0)
	var (
		res  solver.Result
		errs []error
	)
	press := func(k rune) {
		var w Writes
		res, w = c.Press(k)
		if err := c.Persist(ctx, w); err != nil {
			errs = append(errs, err)
		}
	}
	switch v := c.solver.Value(id); {
	case v.Valid() && v.Number() != 0:
		press(solver.KeyClear)
	case v.Raw != "0":
		// "0." and friends: clearing through the keypad would wipe the form.
		c.solver.Load(map[solver.FieldID]string{id: "0"})
	}
	for _, r := range value {
		press(r)
	}
	return res, errors.Join(errs...)
}

func validateInput(f solver.Field, value string) error {
	if f.Derived {
		return fmt.Errorf("field %s is computed and cannot be set", f.ID)
	}
	if value == "" {
		return fmt.Errorf("field %s: empty value", f.ID)
	}
	dots := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
		default:
			return fmt.Errorf("field %s: invalid character %q in %q", f.ID, r, value)
		}
	}
	if dots > 1 {
		return fmt.Errorf("field %s: %q has more than one decimal point", f.ID, value)
	}
	if dots == 1 && !f.Decimal {
		return fmt.Errorf("field %s takes whole numbers", f.ID)
	}
	return nil
}

// ResolveField maps a user-supplied name to a field of set, suggesting the
// closest id when there is no match.
func ResolveField(set *solver.FieldSet, name string) (solver.FieldID, error) {
	if id, ok := set.Lookup(name); ok {
		return id, nil
	}
	best, bestDist := "", -1
	for _, f := range set.Fields() {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(string(f.ID)))
		if bestDist < 0 || d < bestDist {
			best, bestDist = string(f.ID), d
		}
	}
	if bestDist >= 0 && bestDist <= 2 {
		return "", fmt.Errorf("unknown %s field %q (did you mean %q?)", set.Variant, name, best)
	}
	return "", fmt.Errorf("unknown %s field %q", set.Variant, name)
}

// Snapshot returns every field in display order.
func (c *CalculatorService) Snapshot() []Row {
	sel := c.solver.State().Selected
	fields := c.set.Fields()
	rows := make([]Row, 0, len(fields))
	for _, f := range fields {
		idx := c.set.Index(f.ID)
		rows = append(rows, Row{
			Index:    idx,
			ID:       f.ID,
			Value:    c.solver.Value(f.ID).Raw,
			Unit:     f.Unit(c.units),
			Selected: idx != 0 && idx == sel,
			Derived:  f.Derived,
		})
	}
	return rows
}
