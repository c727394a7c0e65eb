package solver

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// enter selects id and types value the way a user would, clearing a
// non-zero field first.
func enter(t *testing.T, s *Solver, m Modes, id FieldID, value string) {
	t.Helper()
	idx := s.Set().Index(id)
	require.NotZero(t, idx, "field %s not editable", id)
	s.Select(idx, 0)
	if !isZero(s.Value(id).Raw) {
		s.Press(KeyClear, m)
	}
	for _, r := range value {
		s.Press(r, m)
	}
	require.Equal(t, value, s.Value(id).Raw)
}

func fast() Modes { return Modes{Lock: LockFeed, Speed: SpeedFast} }

func TestDrillingSpindleFromCuttingSpeed(t *testing.T) {
	t.Parallel()
	s := New(DrillingSet())
	enter(t, s, fast(), Diameter, "10")
	enter(t, s, fast(), CuttingSpeed, "100")
	require.Equal(t, "3183", s.Value(Spindle).Raw)
	require.Equal(t, Format(math.Round(100*1000/(math.Pi*10)), 0), s.Value(Spindle).Raw)
}

func TestMillingRemovalRate(t *testing.T) {
	t.Parallel()
	m := DefaultModes()
	s := New(MillingSet())
	enter(t, s, m, AxialDepth, "2")
	enter(t, s, m, RadialDepth, "5")
	enter(t, s, m, FeedRate, "300")
	require.Equal(t, "3.0", s.Value(RemovalRate).Raw)
}

func TestMillingCuttingTime(t *testing.T) {
	t.Parallel()
	m := DefaultModes()
	s := New(MillingSet())
	enter(t, s, m, Length, "120")
	enter(t, s, m, FeedRate, "300")
	enter(t, s, m, Passes, "2")
	require.Equal(t, "48.0", s.Value(CuttingTime).Raw)
}

func TestCuttingSpeedRoundTrip(t *testing.T) {
	t.Parallel()
	m := DefaultModes()
	for _, tc := range []struct {
		d, n string
	}{
		{"10", "3000"},
		{"6", "8000"},
		{"25.4", "1200"},
		{"3", "15000"},
	} {
		t.Run(tc.d+"x"+tc.n, func(t *testing.T) {
			s := New(MillingSet())
			enter(t, s, m, Diameter, tc.d)
			enter(t, s, m, Spindle, tc.n)

			d, _ := Parse(tc.d)
			n, _ := Parse(tc.n)
			want := Format(math.Pi*d*n/1000, 0)
			require.Equal(t, want, s.Value(CuttingSpeed).Raw)

			enter(t, s, fast(), CuttingSpeed, want)
			got := s.Value(Spindle).Number()
			tolerance := 1000*0.5/(math.Pi*d) + 0.5
			assert.InDelta(t, n, got, tolerance)
		})
	}
}

func TestDiameterUnderSpindleLock(t *testing.T) {
	t.Parallel()
	m := Modes{Lock: LockSpindle, Speed: SpeedNormal}
	s := New(DrillingSet())
	enter(t, s, m, Spindle, "1000")
	enter(t, s, m, FeedPerRev, "0.1")
	require.Equal(t, "100", s.Value(FeedRate).Raw)

	enter(t, s, m, Diameter, "20")
	assert.Equal(t, "1000", s.Value(Spindle).Raw)
	assert.Equal(t, "63", s.Value(CuttingSpeed).Raw)
	assert.Equal(t, "100", s.Value(FeedRate).Raw)
	assert.Equal(t, "31.42", s.Value(RemovalRate).Raw)
	assert.Equal(t, "0", s.Value(CuttingTime).Raw)
}

func TestDiameterUnderFeedLockNormal(t *testing.T) {
	t.Parallel()
	m := DefaultModes()
	s := New(MillingSet())
	enter(t, s, m, Spindle, "1000")
	enter(t, s, m, FeedPerRev, "0.1")
	enter(t, s, m, Diameter, "10")
	assert.Equal(t, "1000", s.Value(Spindle).Raw)
	assert.Equal(t, "31", s.Value(CuttingSpeed).Raw)
}

func TestTeethBranches(t *testing.T) {
	t.Parallel()

	t.Run("normal", func(t *testing.T) {
		m := DefaultModes()
		s := New(MillingSet())
		enter(t, s, m, Spindle, "1000")
		enter(t, s, m, FeedPerRev, "0.1")
		enter(t, s, m, Teeth, "4")
		assert.Equal(t, "0.10", s.Value(FeedPerRev).Raw)
		assert.Equal(t, "0.025", s.Value(FeedPerTooth).Raw)
	})

	t.Run("spindle lock", func(t *testing.T) {
		m := Modes{Lock: LockSpindle, Speed: SpeedNormal}
		s := New(MillingSet())
		enter(t, s, m, Spindle, "1000")
		enter(t, s, m, FeedPerRev, "0.1")
		enter(t, s, m, Teeth, "4")
		assert.Equal(t, "0.1", s.Value(FeedPerRev).Raw)
		assert.Equal(t, "0.025", s.Value(FeedPerTooth).Raw)
		assert.Equal(t, "100", s.Value(FeedRate).Raw)
	})

	t.Run("fast", func(t *testing.T) {
		m := fast()
		s := New(MillingSet())
		enter(t, s, m, Spindle, "1000")
		enter(t, s, m, FeedPerTooth, "0.05")
		enter(t, s, m, Teeth, "4")
		assert.Equal(t, "0.20", s.Value(FeedPerRev).Raw)
		assert.Equal(t, "200", s.Value(FeedRate).Raw)
	})
}

func TestSpindleEditDoesNotTouchOutputs(t *testing.T) {
	t.Parallel()
	m := DefaultModes()
	s := New(MillingSet())
	enter(t, s, m, FeedRate, "300")
	s.Select(s.Set().Index(Spindle), 0)
	res := s.Press('5', m)
	require.Equal(t, []FieldID{Spindle, CuttingSpeed, FeedPerRev}, res.Changed)
	assert.Equal(t, "60.00", s.Value(FeedPerRev).Raw)
}

func TestZeroDenominatorsYieldZero(t *testing.T) {
	t.Parallel()
	s := New(DrillingSet())
	enter(t, s, fast(), CuttingSpeed, "100")
	require.Equal(t, "0", s.Value(Spindle).Raw)

	enter(t, s, DefaultModes(), FeedRate, "250")
	require.Equal(t, "0", s.Value(FeedPerRev).Raw)
	require.Equal(t, "0", s.Value(CuttingTime).Raw)
}

func TestRandomKeysNeverLeakNaN(t *testing.T) {
	t.Parallel()
	keys := []rune("0123456789.CSB")
	rng := rand.New(rand.NewSource(7))
	for _, set := range []*FieldSet{DrillingSet(), MillingSet()} {
		s := New(set)
		s.Select(0, 0)
		for i := 0; i < 5000; i++ {
			m := Modes{Lock: LockFeed, Speed: SpeedNormal}
			if rng.Intn(2) == 0 {
				m.Lock = LockSpindle
			}
			if rng.Intn(2) == 0 {
				m.Speed = SpeedFast
			}
			s.Press(keys[rng.Intn(len(keys))], m)
			for id, raw := range s.Values() {
				require.False(t, strings.Contains(raw, "NaN"), "%s=%s", id, raw)
				require.False(t, strings.Contains(raw, "Inf"), "%s=%s", id, raw)
				require.LessOrEqual(t, strings.Count(raw, "."), 1, "%s=%s", id, raw)
			}
		}
	}
}

func TestDecimalPointOnlyOnce(t *testing.T) {
	t.Parallel()
	m := DefaultModes()
	s := New(MillingSet())
	s.Select(s.Set().Index(Diameter), 0)
	for _, r := range "1..5" {
		s.Press(r, m)
	}
	require.Equal(t, "1.5", s.Value(Diameter).Raw)
	require.True(t, s.State().DecimalPlaced)

	s.Select(s.Set().Index(Teeth), 0)
	require.False(t, s.State().DecimalEnabled)
	require.False(t, s.State().DecimalPlaced)
	s.Press('3', m)
	s.Press('.', m)
	require.Equal(t, "3", s.Value(Teeth).Raw)
}

func TestLeadingZeroReplacedButDecimalKept(t *testing.T) {
	t.Parallel()
	m := DefaultModes()
	s := New(DrillingSet())
	s.Select(s.Set().Index(FeedPerTooth), 0)
	for _, r := range "007" {
		s.Press(r, m)
	}
	require.Equal(t, "7", s.Value(FeedPerTooth).Raw)

	s.Press(KeyClear, m)
	for _, r := range "0.05" {
		s.Press(r, m)
	}
	require.Equal(t, "0.05", s.Value(FeedPerTooth).Raw)
}

func TestClearSingleThenAll(t *testing.T) {
	t.Parallel()
	m := DefaultModes()
	s := New(MillingSet())
	enter(t, s, m, Diameter, "12")
	enter(t, s, m, AxialDepth, "3")
	require.Equal(t, CaptionClear, s.State().Caption)

	res := s.Press(KeyClear, m)
	require.False(t, res.Reset)
	require.Equal(t, "0", s.Value(AxialDepth).Raw)
	require.Equal(t, "12", s.Value(Diameter).Raw)
	require.Equal(t, CaptionClearAll, res.State.Caption)

	for i := 0; i < 2; i++ {
		res = s.Press(KeyClear, m)
		require.True(t, res.Reset)
		require.Equal(t, CaptionClearAll, res.State.Caption)
		require.Len(t, res.Changed, len(s.Set().Fields()))
		for id, raw := range s.Values() {
			require.Equal(t, "0", raw, "field %s", id)
		}
	}
}

func TestFieldSetIsolation(t *testing.T) {
	t.Parallel()
	millingOnly := map[FieldID]bool{AxialDepth: true, RadialDepth: true, Passes: true, Length: true}
	drillingOnly := map[FieldID]bool{PeckDepth: true, PeckCount: true}

	check := func(t *testing.T, set *FieldSet, foreign map[FieldID]bool) {
		m := DefaultModes()
		s := New(set)
		for i := 1; i <= set.Editable(); i++ {
			s.Select(i, 0)
			res := s.Press('5', m)
			for _, id := range res.Changed {
				require.False(t, foreign[id], "%s edit touched %s", set.Variant, id)
			}
		}
		for id := range s.Values() {
			require.False(t, foreign[id])
		}
	}
	check(t, DrillingSet(), millingOnly)
	check(t, MillingSet(), drillingOnly)

	s := New(DrillingSet())
	s.Load(map[FieldID]string{AxialDepth: "9", PeckDepth: "4"})
	assert.Equal(t, "0", s.Value(AxialDepth).Raw)
	assert.Equal(t, "4", s.Value(PeckDepth).Raw)
}

func TestSelectClamps(t *testing.T) {
	t.Parallel()
	for _, set := range []*FieldSet{DrillingSet(), MillingSet()} {
		s := New(set)
		last := set.Editable()
		assert.Equal(t, 1, s.Select(1, -1).Selected)
		assert.Equal(t, 1, s.Select(0, 0).Selected)
		assert.Equal(t, last, s.Select(last, +1).Selected)
		assert.Equal(t, last, s.Select(last+5, 0).Selected)

		s = New(set)
		res := s.Press(KeyUp, DefaultModes())
		assert.Equal(t, 1, res.State.Selected)
		assert.Empty(t, res.Changed)
		res = s.Press(KeyDown, DefaultModes())
		assert.Equal(t, 2, res.State.Selected)
	}
	assert.Equal(t, 9, DrillingSet().Editable())
	assert.Equal(t, 11, MillingSet().Editable())
}

func TestSelectCaptionAndDecimal(t *testing.T) {
	t.Parallel()
	s := New(MillingSet())
	s.Load(map[FieldID]string{Diameter: "8", Teeth: "0"})
	st := s.Select(s.Set().Index(Diameter), 0)
	assert.Equal(t, CaptionClear, st.Caption)
	assert.True(t, st.DecimalEnabled)
	st = s.Select(st.Selected, +1)
	assert.Equal(t, Teeth, mustAt(t, s.Set(), st.Selected).ID)
	assert.Equal(t, CaptionClearAll, st.Caption)
	assert.False(t, st.DecimalEnabled)
}

func TestNothingSelectedIgnoresValueKeys(t *testing.T) {
	t.Parallel()
	s := New(MillingSet())
	before := s.Values()
	res := s.Press('7', DefaultModes())
	assert.Empty(t, res.Changed)
	assert.Empty(t, cmp.Diff(before, s.Values()))
}

func TestLoadSanitizes(t *testing.T) {
	t.Parallel()
	s := New(MillingSet())
	s.Load(map[FieldID]string{Diameter: "NaN", Spindle: "Infinity", FeedRate: "12."})
	want := s.Values()
	want[Diameter] = "0"
	want[Spindle] = "0"
	want[FeedRate] = "12."
	assert.Empty(t, cmp.Diff(want, s.Values()))
}

func TestUnitsAreLabelsOnly(t *testing.T) {
	t.Parallel()
	f, ok := MillingSet().Field(CuttingSpeed)
	require.True(t, ok)
	assert.Equal(t, "m/min", f.Unit(Metric))
	assert.Equal(t, "ft/min", f.Unit(Imperial))
	f, _ = MillingSet().Field(Teeth)
	assert.Empty(t, f.Unit(Imperial))
}

func TestKeysAndLookup(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "barrenado-d", DrillingSet().Key(Diameter))
	assert.Equal(t, "fresado-ap", MillingSet().Key(AxialDepth))
	assert.Equal(t, "fresado-vc", MillingSet().Key(CuttingSpeed))

	id, ok := MillingSet().Lookup("vc")
	require.True(t, ok)
	assert.Equal(t, CuttingSpeed, id)
	_, ok = DrillingSet().Lookup("ap")
	assert.False(t, ok)
	assert.Zero(t, MillingSet().Index(RemovalRate))
}

func mustAt(t *testing.T, set *FieldSet, idx int) Field {
	t.Helper()
	f, ok := set.At(idx)
	require.True(t, ok)
	return f
}
