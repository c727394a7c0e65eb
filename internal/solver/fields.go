package solver

import (
	"fmt"
	"strings"
)

// FieldID names a machining quantity.
type FieldID string

const (
	Diameter     FieldID = "D"
	Teeth        FieldID = "Z"
	CuttingSpeed FieldID = "Vc"
	Spindle      FieldID = "N"
	FeedPerTooth FieldID = "fz"
	FeedPerRev   FieldID = "fn"
	FeedRate     FieldID = "vf"
	AxialDepth   FieldID = "ap"
	RadialDepth  FieldID = "ae"
	Passes       FieldID = "np"
	Length       FieldID = "lm"
	PeckDepth    FieldID = "pb"
	PeckCount    FieldID = "nb"
	CuttingTime  FieldID = "tc"
	RemovalRate  FieldID = "Q"
)

// Field describes one entry of a FieldSet.
type Field struct {
	ID        FieldID
	Precision int  // decimals used when the value is computed
	Decimal   bool // the decimal key is enabled while editing
	Derived   bool // output only; never selectable
	Metric    string
	Imperial  string
}

// Unit returns the display label for the given measurement system.
// Labels are cosmetic: switching systems never rescales stored values.
func (f Field) Unit(u Units) string {
	if u == Imperial {
		return f.Imperial
	}
	return f.Metric
}

// Variant identifies an operation type.
type Variant string

const (
	Drilling Variant = "drilling"
	Milling  Variant = "milling"
)

// ParseVariant accepts the English names and the persisted key prefixes.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drilling", "drill", "barrenado":
		return Drilling, nil
	case "milling", "mill", "fresado":
		return Milling, nil
	}
	return "", fmt.Errorf("unknown variant %q", s)
}

type rule func(e *eval)

// FieldSet is the static configuration of one calculator variant: the
// ordered fields, which of them take decimals, and the trigger table that
// maps an edited field to the formulas it fires.
type FieldSet struct {
	Variant Variant
	Prefix  string

	fields      []Field
	rules       map[FieldID]rule
	cuttingTime func(e *eval) float64
	removalRate func(e *eval) float64
}

// Fields returns every field, editable ones first in selection order.
func (s *FieldSet) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Editable returns the number of selectable fields. Selection indices run
// from 1 to Editable().
func (s *FieldSet) Editable() int {
	n := 0
	for _, f := range s.fields {
		if !f.Derived {
			n++
		}
	}
	return n
}

// At returns the field at a 1-based selection index.
func (s *FieldSet) At(index int) (Field, bool) {
	if index < 1 || index > s.Editable() {
		return Field{}, false
	}
	return s.fields[index-1], true
}

// Field looks a field up by id.
func (s *FieldSet) Field(id FieldID) (Field, bool) {
	for _, f := range s.fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Index returns the 1-based selection index of id, or 0 when the field is
// derived or not part of the set.
func (s *FieldSet) Index(id FieldID) int {
	for i, f := range s.fields {
		if f.ID == id && !f.Derived {
			return i + 1
		}
	}
	return 0
}

// Key returns the persistence key for id, e.g. "barrenado-d".
func (s *FieldSet) Key(id FieldID) string {
	return s.Prefix + "-" + strings.ToLower(string(id))
}

// Lookup resolves a field id case-insensitively.
func (s *FieldSet) Lookup(name string) (FieldID, bool) {
	name = strings.TrimSpace(name)
	for _, f := range s.fields {
		if string(f.ID) == name {
			return f.ID, true
		}
	}
	for _, f := range s.fields {
		if strings.EqualFold(string(f.ID), name) {
			return f.ID, true
		}
	}
	return "", false
}

// ForVariant returns the FieldSet for v.
func ForVariant(v Variant) (*FieldSet, error) {
	switch v {
	case Drilling:
		return drillingSet, nil
	case Milling:
		return millingSet, nil
	}
	return nil, fmt.Errorf("unknown variant %q", v)
}

// DrillingSet returns the drilling configuration.
func DrillingSet() *FieldSet { return drillingSet }

// MillingSet returns the milling configuration.
func MillingSet() *FieldSet { return millingSet }

func commonFields() []Field {
	return []Field{
		{ID: Diameter, Precision: 2, Decimal: true, Metric: "mm", Imperial: "in"},
		{ID: Teeth, Precision: 0},
		{ID: CuttingSpeed, Precision: 0, Decimal: true, Metric: "m/min", Imperial: "ft/min"},
		{ID: Spindle, Precision: 0, Decimal: true, Metric: "rpm", Imperial: "rpm"},
		{ID: FeedPerTooth, Precision: 3, Decimal: true, Metric: "mm/z", Imperial: "in/z"},
		{ID: FeedPerRev, Precision: 2, Decimal: true, Metric: "mm/rev", Imperial: "in/rev"},
		{ID: FeedRate, Precision: 0, Decimal: true, Metric: "mm/min", Imperial: "in/min"},
	}
}

func commonRules() map[FieldID]rule {
	return map[FieldID]rule{
		Diameter:     onDiameter,
		Teeth:        onTeeth,
		Spindle:      onSpindle,
		CuttingSpeed: onCuttingSpeed,
		FeedPerTooth: onFeedPerTooth,
		FeedPerRev:   onFeedPerRev,
		FeedRate:     onFeedRate,
	}
}

var drillingSet = func() *FieldSet {
	fields := append(commonFields(),
		Field{ID: PeckDepth, Precision: 2, Decimal: true, Metric: "mm", Imperial: "in"},
		Field{ID: PeckCount, Precision: 0},
		Field{ID: CuttingTime, Precision: 2, Derived: true, Metric: "s", Imperial: "s"},
		Field{ID: RemovalRate, Precision: 2, Derived: true, Metric: "cm³/min", Imperial: "in³/min"},
	)
	rules := commonRules()
	rules[PeckDepth] = onTimeInputs
	rules[PeckCount] = onTimeInputs
	return &FieldSet{
		Variant: Drilling,
		Prefix:  "barrenado",
		fields:  fields,
		rules:   rules,
		cuttingTime: func(e *eval) float64 {
			return drillingTime(e.num(PeckDepth), e.num(FeedRate), e.num(PeckCount))
		},
		removalRate: func(e *eval) float64 {
			return drillingRemovalRate(e.num(Diameter), e.num(FeedRate))
		},
	}
}()

var millingSet = func() *FieldSet {
	fields := append(commonFields(),
		Field{ID: AxialDepth, Precision: 2, Decimal: true, Metric: "mm", Imperial: "in"},
		Field{ID: RadialDepth, Precision: 2, Decimal: true, Metric: "mm", Imperial: "in"},
		Field{ID: Passes, Precision: 0},
		Field{ID: Length, Precision: 2, Decimal: true, Metric: "mm", Imperial: "in"},
		Field{ID: CuttingTime, Precision: 1, Derived: true, Metric: "s", Imperial: "s"},
		Field{ID: RemovalRate, Precision: 1, Derived: true, Metric: "cm³/min", Imperial: "in³/min"},
	)
	rules := commonRules()
	rules[AxialDepth] = onRateInputs
	rules[RadialDepth] = onRateInputs
	rules[Passes] = onTimeInputs
	rules[Length] = onTimeInputs
	return &FieldSet{
		Variant: Milling,
		Prefix:  "fresado",
		fields:  fields,
		rules:   rules,
		cuttingTime: func(e *eval) float64 {
			return millingTime(e.num(Length), e.num(FeedRate), e.num(Passes))
		},
		removalRate: func(e *eval) float64 {
			return millingRemovalRate(e.num(AxialDepth), e.num(RadialDepth), e.num(FeedRate))
		},
	}
}()
