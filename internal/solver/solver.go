// Package solver implements the machining calculator: a fixed graph of
// named numeric fields (diameter, RPM, cutting speed, feeds, removal rate,
// cutting time) where editing one field re-derives a hardcoded set of
// dependents. Values are kept as the strings the user typed so partial
// input like "12." survives; computed values are rounded to each field's
// precision and never show NaN or Infinity.
package solver

import "strings"

// Keypad keys understood by Press besides '0'-'9'.
const (
	KeyDecimal = '.'
	KeyClear   = 'C'
	KeyUp      = 'S' // previous field
	KeyDown    = 'B' // next field
)

// Caption is the label of the clear key.
type Caption string

const (
	// CaptionClear means the next clear resets only the selected field.
	CaptionClear Caption = "C"
	// CaptionClearAll means the next clear resets the whole form.
	CaptionClearAll Caption = "CA"
)

func captionFor(raw string) Caption {
	if isZero(raw) {
		return CaptionClearAll
	}
	return CaptionClear
}

// EditState is the transient keypad state.
type EditState struct {
	Selected       int // 1-based field index, 0 when nothing is selected
	DecimalEnabled bool
	DecimalPlaced  bool // a '.' was typed during the current edit
	Caption        Caption
}

// Value is a field's raw input together with its numeric reading.
type Value struct {
	Raw string
}

// Number is the numeric reading of Raw, 0 when it does not parse.
func (v Value) Number() float64 {
	n, _ := Parse(v.Raw)
	return n
}

// Valid reports whether Raw holds a number.
func (v Value) Valid() bool {
	_, ok := Parse(v.Raw)
	return ok
}

// Result reports what a key press did.
type Result struct {
	State   EditState
	Changed []FieldID // fields whose value was written, edited field first
	Reset   bool      // every field was cleared
}

// Solver holds the values of one FieldSet and the keypad state. It is not
// safe for concurrent use; a calculator session owns exactly one.
type Solver struct {
	set    *FieldSet
	values map[FieldID]string
	state  EditState
}

// New returns a Solver with every field at "0" and nothing selected.
func New(set *FieldSet) *Solver {
	s := &Solver{set: set, values: make(map[FieldID]string, len(set.fields))}
	for _, f := range set.fields {
		s.values[f.ID] = "0"
	}
	s.state.Caption = CaptionClearAll
	return s
}

// Set returns the active FieldSet.
func (s *Solver) Set() *FieldSet { return s.set }

// State returns the current keypad state.
func (s *Solver) State() EditState { return s.state }

// Value returns the current value of id. Fields outside the set read "0".
func (s *Solver) Value(id FieldID) Value {
	raw, ok := s.values[id]
	if !ok {
		return Value{Raw: "0"}
	}
	return Value{Raw: raw}
}

// Values returns a copy of every field value.
func (s *Solver) Values() map[FieldID]string {
	out := make(map[FieldID]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Load replaces field values, typically from persisted state. Ids outside
// the set are ignored and unparseable values load as "0". No dependents are
// recomputed.
func (s *Solver) Load(values map[FieldID]string) {
	for id, raw := range values {
		if _, ok := s.values[id]; ok {
			s.values[id] = Sanitize(raw)
		}
	}
	if f, ok := s.set.At(s.state.Selected); ok {
		s.state.Caption = captionFor(s.values[f.ID])
	}
}

// Select moves the selection by direction (-1, 0 or +1) from index and
// clamps to the editable range; moving before the first field stays on the
// first field rather than deselecting.
func (s *Solver) Select(index, direction int) EditState {
	next := index + direction
	if next < 1 {
		next = 1
	}
	if last := s.set.Editable(); next > last {
		next = last
	}
	f, _ := s.set.At(next)
	s.state = EditState{
		Selected:       next,
		DecimalEnabled: f.Decimal,
		Caption:        captionFor(s.values[f.ID]),
	}
	return s.state
}

// Press applies one keypad key to the selected field and recomputes the
// dependents of that field under m.
func (s *Solver) Press(key rune, m Modes) Result {
	switch key {
	case KeyUp:
		s.Select(s.state.Selected, -1)
		return Result{State: s.state}
	case KeyDown:
		s.Select(s.state.Selected, +1)
		return Result{State: s.state}
	}

	f, ok := s.set.At(s.state.Selected)
	if !ok {
		return Result{State: s.state}
	}
	raw := s.values[f.ID]
	switch {
	case key >= '0' && key <= '9':
		if raw == "0" || !(Value{Raw: raw}).Valid() {
			raw = string(key)
		} else {
			raw += string(key)
		}
	case key == KeyDecimal:
		if !f.Decimal || strings.Contains(raw, ".") {
			return Result{State: s.state}
		}
		if !(Value{Raw: raw}).Valid() {
			raw = "0"
		}
		raw += "."
		s.state.DecimalPlaced = true
	case key == KeyClear:
		if isZero(raw) {
			return s.reset()
		}
		raw = "0"
		s.state.DecimalPlaced = false
	default:
		return Result{State: s.state}
	}

	s.values[f.ID] = raw
	s.state.Caption = captionFor(raw)
	changed := []FieldID{f.ID}
	if r, ok := s.set.rules[f.ID]; ok {
		e := &eval{set: s.set, values: s.values, modes: m}
		r(e)
		changed = appendUnique(changed, e.changed...)
	}
	return Result{State: s.state, Changed: changed}
}

// Reset sets every field of the set to "0" and keeps the selection.
func (s *Solver) Reset() Result { return s.reset() }

func (s *Solver) reset() Result {
	changed := make([]FieldID, 0, len(s.set.fields))
	for _, f := range s.set.fields {
		s.values[f.ID] = "0"
		changed = append(changed, f.ID)
	}
	s.state.DecimalPlaced = false
	s.state.Caption = CaptionClearAll
	return Result{State: s.state, Changed: changed, Reset: true}
}

func appendUnique(dst []FieldID, ids ...FieldID) []FieldID {
	for _, id := range ids {
		seen := false
		for _, d := range dst {
			if d == id {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, id)
		}
	}
	return dst
}
