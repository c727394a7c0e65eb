package solver

// eval is the scratch context of one recomputation pass. Every put rounds
// the result to the target precision and writes it back as a string, so a
// later formula in the same pass reads the rounded value.
type eval struct {
	set     *FieldSet
	values  map[FieldID]string
	modes   Modes
	changed []FieldID
}

func (e *eval) num(id FieldID) float64 {
	v, _ := Parse(e.values[id])
	return v
}

func (e *eval) put(id FieldID, v float64) {
	f, ok := e.set.Field(id)
	if !ok {
		return
	}
	e.values[id] = Format(v, f.Precision)
	e.changed = append(e.changed, id)
}

func (e *eval) outputs() {
	e.put(CuttingTime, e.set.cuttingTime(e))
	e.put(RemovalRate, e.set.removalRate(e))
}

func onDiameter(e *eval) {
	if e.modes.Lock == LockSpindle {
		e.put(CuttingSpeed, cuttingSpeed(e.num(Diameter), e.num(Spindle)))
		e.put(FeedRate, rateFromRev(e.num(FeedPerRev), e.num(Spindle)))
	} else {
		if e.modes.Speed == SpeedFast {
			e.put(Spindle, spindleFromCutting(e.num(CuttingSpeed), e.num(Diameter)))
		} else {
			e.put(Spindle, spindleFromFeed(e.num(FeedRate), e.num(FeedPerRev)))
		}
		e.put(CuttingSpeed, cuttingSpeed(e.num(Diameter), e.num(Spindle)))
	}
	e.outputs()
}

func onTeeth(e *eval) {
	switch {
	case e.modes.Lock == LockSpindle:
		e.put(FeedPerTooth, toothFromRev(e.num(FeedPerRev), e.num(Teeth)))
		e.put(FeedRate, rateFromRev(e.num(FeedPerRev), e.num(Spindle)))
	case e.modes.Speed == SpeedFast:
		e.put(FeedPerRev, revFromTooth(e.num(FeedPerTooth), e.num(Teeth)))
		e.put(FeedRate, rateFromRev(e.num(FeedPerRev), e.num(Spindle)))
	default:
		e.put(FeedPerRev, revFromRate(e.num(FeedRate), e.num(Spindle)))
		e.put(FeedPerTooth, toothFromRev(e.num(FeedPerRev), e.num(Teeth)))
	}
	e.outputs()
}

func onSpindle(e *eval) {
	e.put(CuttingSpeed, cuttingSpeed(e.num(Diameter), e.num(Spindle)))
	e.put(FeedPerRev, revFromRate(e.num(FeedRate), e.num(Spindle)))
}

func onCuttingSpeed(e *eval) {
	e.put(Spindle, spindleFromCutting(e.num(CuttingSpeed), e.num(Diameter)))
}

func onFeedPerTooth(e *eval) {
	e.put(FeedPerRev, revFromTooth(e.num(FeedPerTooth), e.num(Teeth)))
}

func onFeedPerRev(e *eval) {
	e.put(FeedPerTooth, toothFromRev(e.num(FeedPerRev), e.num(Teeth)))
	e.put(FeedRate, rateFromRev(e.num(FeedPerRev), e.num(Spindle)))
}

func onFeedRate(e *eval) {
	e.put(FeedPerRev, revFromRate(e.num(FeedRate), e.num(Spindle)))
	e.outputs()
}

func onTimeInputs(e *eval) {
	e.put(CuttingTime, e.set.cuttingTime(e))
}

func onRateInputs(e *eval) {
	e.put(RemovalRate, e.set.removalRate(e))
}
