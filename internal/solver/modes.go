package solver

import "strings"

// Units is the measurement system, persisted under "user-medida".
type Units string

const (
	Metric   Units = "mt"
	Imperial Units = "im"
)

// ParseUnits maps a stored or user-supplied value to Units, falling back to Metric.
func ParseUnits(s string) Units {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "im", "imperial", "in", "inch":
		return Imperial
	}
	return Metric
}

// SpeedMode selects how RPM and feed per revolution are re-solved when the
// diameter or tooth count changes under LockFeed. Persisted under
// "user-velocidad".
type SpeedMode string

const (
	// SpeedNormal solves N from vf/fn and fn from vf/N.
	SpeedNormal SpeedMode = "fn"
	// SpeedFast solves N from D and Vc and fn from fz·Z.
	SpeedFast SpeedMode = "n"
)

// ParseSpeedMode accepts the persisted codes and the names "normal"/"fast".
func ParseSpeedMode(s string) SpeedMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "fast":
		return SpeedFast
	}
	return SpeedNormal
}

func (m SpeedMode) Name() string {
	if m == SpeedFast {
		return "fast"
	}
	return "normal"
}

// Lock decides which variable is held when D or Z change.
type Lock string

const (
	// LockFeed re-solves N (or fn) from the feed side.
	LockFeed Lock = "vf"
	// LockSpindle holds N (or fn) and recomputes Vc and vf around it.
	LockSpindle Lock = "n"
)

func ParseLock(s string) Lock {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "spindle", "rpm":
		return LockSpindle
	}
	return LockFeed
}

func (l Lock) Name() string {
	if l == LockSpindle {
		return "spindle"
	}
	return "feed"
}

// Modes carries the two solving switches into every recomputation.
type Modes struct {
	Lock  Lock
	Speed SpeedMode
}

// DefaultModes is LockFeed with SpeedNormal.
func DefaultModes() Modes {
	return Modes{Lock: LockFeed, Speed: SpeedNormal}
}
