package timeline

// State is the interpolation state of one entity at one axis point.
type State int

const (
	// StateBeforeFirstLap applies to drivers before their first recorded lap.
	// Progress is extrapolated backwards at the first measured pace.
	StateBeforeFirstLap State = iota
	// StateInterpolating linearly interpolates between bracketing laps.
	StateInterpolating
	// StateFrozen applies to stopped entities once their last lap is reached.
	// Progress stays at the completed lap count for the rest of the axis.
	StateFrozen
)

func (s State) String() string {
	switch s {
	case StateBeforeFirstLap:
		return "before_first_lap"
	case StateInterpolating:
		return "interpolating"
	case StateFrozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// cursor walks one entity's extended series along an ascending axis.
// The bracket index only moves forward, so a full walk is linear in the
// length of the axis plus the entity's real lap count.
type cursor struct {
	extended  Extension
	firstTime float64
	lastTime  float64
	firstPace float64
	laps      int
	stopped   bool
	backfill  bool
	tolerance float64

	bracket int
	state   State
}

func newCursor(s Series, extended Extension, mode Mode, tolerance float64) *cursor {
	return &cursor{
		extended:  extended,
		firstTime: s.FirstTime(),
		lastTime:  s.LastTime(),
		firstPace: s.FirstPace(),
		laps:      s.LapCount(),
		stopped:   s.Stopped && mode == ModeTeam,
		backfill:  mode == ModeDriver,
		tolerance: tolerance,
		state:     StateInterpolating,
	}
}

// transition moves the state machine for axis time t. FROZEN is terminal.
func (c *cursor) transition(t float64) {
	switch {
	case c.state == StateFrozen:
	case c.stopped && (t > c.lastTime || floatsClose(t, c.lastTime, c.tolerance)):
		c.state = StateFrozen
	case c.backfill && t < c.firstTime && !floatsClose(t, c.firstTime, c.tolerance):
		c.state = StateBeforeFirstLap
	default:
		c.state = StateInterpolating
	}
}

// advance moves the bracket so that extended.At(bracket+1) >= t where possible.
func (c *cursor) advance(t float64) {
	c.bracket = c.extended.Bracket(t, c.bracket)
}

// step returns the progress at axis time t. Calls must use non-decreasing t.
func (c *cursor) step(t float64) float64 {
	c.advance(t)
	c.transition(t)

	switch c.state {
	case StateFrozen:
		return float64(c.laps)
	case StateBeforeFirstLap:
		if c.firstPace <= 0 {
			return 0
		}

		return t / c.firstPace
	default:
		return c.interpolate(t)
	}
}

func (c *cursor) interpolate(t float64) float64 {
	if c.extended.Len() < 2 {
		return 0
	}

	lo := c.extended.At(c.bracket)
	hi := c.extended.At(c.bracket + 1)

	return float64(c.bracket) + (t-lo)/(hi-lo)
}
