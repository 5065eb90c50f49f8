package locate

// State is the lifecycle state of the locate control.
type State int

const (
	// Disabled: tracking is off.
	Disabled State = iota
	// Locating: tracking is on and no fix has arrived yet.
	Locating
	// Enabled: a fix is shown and the view is left alone.
	Enabled
	// Following: a fix is shown and the view follows it.
	Following
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "DISABLED"
	case Locating:
		return "LOCATING"
	case Enabled:
		return "ENABLED"
	case Following:
		return "FOLLOWING"
	default:
		return "UNKNOWN"
	}
}

type input int

const (
	inputStart      input = iota // Start with no fix yet
	inputResume                  // Start replaying the cached fix
	inputFix                     // position update from the provider
	inputStop                    // Stop
	inputStopFollow              // StopFollow or a map drag
)

type target func(following bool) State

func to(s State) target {
	return func(bool) State { return s }
}

func located(following bool) State {
	if following {
		return Following
	}
	return Enabled
}

// transitions lists every state change; a missing entry keeps the state.
// A fix never leaves Disabled and StopFollow never invents a fix.
var transitions = map[State]map[input]target{
	Disabled: {
		inputStart:  to(Locating),
		inputResume: located,
	},
	Locating: {
		inputResume: located,
		inputFix:    located,
		inputStop:   to(Disabled),
	},
	Enabled: {
		inputResume:     located,
		inputFix:        located,
		inputStop:       to(Disabled),
		inputStopFollow: to(Enabled),
	},
	Following: {
		inputResume:     located,
		inputFix:        located,
		inputStop:       to(Disabled),
		inputStopFollow: to(Enabled),
	},
}

func next(s State, in input, following bool) State {
	if t, ok := transitions[s][in]; ok {
		return t(following)
	}
	return s
}
