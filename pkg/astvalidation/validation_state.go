package astvalidation

// ValidationState is the outcome of a validation
type ValidationState int

const (
	UnknownState ValidationState = iota
	Valid
	Invalid
)

func (s ValidationState) String() string {
	switch s {
	case Valid:
		return "Valid"
	case Invalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// State reports Valid when r carries an internal representation and no errors.
// A zero Result is in UnknownState.
func (r Result) State() ValidationState {
	switch {
	case len(r.Errors) != 0:
		return Invalid
	case r.IRep != nil:
		return Valid
	default:
		return UnknownState
	}
}
