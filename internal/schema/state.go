package schema

// State is the outcome of a successful convergence.
//
// There are only two values. A dry run that would have changed an object
// reports StateOk, not a third "would change" state.
type State int

const (
	// StateOk means no mutation was performed: the object was already
	// satisfied, or the run was a dry run.
	StateOk State = iota

	// StateChanged means corrective statements ran and the re-check passed.
	StateChanged
)

// String returns "ok" or "changed".
func (s State) String() string {
	switch s {
	case StateOk:
		return "ok"
	case StateChanged:
		return "changed"
	default:
		return "unknown"
	}
}
