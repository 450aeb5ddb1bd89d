// ABOUTME: Pipeline states and state change results
// ABOUTME: Mirrors the Null/Ready/Paused/Playing lifecycle of a media pipeline
package media

// State is the lifecycle state of a pipeline
type State int

const (
	// VoidPending means no transition is in progress
	VoidPending State = iota
	Null
	Ready
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case VoidPending:
		return "VOID_PENDING"
	case Null:
		return "NULL"
	case Ready:
		return "READY"
	case Paused:
		return "PAUSED"
	case Playing:
		return "PLAYING"
	default:
		return "UNKNOWN"
	}
}

// StateChangeReturn is the immediate result of SetState
type StateChangeReturn int

const (
	StateChangeFailure StateChangeReturn = iota
	StateChangeSuccess
	// StateChangeAsync means the transition completes later on another goroutine
	StateChangeAsync
)

func (r StateChangeReturn) String() string {
	switch r {
	case StateChangeFailure:
		return "FAILURE"
	case StateChangeSuccess:
		return "SUCCESS"
	case StateChangeAsync:
		return "ASYNC"
	default:
		return "UNKNOWN"
	}
}

// step returns the state one transition from cur toward target
func step(cur, target State) State {
	switch {
	case target > cur:
		return cur + 1
	case target < cur:
		return cur - 1
	default:
		return cur
	}
}
