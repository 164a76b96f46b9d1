package workflow

import (
	"fmt"

	"assistant-ai/internal/router"
)

// State is a node of the request graph.
type State int

const (
	StateStart State = iota
	StateRoute
	StateWeather
	StateCheckCache
	StateLoadIndex
	StateIngest
	StateSplit
	StateBuildIndex
	StateRetrieve
	StateGenerate
	StateUnknown
	StateEnd
)

var stateNames = [...]string{
	StateStart:      "START",
	StateRoute:      "ROUTE",
	StateWeather:    "WEATHER",
	StateCheckCache: "CHECK_CACHE",
	StateLoadIndex:  "LOAD_INDEX",
	StateIngest:     "INGEST",
	StateSplit:      "SPLIT",
	StateBuildIndex: "BUILD_INDEX",
	StateRetrieve:   "RETRIEVE",
	StateGenerate:   "GENERATE",
	StateUnknown:    "UNKNOWN",
	StateEnd:        "END",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether s produces the result. Its only successor is END.
func (s State) Terminal() bool {
	return s == StateWeather || s == StateUnknown || s == StateGenerate
}

// Transition returns the state that follows s for run. It reads run and
// never modifies it.
func Transition(s State, run *Run) (State, error) {
	switch s {
	case StateStart:
		return StateRoute, nil
	case StateRoute:
		switch {
		case run.Intent == router.IntentWeather:
			return StateWeather, nil
		case run.Intent == router.IntentRAG && run.Request.DocPath != "":
			return StateCheckCache, nil
		default:
			return StateUnknown, nil
		}
	case StateCheckCache:
		if run.Rag == nil {
			return 0, fmt.Errorf("%s reached without document state", s)
		}
		if run.Rag.Validity.Valid {
			return StateLoadIndex, nil
		}
		return StateIngest, nil
	case StateIngest:
		return StateSplit, nil
	case StateSplit:
		return StateBuildIndex, nil
	case StateBuildIndex, StateLoadIndex:
		return StateRetrieve, nil
	case StateRetrieve:
		return StateGenerate, nil
	case StateWeather, StateUnknown, StateGenerate:
		return StateEnd, nil
	}
	return 0, fmt.Errorf("no transition from %s", s)
}
