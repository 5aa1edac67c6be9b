// Package engine holds the authoritative room state machine: membership,
// turn ownership, per-player time budgets and scores. It is a pure reducer;
// the room actor owns a State value and feeds it Commands.
package engine

type Status string

const (
	StatusWaiting        Status = "waiting"
	StatusActive         Status = "active"
	StatusPlayerFinished Status = "playerFinished"
	StatusFinished       Status = "finished"
)

type ActionKind string

const (
	ActionSkip        ActionKind = "skip"
	ActionWrongAnswer ActionKind = "wrongAnswer"
	ActionTimeout     ActionKind = "timeout"
)

// State is the full authoritative state of one room.
//
// Players is the ordered member list (index 0 -> player 1). Seats keeps the
// original seat assignment even after a member disconnects, so final scores
// can still be attributed when the game ends.
type State struct {
	Code        string
	Status      Status
	Players     []string
	Seats       []string
	CurrentTurn string
	Timers      map[string]int
	Scores      map[string]int
	Done        map[string]bool
	InitialTime int
}

func NewState(code string, initialTime int) State {
	return State{
		Code:        code,
		Status:      StatusWaiting,
		Players:     []string{},
		Seats:       []string{},
		Timers:      map[string]int{},
		Scores:      map[string]int{},
		Done:        map[string]bool{},
		InitialTime: initialTime,
	}
}

func (s State) IsMember(conn string) bool {
	for _, p := range s.Players {
		if p == conn {
			return true
		}
	}
	return false
}

// Other returns the member of a 2-player room that is not conn.
func (s State) Other(conn string) (string, bool) {
	for _, p := range s.Players {
		if p != conn {
			return p, true
		}
	}
	return "", false
}

// Seat returns the 1-based player number assigned to conn, or 0.
func (s State) Seat(conn string) int {
	for i, p := range s.Seats {
		if p == conn {
			return i + 1
		}
	}
	return 0
}
