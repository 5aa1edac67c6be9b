package engine

import "errors"

var ErrRoomFull = errors.New("room is full")
var ErrRoomInactive = errors.New("room is not active")
var ErrWrongTurn = errors.New("not this player's turn")
var ErrNotMember = errors.New("connection is not in the room")
var ErrBadPayload = errors.New("payload out of range")
var ErrUnsupportedCommand = errors.New("unsupported command")

const MaxPlayers = 2

type CommandType string

const (
	CmdJoin      CommandType = "Join"
	CmdAction    CommandType = "PlayerAction"
	CmdTimerSync CommandType = "TimerSync"
	CmdMove      CommandType = "PlayerMove"
	CmdFinish    CommandType = "PlayerDone"
	CmdLeave     CommandType = "Leave"
)

type Command struct {
	Type    CommandType
	Conn    string
	Action  ActionKind
	Seconds int // reported remaining time for CmdAction / CmdTimerSync
	Letter  string
	Answer  string
	Correct bool
	Score   int
}

type EventType string

const (
	EvtPlayerJoined EventType = "PlayerJoined"
	EvtGameStarted  EventType = "GameStarted"
	EvtTurnChanged  EventType = "TurnChanged"
	EvtMoveRelayed  EventType = "MoveRelayed"
	EvtGameFinished EventType = "GameFinished"
	EvtRoomEmptied  EventType = "RoomEmptied"
)

type Event struct {
	Type EventType
	Conn string
	Seat int
}

// Apply runs one command against the room state. It returns the events to
// broadcast and the new state. On error the input state is returned
// unchanged; the caller decides whether the error is surfaced to the client
// (join failures) or dropped (admission-control rejections).
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdJoin:
		return applyJoin(s, cmd)
	case CmdAction:
		return applyAction(s, cmd)
	case CmdTimerSync:
		return applyTimerSync(s, cmd)
	case CmdMove:
		return applyMove(s, cmd)
	case CmdFinish:
		return applyFinish(s, cmd)
	case CmdLeave:
		return applyLeave(s, cmd)
	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func applyJoin(s State, cmd Command) ([]Event, State, error) {
	if len(s.Players) >= MaxPlayers {
		return nil, s, ErrRoomFull
	}
	// A half-empty active room means someone disconnected mid-game; there is
	// no reconnection, so nobody new gets their seat.
	if s.Status != StatusWaiting {
		return nil, s, ErrRoomInactive
	}

	s.Players = append(s.Players, cmd.Conn)
	s.Seats = append(s.Seats, cmd.Conn)
	s.Timers[cmd.Conn] = s.InitialTime
	s.Scores[cmd.Conn] = 0

	// The creator holds the turn provisionally; once the room fills,
	// seat 1 starts for real.
	if len(s.Players) == 1 {
		s.CurrentTurn = cmd.Conn
	}

	events := []Event{{Type: EvtPlayerJoined, Conn: cmd.Conn, Seat: len(s.Players)}}

	if len(s.Players) == MaxPlayers {
		s.Status = StatusActive
		s.CurrentTurn = s.Players[0]
		events = append(events, Event{Type: EvtGameStarted})
	}
	return events, s, nil
}

func applyAction(s State, cmd Command) ([]Event, State, error) {
	if s.Status != StatusActive && s.Status != StatusPlayerFinished {
		return nil, s, ErrRoomInactive
	}
	if cmd.Conn != s.CurrentTurn {
		return nil, s, ErrWrongTurn
	}
	switch cmd.Action {
	case ActionSkip, ActionWrongAnswer, ActionTimeout:
	default:
		return nil, s, ErrBadPayload
	}
	// Remaining time only counts down; a report above the last known value
	// (or below zero) is a stale or forged payload.
	if cmd.Seconds < 0 || cmd.Seconds > s.Timers[cmd.Conn] {
		return nil, s, ErrBadPayload
	}

	s.Timers[cmd.Conn] = cmd.Seconds

	other, ok := s.Other(cmd.Conn)
	if !ok {
		return nil, s, ErrRoomInactive
	}
	// A finished opponent never takes the turn back; the last live player
	// keeps it until their own queue or clock runs out.
	if !s.Done[other] {
		s.CurrentTurn = other
	}

	events := []Event{{Type: EvtTurnChanged, Conn: s.CurrentTurn}}
	if bothExhausted(s) || (s.Done[other] && s.Timers[cmd.Conn] == 0) {
		s.Status = StatusFinished
		events = append(events, Event{Type: EvtGameFinished})
	}
	return events, s, nil
}

func applyTimerSync(s State, cmd Command) ([]Event, State, error) {
	if s.Status == StatusFinished {
		return nil, s, ErrRoomInactive
	}
	if !s.IsMember(cmd.Conn) {
		return nil, s, ErrNotMember
	}
	if cmd.Seconds < 0 || cmd.Seconds > s.Timers[cmd.Conn] {
		return nil, s, ErrBadPayload
	}
	s.Timers[cmd.Conn] = cmd.Seconds
	return nil, s, nil
}

func applyMove(s State, cmd Command) ([]Event, State, error) {
	if s.Status != StatusActive && s.Status != StatusPlayerFinished {
		return nil, s, ErrRoomInactive
	}
	if !s.IsMember(cmd.Conn) {
		return nil, s, ErrNotMember
	}
	if cmd.Correct {
		s.Scores[cmd.Conn]++
	}
	return []Event{{Type: EvtMoveRelayed, Conn: cmd.Conn, Seat: s.Seat(cmd.Conn)}}, s, nil
}

func applyFinish(s State, cmd Command) ([]Event, State, error) {
	if s.Status != StatusActive && s.Status != StatusPlayerFinished {
		return nil, s, ErrRoomInactive
	}
	if !s.IsMember(cmd.Conn) {
		return nil, s, ErrNotMember
	}
	// The reported final score can only confirm or exceed what the server
	// counted from relayed moves; anything lower is stale.
	if cmd.Score < 0 || cmd.Score < s.Scores[cmd.Conn] {
		return nil, s, ErrBadPayload
	}
	s.Done[cmd.Conn] = true
	s.Scores[cmd.Conn] = cmd.Score

	if allDone(s) {
		s.Status = StatusFinished
		return []Event{{Type: EvtGameFinished}}, s, nil
	}
	s.Status = StatusPlayerFinished

	// The finisher usually still holds the turn (correct answers keep it);
	// hand it to the opponent or they can never play again.
	var events []Event
	if s.CurrentTurn == cmd.Conn {
		if other, ok := s.Other(cmd.Conn); ok {
			s.CurrentTurn = other
			events = append(events, Event{Type: EvtTurnChanged, Conn: other})
		}
	}
	return events, s, nil
}

func applyLeave(s State, cmd Command) ([]Event, State, error) {
	if !s.IsMember(cmd.Conn) {
		return nil, s, ErrNotMember
	}

	remaining := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		if p != cmd.Conn {
			remaining = append(remaining, p)
		}
	}
	s.Players = remaining
	delete(s.Timers, cmd.Conn)

	var events []Event
	if s.CurrentTurn == cmd.Conn && len(s.Players) > 0 {
		s.CurrentTurn = s.Players[0]
		events = append(events, Event{Type: EvtTurnChanged, Conn: s.CurrentTurn})
	}
	if len(s.Players) == 0 {
		events = append(events, Event{Type: EvtRoomEmptied})
	}
	return events, s, nil
}

func bothExhausted(s State) bool {
	if len(s.Players) < MaxPlayers {
		return false
	}
	for _, p := range s.Players {
		if s.Timers[p] > 0 {
			return false
		}
	}
	return true
}

func allDone(s State) bool {
	if len(s.Players) < MaxPlayers {
		return false
	}
	for _, p := range s.Players {
		if !s.Done[p] {
			return false
		}
	}
	return true
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
