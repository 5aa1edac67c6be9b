package engine

import (
	"errors"
	"testing"
)

func activeState() State {
	s := NewState("ABC123", 250)
	_, s, _ = Apply(s, Command{Type: CmdJoin, Conn: "p1"})
	_, s, _ = Apply(s, Command{Type: CmdJoin, Conn: "p2"})
	return s
}

func TestJoin_SecondPlayerStartsGame(t *testing.T) {
	s := NewState("ABC123", 250)

	events, s, err := Apply(s, Command{Type: CmdJoin, Conn: "p1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Status != StatusWaiting || s.CurrentTurn != "p1" {
		t.Fatalf("after first join: status=%v turn=%v", s.Status, s.CurrentTurn)
	}
	if ContainsEvent(events, EvtGameStarted) {
		t.Fatalf("game must not start with one player")
	}

	events, s, err = Apply(s, Command{Type: CmdJoin, Conn: "p2"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !ContainsEvent(events, EvtGameStarted) {
		t.Fatalf("expected EvtGameStarted on second join")
	}
	if s.Status != StatusActive {
		t.Fatalf("want active, got %v", s.Status)
	}
	if s.CurrentTurn != s.Players[0] {
		t.Fatalf("player 1 must open: turn=%v players=%v", s.CurrentTurn, s.Players)
	}
	if s.Timers["p1"] != 250 || s.Timers["p2"] != 250 {
		t.Fatalf("timers not initialized: %v", s.Timers)
	}
}

func TestJoin_ThirdPlayerRejected(t *testing.T) {
	s := activeState()
	_, _, err := Apply(s, Command{Type: CmdJoin, Conn: "p3"})
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("want ErrRoomFull, got %v", err)
	}
}

func TestAction_FlipsTurnAndRecordsTimer(t *testing.T) {
	cases := []struct {
		name   string
		action ActionKind
	}{
		{"skip", ActionSkip},
		{"wrong answer", ActionWrongAnswer},
		{"timeout", ActionTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := activeState()
			events, next, err := Apply(s, Command{Type: CmdAction, Conn: "p1", Action: tc.action, Seconds: 240})
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if next.CurrentTurn != "p2" {
				t.Fatalf("want turn p2, got %v", next.CurrentTurn)
			}
			if next.Timers["p1"] != 240 {
				t.Fatalf("want timer 240, got %d", next.Timers["p1"])
			}
			if len(events) != 1 || events[0].Type != EvtTurnChanged {
				t.Fatalf("want exactly one TurnChanged, got %+v", events)
			}
		})
	}
}

func TestAction_FromNonTurnHolderIsNoOp(t *testing.T) {
	s := activeState()
	_, next, err := Apply(s, Command{Type: CmdAction, Conn: "p2", Action: ActionSkip, Seconds: 200})
	if !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("want ErrWrongTurn, got %v", err)
	}
	if next.CurrentTurn != "p1" || next.Timers["p2"] != 250 {
		t.Fatalf("state mutated on rejected action: turn=%v timers=%v", next.CurrentTurn, next.Timers)
	}
}

func TestAction_RejectsOutOfRangeTime(t *testing.T) {
	cases := []struct {
		name    string
		seconds int
	}{
		{"negative", -1},
		{"increasing", 260},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := activeState()
			_, next, err := Apply(s, Command{Type: CmdAction, Conn: "p1", Action: ActionSkip, Seconds: tc.seconds})
			if !errors.Is(err, ErrBadPayload) {
				t.Fatalf("want ErrBadPayload, got %v", err)
			}
			if next.CurrentTurn != "p1" {
				t.Fatalf("turn must not flip on rejected payload")
			}
		})
	}
}

func TestAction_CurrentTurnAlwaysAMember(t *testing.T) {
	s := activeState()
	conns := []string{"p1", "p2", "p1", "p2"}
	times := []int{240, 230, 220, 210}
	for i, conn := range conns {
		var err error
		_, s, err = Apply(s, Command{Type: CmdAction, Conn: conn, Action: ActionSkip, Seconds: times[i]})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !s.IsMember(s.CurrentTurn) {
			t.Fatalf("step %d: CurrentTurn %q not in players %v", i, s.CurrentTurn, s.Players)
		}
	}
}

func TestAction_BothTimersZeroFinishesRoom(t *testing.T) {
	s := activeState()
	_, s, err := Apply(s, Command{Type: CmdAction, Conn: "p1", Action: ActionTimeout, Seconds: 0})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	events, s, err := Apply(s, Command{Type: CmdAction, Conn: "p2", Action: ActionTimeout, Seconds: 0})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Status != StatusFinished {
		t.Fatalf("want finished, got %v", s.Status)
	}
	if !ContainsEvent(events, EvtGameFinished) {
		t.Fatalf("expected EvtGameFinished")
	}

	// Terminal: no further transitions.
	_, _, err = Apply(s, Command{Type: CmdAction, Conn: "p1", Action: ActionSkip, Seconds: 0})
	if !errors.Is(err, ErrRoomInactive) {
		t.Fatalf("want ErrRoomInactive after finish, got %v", err)
	}
}

func TestTimerSync_OverwritesWithoutTurnChange(t *testing.T) {
	s := activeState()
	events, s, err := Apply(s, Command{Type: CmdTimerSync, Conn: "p2", Seconds: 245})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("timer sync must not broadcast, got %+v", events)
	}
	if s.Timers["p2"] != 245 || s.CurrentTurn != "p1" {
		t.Fatalf("timers=%v turn=%v", s.Timers, s.CurrentTurn)
	}

	// Heartbeats may never increase the budget.
	_, s, err = Apply(s, Command{Type: CmdTimerSync, Conn: "p2", Seconds: 250})
	if !errors.Is(err, ErrBadPayload) {
		t.Fatalf("want ErrBadPayload on increasing sync, got %v", err)
	}
	if s.Timers["p2"] != 245 {
		t.Fatalf("rejected sync mutated timer: %v", s.Timers)
	}
}

func TestMove_CorrectAnswerKeepsTurn(t *testing.T) {
	s := activeState()
	events, s, err := Apply(s, Command{Type: CmdMove, Conn: "p1", Letter: "A", Answer: "amsterdam", Correct: true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.CurrentTurn != "p1" {
		t.Fatalf("correct answer must not yield the turn")
	}
	if s.Scores["p1"] != 1 {
		t.Fatalf("want score 1, got %d", s.Scores["p1"])
	}
	if !ContainsEvent(events, EvtMoveRelayed) {
		t.Fatalf("expected EvtMoveRelayed")
	}
}

func TestFinish_BothDoneFinishesRoom(t *testing.T) {
	s := activeState()
	events, s, err := Apply(s, Command{Type: CmdFinish, Conn: "p1", Score: 20})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Status != StatusPlayerFinished {
		t.Fatalf("one player done: status=%v events=%+v", s.Status, events)
	}
	if s.CurrentTurn != "p2" {
		t.Fatalf("finisher must hand over the turn, got %v", s.CurrentTurn)
	}

	events, s, err = Apply(s, Command{Type: CmdFinish, Conn: "p2", Score: 18})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Status != StatusFinished || !ContainsEvent(events, EvtGameFinished) {
		t.Fatalf("both done: status=%v events=%+v", s.Status, events)
	}
	if s.Scores["p1"] != 20 || s.Scores["p2"] != 18 {
		t.Fatalf("final scores: %v", s.Scores)
	}
}

func TestFinish_TurnHolderYieldsTurn(t *testing.T) {
	s := activeState()

	events, s, err := Apply(s, Command{Type: CmdFinish, Conn: "p1", Score: 26})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.CurrentTurn != "p2" || !ContainsEvent(events, EvtTurnChanged) {
		t.Fatalf("finisher kept the turn: turn=%v events=%+v", s.CurrentTurn, events)
	}

	// The opponent plays on; the finished player never gets the turn back.
	_, s, err = Apply(s, Command{Type: CmdAction, Conn: "p2", Action: ActionSkip, Seconds: 240})
	if err != nil {
		t.Fatalf("opponent action rejected: %v", err)
	}
	if s.CurrentTurn != "p2" {
		t.Fatalf("turn went back to a finished player: %v", s.CurrentTurn)
	}
}

func TestAction_LastLivePlayerTimeoutFinishes(t *testing.T) {
	s := activeState()
	_, s, _ = Apply(s, Command{Type: CmdFinish, Conn: "p1", Score: 26})

	events, s, err := Apply(s, Command{Type: CmdAction, Conn: "p2", Action: ActionTimeout, Seconds: 0})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Status != StatusFinished || !ContainsEvent(events, EvtGameFinished) {
		t.Fatalf("want finished, got status=%v events=%+v", s.Status, events)
	}
}

func TestJoin_MidGameRejected(t *testing.T) {
	s := activeState()
	_, s, _ = Apply(s, Command{Type: CmdLeave, Conn: "p2"})

	_, _, err := Apply(s, Command{Type: CmdJoin, Conn: "p3"})
	if !errors.Is(err, ErrRoomInactive) {
		t.Fatalf("want ErrRoomInactive, got %v", err)
	}
}

func TestLeave_TurnHolderReassignsTurn(t *testing.T) {
	s := activeState()
	events, s, err := Apply(s, Command{Type: CmdLeave, Conn: "p1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.CurrentTurn != "p2" {
		t.Fatalf("want turn p2, got %v", s.CurrentTurn)
	}
	count := 0
	for _, e := range events {
		if e.Type == EvtTurnChanged {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("want exactly one TurnChanged, got %+v", events)
	}
}

func TestLeave_LastMemberEmptiesRoom(t *testing.T) {
	s := NewState("ABC123", 250)
	_, s, _ = Apply(s, Command{Type: CmdJoin, Conn: "p1"})

	events, s, err := Apply(s, Command{Type: CmdLeave, Conn: "p1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(s.Players) != 0 {
		t.Fatalf("players not removed: %v", s.Players)
	}
	if !ContainsEvent(events, EvtRoomEmptied) {
		t.Fatalf("expected EvtRoomEmptied")
	}
	if ContainsEvent(events, EvtTurnChanged) {
		t.Fatalf("no one left to hand the turn to")
	}
}

func TestSeat_SurvivesLeave(t *testing.T) {
	s := activeState()
	_, s, _ = Apply(s, Command{Type: CmdLeave, Conn: "p1"})
	if s.Seat("p1") != 1 || s.Seat("p2") != 2 {
		t.Fatalf("seat assignment lost: p1=%d p2=%d", s.Seat("p1"), s.Seat("p2"))
	}
}
