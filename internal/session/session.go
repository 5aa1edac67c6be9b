// Package session is the client-side mirror of a game: the local letter
// queue, score and countdown for one player. It holds no authoritative
// state; the server's broadcasts always win.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alphaduel/alphaduel-backend/internal/questions"
	"github.com/alphaduel/alphaduel-backend/pkg/wire"
	"github.com/jonboulle/clockwork"
)

// Emitter carries outbound client messages to the server.
type Emitter interface {
	Send(msg wire.ClientMessage)
}

var alphabet = strings.Split("ABCDEFGHIJKLMNOPQRSTUVWXYZ", "")

// heartbeat cadence for updateTimer, in ticks (seconds).
const heartbeatEvery = 5

type Session struct {
	mu    sync.Mutex
	emit  Emitter
	clock clockwork.Clock
	lang  string

	room        string
	seat        int // 1-based player number, 0 until assigned
	myID        string
	currentTurn string

	set      questions.Set
	queue    []string
	score    int
	oppScore int
	timeLeft int
	ticks    int

	timedOut bool
	done     bool
	over     bool
}

func New(emit Emitter, clock clockwork.Clock, lang string) *Session {
	return &Session{
		emit:  emit,
		clock: clock,
		lang:  lang,
		queue: append([]string(nil), alphabet...),
	}
}

// SetQuestions installs this player's question set and resets the queue.
func (s *Session) SetQuestions(set questions.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = set
	s.queue = append([]string(nil), alphabet...)
}

func (s *Session) CreateRoom() {
	s.emit.Send(wire.ClientMessage{Type: wire.MsgCreateRoom})
}

func (s *Session) JoinRoom(code string) {
	s.emit.Send(wire.ClientMessage{Type: wire.MsgJoinRoom, Room: code})
}

func (s *Session) HandleRoomCreated(msg wire.ServerMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = msg.Room
	s.seat = msg.Player
	s.timeLeft = msg.InitialTime
}

func (s *Session) HandleRoomJoined(msg wire.ServerMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room != "" {
		// We created this room; the broadcast is about the other player.
		return
	}
	s.room = msg.Room
	s.seat = msg.NewPlayer
	s.timeLeft = msg.InitialTime
}

func (s *Session) HandleStartGame(msg wire.ServerMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seat >= 1 && len(msg.Players) >= s.seat {
		s.myID = msg.Players[s.seat-1]
	}
	s.currentTurn = msg.CurrentTurn
	if t, ok := msg.Timers[s.myID]; ok {
		s.timeLeft = t
	}
}

func (s *Session) HandleTurnChanged(msg wire.ServerMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTurn = msg.CurrentTurn
	if t, ok := msg.Timers[s.myID]; ok {
		s.timeLeft = t
	}
	// Losing the turn re-arms the timeout; if the turn ever comes back with
	// nothing on the clock it must be handed over again.
	if !s.myTurn() {
		s.timedOut = false
	}
}

// HandleOpponentMove tracks the opponent's score from relayed moves.
func (s *Session) HandleOpponentMove(msg wire.ServerMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.PlayerID != s.seat && msg.IsCorrect {
		s.oppScore++
	}
}

func (s *Session) HandleGameOver(msg wire.ServerMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.over = true
}

// SubmitAnswer checks text against the current question. The first return
// reports correctness, the second whether the submission was accepted at
// all (it is ignored off-turn, empty, or with no question loaded).
func (s *Session) SubmitAnswer(text string) (correct bool, accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over || s.done || !s.myTurn() {
		return false, false
	}
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" || len(s.queue) == 0 {
		return false, false
	}
	letter := s.queue[0]
	q, ok := s.set[letter]
	if !ok {
		return false, false
	}

	correct = matches(normalized, q)

	if correct {
		s.score++
		s.queue = s.queue[1:]
	} else {
		// Wrong answers recycle the letter to the back of the queue.
		s.queue = append(s.queue[1:], letter)
	}

	s.emit.Send(wire.ClientMessage{
		Type:      wire.MsgPlayerMove,
		Room:      s.room,
		PlayerID:  s.seat,
		Letter:    letter,
		Answer:    normalized,
		IsCorrect: correct,
	})

	if correct && len(s.queue) == 0 {
		s.done = true
		s.emit.Send(wire.ClientMessage{Type: wire.MsgPlayerDone, Room: s.room, Score: s.score})
		return correct, true
	}
	if !correct {
		// An incorrect answer yields the turn.
		s.sendAction("wrongAnswer", s.timeLeft)
	}
	return correct, true
}

// RequestSkip recycles the current letter and yields the turn.
func (s *Session) RequestSkip() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over || s.done || !s.myTurn() || len(s.queue) == 0 {
		return false
	}
	letter := s.queue[0]
	s.queue = append(s.queue[1:], letter)
	s.sendAction("skip", s.timeLeft)
	return true
}

// Tick advances the local countdown by one second. It only counts down on
// the local player's turn, and the zero-crossing timeout fires exactly once.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over || s.done || !s.myTurn() {
		return
	}
	if s.timeLeft > 0 {
		s.timeLeft--
	}
	if s.timeLeft <= 0 {
		s.timeLeft = 0
		if !s.timedOut {
			s.timedOut = true
			s.sendAction("timeout", 0)
		}
		return
	}

	s.ticks++
	if s.ticks%heartbeatEvery == 0 {
		t := s.timeLeft
		s.emit.Send(wire.ClientMessage{Type: wire.MsgUpdateTimer, Room: s.room, TimeLeft: &t})
	}
}

// Run drives Tick at 1 Hz until the context ends.
func (s *Session) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Tick()
		}
	}
}

// CurrentQuestion returns the active letter and its localized prompt.
func (s *Session) CurrentQuestion() (letter, prompt string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return "", "", false
	}
	letter = s.queue[0]
	q, found := s.set[letter]
	if !found {
		return letter, "", false
	}
	return letter, q.Question[s.lang], true
}

func (s *Session) MyTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.myTurn()
}

func (s *Session) Seat() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seat
}

func (s *Session) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Session) OpponentScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oppScore
}

func (s *Session) TimeLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeLeft
}

func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Session) myTurn() bool {
	return s.myID != "" && s.currentTurn == s.myID
}

func (s *Session) sendAction(action string, currentTime int) {
	t := currentTime
	s.emit.Send(wire.ClientMessage{
		Type:        wire.MsgPlayerAction,
		Room:        s.room,
		Action:      action,
		CurrentTime: &t,
	})
}

// matches accepts an exact match against any accepted answer in any
// language, or a single-word match against one word of a multi-word answer.
func matches(normalized string, q questions.Question) bool {
	for _, accepted := range q.Answer {
		for _, ans := range accepted {
			a := strings.ToLower(strings.TrimSpace(ans))
			if normalized == a {
				return true
			}
			for _, word := range strings.Fields(a) {
				if normalized == word {
					return true
				}
			}
		}
	}
	return false
}
