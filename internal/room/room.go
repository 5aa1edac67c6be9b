// Package room runs one goroutine per room. The goroutine exclusively owns
// the engine state, so no locking is needed; all mutation flows through the
// inbox one message at a time.
package room

import (
	"context"

	"github.com/alphaduel/alphaduel-backend/internal/engine"
	"github.com/alphaduel/alphaduel-backend/pkg/wire"
	"go.uber.org/zap"
)

type Msg interface{ isRoomMsg() }

// Join registers a connection and applies the membership change. Reply
// carries nil on success or engine.ErrRoomFull.
type Join struct {
	ConnID string
	Outbox chan wire.ServerMessage
	Reply  chan error
}

func (Join) isRoomMsg() {}

type Leave struct{ ConnID string }

func (Leave) isRoomMsg() {}

type FromClient struct {
	Cmd engine.Command
}

func (FromClient) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// View reflects internal state without data races; test-only.
type View struct {
	NumClients int
	State      engine.State
}

// ScoreLog receives one final-score entry when a game ends.
type ScoreLog interface {
	Append(ctx context.Context, player1Score, player2Score int) error
}

type Room struct {
	code    string
	inbox   chan Msg
	state   engine.State
	clients map[string]chan wire.ServerMessage
	scores  ScoreLog
	onEmpty func(code string)
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewRoom(parent context.Context, code string, initialTime int, scores ScoreLog, onEmpty func(string), log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		code:    code,
		inbox:   make(chan Msg, 64),
		state:   engine.NewState(code, initialTime),
		clients: make(map[string]chan wire.ServerMessage),
		scores:  scores,
		onEmpty: onEmpty,
		log:     log.With(zap.String("room", code)),
		ctx:     ctx,
		cancel:  cancel,
	}

	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) Code() string { return r.code }

// Done closes when the actor has stopped; messages still in the inbox will
// never be answered after that.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)

			case Leave:
				r.handleLeave(msg.ConnID)

			case FromClient:
				r.handleCommand(msg.Cmd)

			case GetState:
				msg.Reply <- View{NumClients: len(r.clients), State: r.state}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	events, newState, err := engine.Apply(r.state, engine.Command{Type: engine.CmdJoin, Conn: msg.ConnID})
	if err != nil {
		msg.Reply <- err
		return
	}
	r.state = newState
	r.clients[msg.ConnID] = msg.Outbox
	msg.Reply <- nil
	r.dispatch(engine.Command{Type: engine.CmdJoin, Conn: msg.ConnID}, events)
}

func (r *Room) handleLeave(connID string) {
	delete(r.clients, connID)

	events, newState, err := engine.Apply(r.state, engine.Command{Type: engine.CmdLeave, Conn: connID})
	if err != nil {
		// Never a member (failed join); nothing to clean up.
		return
	}
	r.state = newState
	r.dispatch(engine.Command{Type: engine.CmdLeave, Conn: connID}, events)
}

func (r *Room) handleCommand(cmd engine.Command) {
	events, newState, err := engine.Apply(r.state, cmd)
	if err != nil {
		// Admission-control rejections are dropped on purpose: reporting
		// them would leak turn state to a stale or hostile client.
		r.log.Debug("command dropped", zap.String("cmd", string(cmd.Type)), zap.Error(err))
		return
	}
	r.state = newState
	r.dispatch(cmd, events)
}

// dispatch maps engine events onto wire messages.
func (r *Room) dispatch(cmd engine.Command, events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtPlayerJoined:
			if ev.Seat == 1 {
				r.sendTo(ev.Conn, wire.ServerMessage{
					Type:        wire.MsgRoomCreated,
					Room:        r.code,
					Player:      1,
					InitialTime: r.state.InitialTime,
				})
				break
			}
			r.broadcast(wire.ServerMessage{
				Type:        wire.MsgRoomJoined,
				Room:        r.code,
				Players:     append([]string(nil), r.state.Players...),
				CurrentTurn: r.state.CurrentTurn,
				NewPlayer:   ev.Seat,
				InitialTime: r.state.InitialTime,
			})

		case engine.EvtGameStarted:
			r.log.Info("game started", zap.Strings("players", r.state.Players))
			r.broadcast(wire.ServerMessage{
				Type:        wire.MsgStartGame,
				Room:        r.code,
				CurrentTurn: r.state.CurrentTurn,
				Timers:      copyTimers(r.state.Timers),
				Players:     append([]string(nil), r.state.Players...),
			})

		case engine.EvtTurnChanged:
			r.broadcast(wire.ServerMessage{
				Type:        wire.MsgTurnChanged,
				CurrentTurn: r.state.CurrentTurn,
				Timers:      copyTimers(r.state.Timers),
			})

		case engine.EvtMoveRelayed:
			// Informational relay to the opponent only, socket.to(room) style.
			r.broadcastExcept(ev.Conn, wire.ServerMessage{
				Type:      wire.MsgPlayerMove,
				Room:      r.code,
				PlayerID:  ev.Seat,
				Letter:    cmd.Letter,
				Answer:    cmd.Answer,
				IsCorrect: cmd.Correct,
			})

		case engine.EvtGameFinished:
			r.finishGame()

		case engine.EvtRoomEmptied:
			r.log.Info("room emptied")
			if r.onEmpty != nil {
				r.onEmpty(r.code)
			}
			r.shutdown()
			return
		}
	}
}

func (r *Room) finishGame() {
	scores := make(map[string]int, len(r.state.Scores))
	for conn, score := range r.state.Scores {
		scores[conn] = score
	}
	r.broadcast(wire.ServerMessage{Type: wire.MsgGameOver, Room: r.code, Scores: scores})

	if r.scores == nil || len(r.state.Seats) < 2 {
		return
	}
	p1 := r.state.Scores[r.state.Seats[0]]
	p2 := r.state.Scores[r.state.Seats[1]]
	// Best effort; a lost leaderboard row must not take the room down.
	go func() {
		if err := r.scores.Append(context.Background(), p1, p2); err != nil {
			r.log.Warn("leaderboard append failed", zap.Error(err))
		}
	}()
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) sendTo(connID string, msg wire.ServerMessage) {
	ch, ok := r.clients[connID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		close(ch)
		delete(r.clients, connID)
	}
}

func (r *Room) broadcast(msg wire.ServerMessage) {
	for id, ch := range r.clients {
		select {
		case ch <- msg:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) broadcastExcept(connID string, msg wire.ServerMessage) {
	for id, ch := range r.clients {
		if id == connID {
			continue
		}
		select {
		case ch <- msg:
		default:
			close(ch)
			delete(r.clients, id)
		}
	}
}

func copyTimers(timers map[string]int) map[string]int {
	out := make(map[string]int, len(timers))
	for k, v := range timers {
		out[k] = v
	}
	return out
}
