// Package ws bridges the websocket wire protocol onto hub and room messages.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alphaduel/alphaduel-backend/internal/engine"
	"github.com/alphaduel/alphaduel-backend/internal/hub"
	"github.com/alphaduel/alphaduel-backend/internal/room"
	"github.com/alphaduel/alphaduel-backend/pkg/wire"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &client{
			id:   uuid.NewString(),
			hub:  h,
			out:  make(chan wire.ServerMessage, 8),
			conn: conn,
		}
		c.log = log.With(zap.String("conn", c.id))
		c.log.Info("client connected")

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go c.writer(writeCtx)

		defer c.leave()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					c.log.Info("client disconnected")
					return
				}
				// Otherwise, just exit (leave in defer):
				return
			}

			var cm wire.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				c.sendError("bad message")
				continue
			}
			c.handle(writeCtx, cm)
		}
	}
}

type client struct {
	id     string
	hub    *hub.Hub
	joined *room.Room
	out    chan wire.ServerMessage // ws-owned; never closed
	conn   *websocket.Conn
	log    *zap.Logger
}

// writer is the sole socket writer; everything outbound funnels through out.
func (c *client) writer(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.out:
			payload, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("marshal failed", zap.Error(err))
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			_ = c.conn.Write(wctx, websocket.MessageText, payload)
			cancel()
		}
	}
}

func (c *client) handle(ctx context.Context, cm wire.ClientMessage) {
	switch cm.Type {
	case wire.MsgCreateRoom:
		c.createRoom(ctx)

	case wire.MsgJoinRoom:
		c.joinRoom(ctx, cm.Room)

	case wire.MsgPlayerAction:
		kind, ok := parseAction(cm.Action)
		if !ok || cm.CurrentTime == nil {
			c.sendError("bad message")
			return
		}
		c.forward(cm.Room, engine.Command{
			Type:    engine.CmdAction,
			Conn:    c.id,
			Action:  kind,
			Seconds: *cm.CurrentTime,
		})

	case wire.MsgUpdateTimer:
		if cm.TimeLeft == nil {
			c.sendError("bad message")
			return
		}
		c.forward(cm.Room, engine.Command{
			Type:    engine.CmdTimerSync,
			Conn:    c.id,
			Seconds: *cm.TimeLeft,
		})

	case wire.MsgPlayerMove:
		c.forward(cm.Room, engine.Command{
			Type:    engine.CmdMove,
			Conn:    c.id,
			Letter:  cm.Letter,
			Answer:  cm.Answer,
			Correct: cm.IsCorrect,
		})

	case wire.MsgPlayerDone:
		c.forward(cm.Room, engine.Command{
			Type:  engine.CmdFinish,
			Conn:  c.id,
			Score: cm.Score,
		})

	default:
		c.sendError("bad message")
	}
}

func (c *client) createRoom(ctx context.Context) {
	if c.joined != nil {
		c.sendError("already in a room")
		return
	}
	reply := make(chan *room.Room, 1)
	c.hub.Inbox() <- hub.CreateRoom{Reply: reply}
	rm := <-reply
	if rm == nil {
		c.sendError("failed to create room")
		return
	}
	c.join(ctx, rm)
}

func (c *client) joinRoom(ctx context.Context, code string) {
	if c.joined != nil {
		c.sendError("already in a room")
		return
	}
	if code == "" {
		c.sendError("bad message")
		return
	}
	reply := make(chan *room.Room, 1)
	c.hub.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
	rm := <-reply
	if rm == nil {
		c.sendError("Room does not exist.")
		return
	}
	c.join(ctx, rm)
}

// join hands the room a dedicated outbox and pumps it into the ws-owned out
// channel. The room closes the outbox when it drops or shuts down; the pump
// exits and out stays safe to send on from this side.
func (c *client) join(ctx context.Context, rm *room.Room) {
	roomOut := make(chan wire.ServerMessage, 8)
	reply := make(chan error, 1)
	rm.Inbox() <- room.Join{ConnID: c.id, Outbox: roomOut, Reply: reply}
	// A room that emptied between lookup and join never answers; its Done
	// channel is the only signal left.
	select {
	case err := <-reply:
		if errors.Is(err, engine.ErrRoomFull) {
			c.sendError("Room is full.")
			return
		}
		if err != nil {
			c.sendError("Game already started.")
			return
		}
	case <-rm.Done():
		c.sendError("Room does not exist.")
		return
	}
	c.joined = rm
	go func() {
		for msg := range roomOut {
			select {
			case c.out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// forward drops actions aimed at unknown rooms without a reply, matching the
// server's silent-rejection policy.
func (c *client) forward(code string, cmd engine.Command) {
	if c.joined == nil || code != c.joined.Code() {
		return
	}
	c.joined.Inbox() <- room.FromClient{Cmd: cmd}
}

func (c *client) leave() {
	if c.joined == nil {
		return
	}
	c.joined.Inbox() <- room.Leave{ConnID: c.id}
}

func (c *client) sendError(message string) {
	select {
	case c.out <- wire.ServerMessage{Type: wire.MsgError, Message: message}:
	default:
		// writer backed up; drop the error rather than block the reader
	}
}

func parseAction(action string) (engine.ActionKind, bool) {
	switch action {
	case "skip":
		return engine.ActionSkip, true
	case "wrongAnswer":
		return engine.ActionWrongAnswer, true
	case "timeout":
		return engine.ActionTimeout, true
	default:
		return "", false
	}
}
