package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alphaduel/alphaduel-backend/pkg/wire"
	"github.com/coder/websocket"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Client connects a Session to a live server over a websocket.
type Client struct {
	Session *Session
	conn    *websocket.Conn
	ctx     context.Context
	log     *zap.Logger
}

func Dial(ctx context.Context, serverURL, lang string, log *zap.Logger) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", serverURL, err)
	}
	c := &Client{conn: conn, ctx: ctx, log: log}
	c.Session = New(c, clockwork.NewRealClock(), lang)
	return c, nil
}

// Send implements Emitter.
func (c *Client) Send(msg wire.ClientMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal failed", zap.Error(err))
		return
	}
	wctx, cancel := context.WithTimeout(c.ctx, 3*time.Second)
	defer cancel()
	if err := c.conn.Write(wctx, websocket.MessageText, payload); err != nil {
		c.log.Error("write failed", zap.Error(err))
	}
}

// Listen dispatches server broadcasts into the session until the connection
// drops or ctx ends. The countdown runs alongside it.
func (c *Client) Listen(ctx context.Context) error {
	go c.Session.Run(ctx)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return err
		}

		var msg wire.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("bad server message", zap.Error(err))
			continue
		}

		switch msg.Type {
		case wire.MsgRoomCreated:
			c.Session.HandleRoomCreated(msg)
		case wire.MsgRoomJoined:
			c.Session.HandleRoomJoined(msg)
		case wire.MsgStartGame:
			c.Session.HandleStartGame(msg)
		case wire.MsgTurnChanged:
			c.Session.HandleTurnChanged(msg)
		case wire.MsgPlayerMove:
			c.Session.HandleOpponentMove(msg)
		case wire.MsgGameOver:
			c.Session.HandleGameOver(msg)
		case wire.MsgError:
			c.log.Warn("server error", zap.String("message", msg.Message))
		}
	}
}

func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}
