package ws

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"gridscout.ai/internal/protocol"
)

// Conn carries the game over a websocket: each text message is one frame,
// each reply is a one-byte text message.
type Conn struct {
	conn *websocket.Conn
	log  *log.Logger
}

func Dial(ctx context.Context, url string, logger *log.Logger) (*Conn, error) {
	d := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   16 * 1024,
		WriteBufferSize:  1024,
	}
	c, _, err := d.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("connected to %s", url)
	return &Conn{conn: c, log: logger}, nil
}

func (c *Conn) ReadFrame(ctx context.Context) ([]string, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	for {
		mt, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
				errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrUnexpectedEOF) {
				c.log.Printf("server closed the websocket: %v", err)
				return nil, io.EOF
			}
			c.log.Printf("read frame: %v", err)
			return nil, err
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			c.log.Printf("skipping message type %d", mt)
			continue
		}
		return protocol.ParseFrame(msg)
	}
}

func (c *Conn) WriteCommand(cmd protocol.Command) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, []byte{byte(cmd)})
}

// Close sends a close frame and tears the connection down.
func (c *Conn) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
