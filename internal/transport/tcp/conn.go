// Package tcp is the game's native transport: a plain stream carrying
// line-delimited frames in and single command bytes out.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"time"

	"gridscout.ai/internal/protocol"
)

type Conn struct {
	c   net.Conn
	r   *bufio.Reader
	log *log.Logger
}

// Dial connects to the game server at addr (host:port).
func Dial(ctx context.Context, addr string, logger *log.Logger) (*Conn, error) {
	d := net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	conn := New(c, logger)
	conn.log.Printf("connected to %s", c.RemoteAddr())
	return conn, nil
}

// New wraps an established connection.
func New(c net.Conn, logger *log.Logger) *Conn {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Conn{c: c, r: bufio.NewReaderSize(c, 16*1024), log: logger}
}

func (c *Conn) ReadFrame(ctx context.Context) ([]string, error) {
	// Unblock the read when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() {
		_ = c.c.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	rows, err := protocol.ReadFrame(c.r)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(err, net.ErrClosed) {
		err = io.EOF
	}
	switch {
	case errors.Is(err, io.EOF):
		c.log.Printf("server closed the stream")
		return nil, io.EOF
	case err != nil:
		c.log.Printf("read frame: %v", err)
	}
	return rows, err
}

func (c *Conn) WriteCommand(cmd protocol.Command) error {
	_ = c.c.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return protocol.WriteCommand(c.c, cmd)
}

func (c *Conn) Close() error {
	err := c.c.Close()
	if err == nil {
		c.log.Printf("disconnected from %s", c.c.RemoteAddr())
	}
	return err
}
