package ws

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"gridscout.ai/internal/protocol"
)

func TestConn_FrameMessages(t *testing.T) {
	got := make(chan string, 1)
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		var replies []byte
		for _, f := range []string{"...\n.A.\n...", "a..\n.A.\n..."} {
			if err := c.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			replies = append(replies, msg...)
		}
		got <- string(replies)
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
	}))
	defer srv.Close()

	ctx := context.Background()
	var logs bytes.Buffer
	conn, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), log.New(&logs, "", 0))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	for _, cmd := range []protocol.Command{protocol.CmdRight, protocol.CmdBackward} {
		rows, err := conn.ReadFrame(ctx)
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if len(rows) != 3 || rows[1] != ".A." {
			t.Fatalf("rows=%q", rows)
		}
		if err := conn.WriteCommand(cmd); err != nil {
			t.Fatalf("WriteCommand: %v", err)
		}
	}
	select {
	case s := <-got:
		if s != ">v" {
			t.Fatalf("server got %q want %q", s, ">v")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not receive replies")
	}
	if _, err := conn.ReadFrame(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("after close: err=%v want io.EOF", err)
	}
	for _, want := range []string{"connected to ws://", "server closed the websocket"} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("log %q missing %q", logs.String(), want)
		}
	}
}
