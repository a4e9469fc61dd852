package tcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"strings"
	"testing"
	"time"

	"gridscout.ai/internal/protocol"
)

func TestConn_FramesInBytesOut(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	got := make(chan []byte, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		r := bufio.NewReader(c)
		var replies []byte
		for _, f := range []string{"...\n.A.\n...\n", "..#\n.A.\n...\n"} {
			if _, err := io.WriteString(c, f); err != nil {
				return
			}
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			replies = append(replies, b)
		}
		got <- replies
	}()

	ctx := context.Background()
	conn, err := Dial(ctx, ln.Addr().String(), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	for _, cmd := range []protocol.Command{protocol.CmdForward, protocol.CmdLeft} {
		rows, err := conn.ReadFrame(ctx)
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("rows=%q", rows)
		}
		if err := conn.WriteCommand(cmd); err != nil {
			t.Fatalf("WriteCommand: %v", err)
		}
	}
	select {
	case b := <-got:
		if string(b) != "^<" {
			t.Fatalf("server got %q want %q", b, "^<")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not receive replies")
	}
	if _, err := conn.ReadFrame(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("after close: err=%v want io.EOF", err)
	}
}

func TestConn_ReadFrameHonoursCancel(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	conn := New(client, nil)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if _, err := conn.ReadFrame(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

func TestConn_LogsEndOfStream(t *testing.T) {
	client, server := net.Pipe()
	var buf bytes.Buffer
	conn := New(client, log.New(&buf, "", 0))
	defer conn.Close()

	go func() {
		_, _ = io.WriteString(server, ".\n")
		_ = server.Close()
	}()
	ctx := context.Background()
	if rows, err := conn.ReadFrame(ctx); err != nil || len(rows) != 1 {
		t.Fatalf("rows=%q err=%v", rows, err)
	}
	if _, err := conn.ReadFrame(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("err=%v want io.EOF", err)
	}
	if !strings.Contains(buf.String(), "server closed the stream") {
		t.Fatalf("log=%q", buf.String())
	}
}
