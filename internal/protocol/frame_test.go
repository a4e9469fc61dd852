package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadFrame_SizedByFirstLine(t *testing.T) {
	in := "...\n.A.\n..#\n#####\n#...#\n#.B.#\n#...#\n#####\n"
	r := bufio.NewReader(strings.NewReader(in))

	f1, err := ReadFrame(r)
	if err != nil {
		t.Fatalf("frame 1: %v", err)
	}
	if len(f1) != 3 || f1[2] != "..#" {
		t.Fatalf("frame 1 = %q", f1)
	}
	f2, err := ReadFrame(r)
	if err != nil {
		t.Fatalf("frame 2: %v", err)
	}
	if len(f2) != 5 || f2[2] != "#.B.#" {
		t.Fatalf("frame 2 = %q", f2)
	}
	if _, err := ReadFrame(r); !errors.Is(err, io.EOF) {
		t.Fatalf("err=%v want io.EOF", err)
	}
}

func TestReadFrame_CRLFAndMissingFinalNewline(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("a..\r\n.A.\r\n..."))
	f, err := ReadFrame(r)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if f[0] != "a.." || f[2] != "..." {
		t.Fatalf("frame = %q", f)
	}
}

func TestReadFrame_Truncated(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("...\n.A.\n"))
	if _, err := ReadFrame(r); !errors.Is(err, ErrTruncatedFrame) {
		t.Fatalf("err=%v want ErrTruncatedFrame", err)
	}
}

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame([]byte("...\n.A.\n...\n"))
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if len(f) != 3 {
		t.Fatalf("rows=%d want 3", len(f))
	}
	if _, err := ParseFrame(nil); !errors.Is(err, io.EOF) {
		t.Fatalf("empty message: err=%v want io.EOF", err)
	}
	if _, err := ParseFrame([]byte("...\n...")); !errors.Is(err, ErrTruncatedFrame) {
		t.Fatalf("short message: err=%v want ErrTruncatedFrame", err)
	}
}

func TestWriteCommand_OneByte(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCommand(&buf, CmdForward); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	c, _ := Submit('q')
	if err := WriteCommand(&buf, c); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	if got := buf.String(); got != "^q" {
		t.Fatalf("wire=%q want %q", got, "^q")
	}
	if _, err := Submit('Q'); err == nil {
		t.Fatalf("uppercase submit must be rejected")
	}
}
