package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

// DefaultPort is the game server's well-known port.
const DefaultPort = 63187

var ErrTruncatedFrame = errors.New("truncated frame")

// ReadFrame reads one frame: S lines of S symbols, where S is the length of
// the first line. io.EOF is returned when the peer sent no further frame.
func ReadFrame(r *bufio.Reader) ([]string, error) {
	var rows []string
	want := 0
	for {
		line, err := r.ReadString('\n')
		if line == "" && err != nil {
			if errors.Is(err, io.EOF) {
				if len(rows) == 0 {
					return nil, io.EOF
				}
				return rows, ErrTruncatedFrame
			}
			return rows, err
		}
		line = strings.TrimRight(line, "\r\n")
		if want == 0 {
			if line == "" {
				// stray blank line between frames
				continue
			}
			want = len(line)
		}
		rows = append(rows, line)
		if len(rows) >= want {
			return rows, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return rows, ErrTruncatedFrame
			}
			return rows, err
		}
	}
}

// ParseFrame splits a frame received as a single message.
func ParseFrame(b []byte) ([]string, error) {
	b = bytes.Trim(b, "\r\n")
	if len(b) == 0 {
		return nil, io.EOF
	}
	parts := strings.Split(string(b), "\n")
	rows := make([]string, 0, len(parts))
	for _, p := range parts {
		rows = append(rows, strings.TrimRight(p, "\r"))
	}
	if len(rows) < len(rows[0]) {
		return rows, ErrTruncatedFrame
	}
	return rows[:len(rows[0])], nil
}

// WriteCommand writes exactly one byte.
func WriteCommand(w io.Writer, c Command) error {
	_, err := w.Write([]byte{byte(c)})
	return err
}
