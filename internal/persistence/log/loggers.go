package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"gridscout.ai/internal/agent"
)

// JSONLZstdWriter appends one JSON document per line to a zstd stream.
type JSONLZstdWriter struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func NewJSONLZstdWriter(path string) *JSONLZstdWriter {
	return &JSONLZstdWriter{path: path}
}

func (w *JSONLZstdWriter) Path() string { return w.path }

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		if err := w.openLocked(); err != nil {
			return err
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *JSONLZstdWriter) openLocked() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		err1 = w.w.Flush()
	}
	if w.enc != nil {
		if err := w.enc.Close(); err1 == nil {
			err1 = err
		}
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

// TraceEntry is one turn of a session as written to the trace file.
type TraceEntry struct {
	SessionID  string `json:"session_id"`
	Turn       int    `json:"turn"`
	Pos        [2]int `json:"pos"`
	Heading    string `json:"heading"`
	Command    string `json:"command"`
	State      string `json:"state"`
	KnownCells int    `json:"known_cells"`
	Letters    int    `json:"letters"`
}

func EntryFor(sessionID string, r agent.TurnRecord) TraceEntry {
	return TraceEntry{
		SessionID:  sessionID,
		Turn:       r.Turn,
		Pos:        [2]int{r.Pose.Pos.X, r.Pose.Pos.Y},
		Heading:    r.Pose.Heading.String(),
		Command:    r.Command.String(),
		State:      r.State.String(),
		KnownCells: r.Known,
		Letters:    r.Letters,
	}
}

// TraceLogger writes one compressed JSONL entry per turn.
type TraceLogger struct {
	session string
	w       *JSONLZstdWriter
}

func NewTraceLogger(dir, sessionID string) *TraceLogger {
	return &TraceLogger{
		session: sessionID,
		w:       NewJSONLZstdWriter(filepath.Join(dir, fmt.Sprintf("trace-%s.jsonl.zst", sessionID))),
	}
}

func (l *TraceLogger) RecordTurn(r agent.TurnRecord) error { return l.w.Write(EntryFor(l.session, r)) }
func (l *TraceLogger) Path() string                        { return l.w.Path() }
func (l *TraceLogger) Close() error                        { return l.w.Close() }

// ReadTrace decodes a trace file written by TraceLogger.
func ReadTrace(path string) ([]TraceEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []TraceEntry
	jd := json.NewDecoder(bufio.NewReader(dec))
	for {
		var e TraceEntry
		if err := jd.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, fmt.Errorf("trace line %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
}
