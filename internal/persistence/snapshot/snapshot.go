package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"gridscout.ai/internal/sim/encoding"
	"gridscout.ai/internal/sim/geom"
	"gridscout.ai/internal/sim/knownmap"
)

const Version = 1

// Unknown marks cells inside the bounding box that were never seen. The
// server only sends printable symbols, so NUL cannot collide with terrain.
const Unknown = 0

type Header struct {
	Version   int    `json:"version"`
	SessionID string `json:"session_id"`
	Turn      int    `json:"turn"`
}

// SnapshotV1 is the known map at the end of a session plus the agent's
// final pose and state.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Pos     [2]int `json:"pos"`
	Heading string `json:"heading"`
	State   string `json:"state"`

	// Origin is the absolute position of Rows[0][0].
	Origin [2]int `json:"origin"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Rows holds one run-length encoded row per y.
	Rows []string `json:"rows"`
}

// FromKnown captures m. Cells are laid out over m's bounding box.
func FromKnown(h Header, m knownmap.Map, pose geom.Pose, state string) SnapshotV1 {
	h.Version = Version
	snap := SnapshotV1{
		Header:  h,
		Pos:     [2]int{pose.Pos.X, pose.Pos.Y},
		Heading: pose.Heading.String(),
		State:   state,
	}
	lo, hi, ok := m.Bounds()
	if !ok {
		return snap
	}
	snap.Origin = [2]int{lo.X, lo.Y}
	snap.Width = hi.X - lo.X + 1
	snap.Height = hi.Y - lo.Y + 1

	row := make([]byte, snap.Width)
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			c, ok := m.Get(geom.Vec{X: x, Y: y})
			if !ok {
				c = Unknown
			}
			row[x-lo.X] = c
		}
		snap.Rows = append(snap.Rows, encoding.EncodeRLE(row))
	}
	return snap
}

// Render decodes the rows into printable lines, unknown cells as spaces.
func (s SnapshotV1) Render() ([]string, error) {
	rows, err := s.decodeRows()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = strings.ReplaceAll(r, string(rune(Unknown)), " ")
	}
	return out, nil
}

func (s SnapshotV1) decodeRows() ([]string, error) {
	out := make([]string, 0, len(s.Rows))
	for i, r := range s.Rows {
		b, err := encoding.DecodeRLE(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if len(b) != s.Width {
			return nil, fmt.Errorf("row %d: %d cells, want %d", i, len(b), s.Width)
		}
		out = append(out, string(b))
	}
	return out, nil
}

// Known rebuilds the known map.
func (s SnapshotV1) Known() (knownmap.Map, error) {
	rows, err := s.decodeRows()
	if err != nil {
		return knownmap.Map{}, err
	}
	cells := make(map[geom.Vec]byte)
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			if r[x] == Unknown {
				continue
			}
			cells[geom.Vec{X: s.Origin[0] + x, Y: s.Origin[1] + y}] = r[x]
		}
	}
	return knownmap.FromCells(cells), nil
}

// Pose returns the recorded final pose.
func (s SnapshotV1) Pose() (geom.Pose, error) {
	d, err := geom.ParseDir(s.Heading)
	if err != nil {
		return geom.Pose{}, err
	}
	return geom.Pose{Pos: geom.Vec{X: s.Pos[0], Y: s.Pos[1]}, Heading: d}, nil
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// Header line is for humans and tools; gob carries it too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
