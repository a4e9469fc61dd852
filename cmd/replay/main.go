package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"gridscout.ai/internal/persistence/indexdb"
	persistlog "gridscout.ai/internal/persistence/log"
	"gridscout.ai/internal/persistence/snapshot"
	"gridscout.ai/internal/protocol"
)

func main() {
	var (
		snapPath  = flag.String("snapshot", "", "path to .snap.zst (optional)")
		tracePath = flag.String("trace", "", "path to trace-*.jsonl.zst (optional)")
		dbPath    = flag.String("index_db", "", "sqlite index to list sessions from (optional)")
	)
	flag.Parse()

	if *snapPath == "" && *tracePath == "" && *dbPath == "" {
		fmt.Fprintln(os.Stderr, "need at least one of -snapshot, -trace, -index_db")
		os.Exit(2)
	}

	if *snapPath != "" {
		if err := printSnapshot(*snapPath); err != nil {
			fmt.Fprintln(os.Stderr, "snapshot:", err)
			os.Exit(1)
		}
	}
	if *tracePath != "" {
		if err := printTrace(*tracePath); err != nil {
			fmt.Fprintln(os.Stderr, "trace:", err)
			os.Exit(1)
		}
	}
	if *dbPath != "" {
		if err := printSessions(*dbPath); err != nil {
			fmt.Fprintln(os.Stderr, "index:", err)
			os.Exit(1)
		}
	}
}

func printSnapshot(path string) error {
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		return err
	}
	fmt.Printf("snapshot v%d session=%s turn=%d pos=(%d,%d) heading=%s state=%s size=%dx%d origin=(%d,%d)\n",
		snap.Header.Version, snap.Header.SessionID, snap.Header.Turn,
		snap.Pos[0], snap.Pos[1], snap.Heading, snap.State,
		snap.Width, snap.Height, snap.Origin[0], snap.Origin[1])

	rows, err := snap.Render()
	if err != nil {
		return err
	}
	// Mark the agent with its heading.
	ax, ay := snap.Pos[0]-snap.Origin[0], snap.Pos[1]-snap.Origin[1]
	for y, r := range rows {
		if y == ay && ax >= 0 && ax < len(r) {
			b := []byte(r)
			b[ax] = headingGlyph(snap.Heading)
			r = string(b)
		}
		fmt.Println(r)
	}
	return nil
}

func headingGlyph(h string) byte {
	switch h {
	case "EAST":
		return '>'
	case "SOUTH":
		return 'v'
	case "WEST":
		return '<'
	}
	return '^'
}

func printTrace(path string) error {
	entries, err := persistlog.ReadTrace(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("trace: empty")
		return nil
	}
	cmds := map[string]int{}
	var word []byte
	for _, e := range entries {
		cmds[e.Command]++
		if len(e.Command) == 1 && protocol.Command(e.Command[0]).IsSubmit() {
			word = append(word, e.Command[0])
		}
	}
	last := entries[len(entries)-1]
	fmt.Printf("trace session=%s turns=%d final_pos=(%d,%d) heading=%s state=%s known=%d letters=%d\n",
		last.SessionID, len(entries), last.Pos[0], last.Pos[1], last.Heading, last.State, last.KnownCells, last.Letters)
	keys := make([]string, 0, len(cmds))
	for k := range cmds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s x%d\n", k, cmds[k])
	}
	if len(word) > 0 {
		fmt.Printf("submitted: %s\n", word)
	}
	return nil
}

func printSessions(path string) error {
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer idx.Close()
	sessions, err := idx.Sessions(context.Background())
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Printf("%s started=%s ended=%s turns=%d word=%q outcome=%s\n",
			s.ID, s.StartedAt, s.EndedAt, s.Turns, s.Word, s.Outcome)
	}
	return nil
}
