package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"gridscout.ai/internal/agent"
)

// SQLiteIndex keeps a queryable index of sessions and their turns. Writes go
// through a buffered channel to one writer goroutine so the turn loop never
// waits on disk.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTurn    atomic.Uint64
	dropSession atomic.Uint64

	// A failed write rolls back the open batch; these count how often and
	// how many queued writes were lost with it.
	rollbacks    atomic.Uint64
	rollbackLost atomic.Uint64
}

type reqKind int

const (
	reqSessionStart reqKind = iota + 1
	reqTurn
	reqSessionEnd
)

type req struct {
	kind reqKind

	session sessionRow
	turn    turnRow
}

type sessionRow struct {
	ID      string
	At      string
	Turns   int
	Word    string
	Outcome string
}

type turnRow struct {
	SessionID string
	Turn      int
	X, Y      int
	Heading   string
	Command   string
	State     string
}

// SessionRow is one row of the sessions table. EndedAt is empty while the
// session has not been closed.
type SessionRow struct {
	ID        string
	StartedAt string
	EndedAt   string
	Turns     int
	Word      string
	Outcome   string
}

type TurnRow struct {
	Turn    int
	X, Y    int
	Heading string
	Command string
	State   string
}

type Stats struct {
	DropTurnTotal     uint64
	DropSessionTotal  uint64
	RollbackTotal     uint64
	RollbackLostTotal uint64
	QueueDepth        int
	QueueCapacity     int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			turns INTEGER NOT NULL DEFAULT 0,
			word TEXT,
			outcome TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			session_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			heading TEXT NOT NULL,
			command TEXT NOT NULL,
			state TEXT NOT NULL,
			PRIMARY KEY (session_id, turn)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_turns_pos ON turns(session_id, x, y);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains the queue and closes the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		DropTurnTotal:     s.dropTurn.Load(),
		DropSessionTotal:  s.dropSession.Load(),
		RollbackTotal:     s.rollbacks.Load(),
		RollbackLostTotal: s.rollbackLost.Load(),
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
	}
}

// StartSession records a new session and returns a recorder that indexes its
// turns.
func (s *SQLiteIndex) StartSession(id string, at time.Time) *SessionRecorder {
	s.enqueueSession(req{kind: reqSessionStart, session: sessionRow{
		ID: id,
		At: at.UTC().Format(time.RFC3339Nano),
	}})
	return &SessionRecorder{idx: s, id: id}
}

// EndSession stores the final turn count, the word being entered (if any)
// and a short outcome such as "ended" or the error that stopped the loop.
func (s *SQLiteIndex) EndSession(id string, at time.Time, sum agent.Summary, outcome string) {
	row := sessionRow{
		ID:      id,
		At:      at.UTC().Format(time.RFC3339Nano),
		Turns:   sum.Turns(),
		Outcome: outcome,
	}
	if sum.State.Mode == agent.ModeEnterWord {
		row.Word = sum.State.Word
	}
	s.enqueueSession(req{kind: reqSessionEnd, session: row})
}

func (s *SQLiteIndex) enqueueSession(r req) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		s.dropSession.Add(1)
	}
}

func (s *SQLiteIndex) writeTurn(id string, r agent.TurnRecord) {
	if s == nil || s.closed.Load() {
		return
	}
	row := turnRow{
		SessionID: id,
		Turn:      r.Turn,
		X:         r.Pose.Pos.X,
		Y:         r.Pose.Pos.Y,
		Heading:   r.Pose.Heading.String(),
		Command:   r.Command.String(),
		State:     r.State.String(),
	}
	select {
	case s.ch <- req{kind: reqTurn, turn: row}:
	default:
		// Drop if the indexer falls behind; the trace file remains the source of truth.
		s.dropTurn.Add(1)
	}
}

// SessionRecorder is the agent.Recorder for one session.
type SessionRecorder struct {
	idx *SQLiteIndex
	id  string
}

func (r *SessionRecorder) ID() string { return r.id }

func (r *SessionRecorder) RecordTurn(t agent.TurnRecord) error {
	r.idx.writeTurn(r.id, t)
	return nil
}

// Sessions lists sessions, newest first.
func (s *SQLiteIndex) Sessions(ctx context.Context) ([]SessionRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, started_at, COALESCE(ended_at,''), turns, COALESCE(word,''), COALESCE(outcome,'')
		FROM sessions ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.EndedAt, &r.Turns, &r.Word, &r.Outcome); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Turns returns the indexed turns of one session in order.
func (s *SQLiteIndex) Turns(ctx context.Context, sessionID string) ([]TurnRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT turn, x, y, heading, command, state
		FROM turns WHERE session_id = ? ORDER BY turn`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TurnRow
	for rows.Next() {
		var r TurnRow
		if err := rows.Scan(&r.Turn, &r.X, &r.Y, &r.Heading, &r.Command, &r.State); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertSession, _ := s.db.Prepare(`INSERT OR IGNORE INTO sessions(id,started_at) VALUES(?,?)`)
	endSession, _ := s.db.Prepare(`UPDATE sessions SET ended_at=?, turns=?, word=?, outcome=? WHERE id=?`)
	insertTurn, _ := s.db.Prepare(`INSERT OR REPLACE INTO turns(session_id,turn,x,y,heading,command,state) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertSession, endSession, insertTurn} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) {
		if st == nil || tx == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			s.rollbacks.Add(1)
			s.rollbackLost.Add(uint64(opCount + 1))
			rollback()
			return
		}
		opCount++
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqSessionStart:
			exec(insertSession, r.session.ID, r.session.At)
		case reqTurn:
			t := r.turn
			exec(insertTurn, t.SessionID, t.Turn, t.X, t.Y, t.Heading, t.Command, t.State)
		case reqSessionEnd:
			se := r.session
			exec(endSession, se.At, se.Turns, se.Word, se.Outcome, se.ID)
			// Session boundaries are worth a commit of their own.
			commit()
			continue
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
