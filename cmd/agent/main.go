package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"gridscout.ai/internal/agent"
	"gridscout.ai/internal/config"
	"gridscout.ai/internal/persistence/indexdb"
	persistlog "gridscout.ai/internal/persistence/log"
	"gridscout.ai/internal/persistence/snapshot"
	"gridscout.ai/internal/transport/tcp"
	"gridscout.ai/internal/transport/ws"
)

const defaultConfigPath = "./configs/agent.yaml"

func main() {
	var (
		configPath  = flag.String("config", defaultConfigPath, "path to agent.yaml (missing default file is ignored)")
		host        = flag.String("host", "", "server host (overrides config and HOST)")
		port        = flag.Int("port", 0, "server port (overrides config and PORT)")
		transport   = flag.String("transport", "", "tcp or ws")
		wsPath      = flag.String("ws_path", "", "websocket path when -transport=ws")
		seed        = flag.Int64("seed", 0, "seed for the random fallback action")
		turnDelayMs = flag.Int("turn_delay_ms", -1, "sleep after every command")
		traceDir    = flag.String("trace_dir", "", "directory for per-turn traces (empty: config)")
		indexDB     = flag.String("index_db", "", "sqlite session index path (empty: config)")
		snapshotDir = flag.String("snapshot_dir", "", "directory for end-of-game known-map snapshots (empty: config)")
		noPersist   = flag.Bool("no_persist", false, "disable traces, index and snapshots")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[agent] ", log.LstdFlags|log.Lmicroseconds)

	cfg := config.Defaults()
	if _, err := os.Stat(*configPath); err == nil || *configPath != defaultConfigPath {
		c, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
		cfg = c
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		logger.Fatalf("env: %v", err)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["host"] {
		cfg.Host = *host
	}
	if set["port"] {
		cfg.Port = *port
	}
	if set["transport"] {
		cfg.Transport = *transport
	}
	if set["ws_path"] {
		cfg.WSPath = *wsPath
	}
	if set["seed"] {
		cfg.Seed = *seed
	}
	if set["turn_delay_ms"] {
		cfg.TurnDelayMs = *turnDelayMs
	}
	if set["trace_dir"] {
		cfg.TraceDir = *traceDir
	}
	if set["index_db"] {
		cfg.IndexDB = *indexDB
	}
	if set["snapshot_dir"] {
		cfg.SnapshotDir = *snapshotDir
	}
	if *noPersist {
		cfg.TraceDir, cfg.IndexDB, cfg.SnapshotDir = "", "", ""
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := uuid.NewString()
	logger.Printf("session %s: connecting to %s over %s", sessionID, cfg.Addr(), cfg.Transport)

	conn, err := dial(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var recs agent.Recorders
	var trace *persistlog.TraceLogger
	if cfg.TraceDir != "" {
		trace = persistlog.NewTraceLogger(cfg.TraceDir, sessionID)
		defer func() {
			if err := trace.Close(); err != nil {
				logger.Printf("close trace: %v", err)
			}
		}()
		recs = append(recs, trace)
	}
	var idx *indexdb.SQLiteIndex
	if cfg.IndexDB != "" {
		idx, err = indexdb.OpenSQLite(cfg.IndexDB)
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer func() {
			if err := idx.Close(); err != nil {
				logger.Printf("close index: %v", err)
			}
		}()
		recs = append(recs, idx.StartSession(sessionID, time.Now()))
	}

	a := agent.New(cfg.Agent(), rand.New(rand.NewSource(cfg.Seed)), logger)
	sum, runErr := a.Run(ctx, conn, recs)

	outcome := "ended"
	switch {
	case errors.Is(runErr, context.Canceled):
		outcome = "interrupted"
	case runErr != nil:
		outcome = runErr.Error()
	}
	logger.Printf("session %s: %s after %d turns, pose %s, state %s, %d cells known",
		sessionID, outcome, sum.Turns(), sum.Context.Pose, sum.State, sum.Context.Known.Len())

	if idx != nil {
		idx.EndSession(sessionID, time.Now(), sum, outcome)
	}
	if cfg.SnapshotDir != "" && sum.Turns() > 0 {
		snap := snapshot.FromKnown(snapshot.Header{SessionID: sessionID, Turn: sum.Turns()},
			sum.Context.Known, sum.Context.Pose, sum.State.String())
		path := filepath.Join(cfg.SnapshotDir, sessionID+".snap.zst")
		if err := snapshot.WriteSnapshot(path, snap); err != nil {
			logger.Printf("write snapshot: %v", err)
		} else {
			logger.Printf("snapshot: %s", path)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		// Fatalf would skip the deferred closes.
		logger.Printf("run: %v", runErr)
		if trace != nil {
			_ = trace.Close()
		}
		if idx != nil {
			_ = idx.Close()
		}
		_ = conn.Close()
		os.Exit(1)
	}
}

type agentConn interface {
	agent.Conn
	Close() error
}

func dial(ctx context.Context, cfg config.Config, logger *log.Logger) (agentConn, error) {
	dctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if cfg.Transport == "ws" {
		return ws.Dial(dctx, "ws://"+cfg.Addr()+cfg.WSPath, logger)
	}
	return tcp.Dial(dctx, cfg.Addr(), logger)
}
