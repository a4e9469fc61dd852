// Package agent runs the word mission: it keeps the known map and pose
// estimate up to date, and picks one command per turn.
package agent

import (
	"io"
	"log"
	"math/rand"
	"time"

	"gridscout.ai/internal/sim/search"
)

type Config struct {
	// ReachMaxCost bounds the breadth-first search in cost layers.
	ReachMaxCost int
	// FrontierMaxCost bounds the A* search.
	FrontierMaxCost int
	// FrontierMaxTargets caps how many of the nearest frontier cells the
	// broad A* fallback considers.
	FrontierMaxTargets int
	// TurnDelay is slept after every command.
	TurnDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		ReachMaxCost:       search.DefaultReachMaxCost,
		FrontierMaxCost:    search.DefaultFrontierMaxCost,
		FrontierMaxTargets: 64,
	}
}

type Agent struct {
	cfg Config
	rng *rand.Rand
	log *log.Logger
}

// New builds an agent. rng drives the random fallback action; pass a seeded
// source for reproducible runs.
func New(cfg Config, rng *rand.Rand, logger *log.Logger) *Agent {
	def := DefaultConfig()
	if cfg.ReachMaxCost <= 0 {
		cfg.ReachMaxCost = def.ReachMaxCost
	}
	if cfg.FrontierMaxCost <= 0 {
		cfg.FrontierMaxCost = def.FrontierMaxCost
	}
	if cfg.FrontierMaxTargets <= 0 {
		cfg.FrontierMaxTargets = def.FrontierMaxTargets
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Agent{cfg: cfg, rng: rng, log: logger}
}
