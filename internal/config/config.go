package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"gridscout.ai/internal/agent"
	"gridscout.ai/internal/protocol"
	"gridscout.ai/internal/sim/search"
)

//go:embed config.schema.json
var schemaJSON string

type Config struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Transport string `yaml:"transport"`
	WSPath    string `yaml:"ws_path"`

	ReachMaxCost       int   `yaml:"reach_max_cost"`
	FrontierMaxCost    int   `yaml:"frontier_max_cost"`
	FrontierMaxTargets int   `yaml:"frontier_max_targets"`
	Seed               int64 `yaml:"seed"`
	TurnDelayMs        int   `yaml:"turn_delay_ms"`

	TraceDir    string `yaml:"trace_dir"`
	IndexDB     string `yaml:"index_db"`
	SnapshotDir string `yaml:"snapshot_dir"`
}

func Defaults() Config {
	return Config{
		Host:               "localhost",
		Port:               protocol.DefaultPort,
		Transport:          "tcp",
		WSPath:             "/",
		ReachMaxCost:       search.DefaultReachMaxCost,
		FrontierMaxCost:    search.DefaultFrontierMaxCost,
		FrontierMaxTargets: 64,
		Seed:               1,
	}
}

// Load reads a YAML config on top of Defaults. The document is checked
// against the embedded schema first so typos fail loudly.
func Load(path string) (Config, error) {
	c := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := validate(raw); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, c.Validate()
}

func validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	// Round-trip through JSON so the validator sees JSON types.
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s, err := jsonschema.CompileString("config.schema.json", schemaJSON)
	if err != nil {
		return err
	}
	return s.Validate(v)
}

// ApplyEnv overrides host and port from HOST and PORT.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if h := strings.TrimSpace(getenv("HOST")); h != "" {
		c.Host = h
	}
	if p := strings.TrimSpace(getenv("PORT")); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = n
	}
	return c.Validate()
}

func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("empty host")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	switch c.Transport {
	case "tcp", "ws":
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	return nil
}

// Addr is host:port.
func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// Agent extracts the search and pacing parameters.
func (c Config) Agent() agent.Config {
	return agent.Config{
		ReachMaxCost:       c.ReachMaxCost,
		FrontierMaxCost:    c.FrontierMaxCost,
		FrontierMaxTargets: c.FrontierMaxTargets,
		TurnDelay:          time.Duration(c.TurnDelayMs) * time.Millisecond,
	}
}
