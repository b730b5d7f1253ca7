package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Settings and state
	ConfigFile   string `long:"config" env:"CONFIG_FILE" default:"./config.yml" description:"Path to the YAML settings file (feeds, sink, interval, max age)"`
	StateFile    string `long:"state-file" env:"STATE_FILE" default:"./processed_entries.json" description:"Path to the dedup state file"`
	StateBackend string `long:"state-backend" env:"STATE_BACKEND" default:"json" choice:"json" choice:"sqlite" description:"Dedup state backend"`

	// Runtime
	Workers    int    `long:"workers" env:"WORKERS" default:"1" description:"Number of concurrent feed fetchers per pass"`
	StatusPort string `long:"status-port" env:"STATUS_PORT" description:"Port for the status HTTP server (disabled when empty)"`
	RunOnce    bool   `long:"run-once" env:"RUN_ONCE" description:"Run a single pass and exit, regardless of the configured interval"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Hook/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Reference timezone for feed timestamps without an offset"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses command-line flags and environment variables.
// It returns nil, nil when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", raw.Workers)
	}

	cfg := &Cfg{
		ConfigFile:   raw.ConfigFile,
		StateFile:    raw.StateFile,
		StateBackend: raw.StateBackend,
		Workers:      raw.Workers,
		StatusPort:   raw.StatusPort,
		RunOnce:      raw.RunOnce,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	cfg.Location = resolveTimezone(cfg.Timezone)

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func resolveTimezone(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("Invalid timezone, using UTC", "timezone", timezone, "error", err)
		return time.UTC
	}
	return loc
}
