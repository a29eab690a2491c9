// Package goban parses goban command flags and starts the interactive match
// runtime: hosting, joining, or hot-seat play on one terminal.
package goban

import (
	"context"
	"flag"
	"fmt"
	"os"

	entrypoint "github.com/hoshiten/goban/internal/platform/cmd"
)

// Config holds goban command configuration.
type Config struct {
	Listen  string `env:"GOBAN_LISTEN"`
	Connect string `env:"GOBAN_CONNECT"`
	Size    int    `env:"GOBAN_BOARD_SIZE" envDefault:"19"`
	Journal string `env:"GOBAN_JOURNAL"`
	Name    string `env:"GOBAN_NAME"`
	MatchID string `env:"GOBAN_MATCH_ID"`

	// ShowResults prints recent finished matches and exits. Flag only.
	ShowResults bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "Host a match on this address (you play black)")
	fs.StringVar(&cfg.Connect, "connect", cfg.Connect, "Join a hosted match at this address (you play white)")
	fs.IntVar(&cfg.Size, "size", cfg.Size, "Board size for a new match")
	fs.StringVar(&cfg.Journal, "journal", cfg.Journal, "SQLite file recording events and results (empty disables)")
	fs.StringVar(&cfg.Name, "name", cfg.Name, "Display name used for chat messages")
	fs.StringVar(&cfg.MatchID, "match", cfg.MatchID, "Match identifier (defaults to a generated id)")
	fs.BoolVar(&cfg.ShowResults, "results", cfg.ShowResults, "Print recent finished matches from the journal and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the interactive match runtime.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Listen != "" && cfg.Connect != "" {
		return fmt.Errorf("-listen and -connect are mutually exclusive")
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGoban, func(ctx context.Context) error {
		return run(ctx, cfg, os.Stdin, os.Stdout)
	})
}
