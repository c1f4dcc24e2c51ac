// Package main replays a round-tick request offline and prints the response.
// Pass a seed echoed by an earlier response to reproduce that round exactly.
//
// Usage:
//
//	replay -in round.json -seed 42
//	cat round.json | replay
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duskfall/internal/config"
	"github.com/cory-johannsen/duskfall/internal/game/combat"
	"github.com/cory-johannsen/duskfall/internal/observability"
)

func main() {
	in := flag.String("in", "-", "round request JSON file, - for stdin")
	seed := flag.Int64("seed", -1, "override the request seed (0..4294967295)")
	level := flag.String("log-level", "warn", "log level; debug prints every dice roll")
	flag.Parse()

	logger, err := observability.NewLogger(config.LoggingConfig{
		Level:   *level,
		Format:  "console",
		Service: "duskfall-replay",
		Output:  "stderr",
	})
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if err := run(*in, *seed, logger, os.Stdout); err != nil {
		logger.Fatal("replay failed", zap.Error(err))
	}
}

func run(in string, seed int64, logger *zap.Logger, out io.Writer) error {
	var r io.Reader = os.Stdin
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return fmt.Errorf("opening request: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req combat.Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decoding request: %w", err)
	}
	if seed >= 0 {
		if seed > 0xFFFFFFFF {
			return fmt.Errorf("seed %d out of range", seed)
		}
		s := uint32(seed)
		req.Seed = &s
	}

	resp, err := combat.Tick(req, logger)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}
