package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"simple-ledger-go/blockchain"
	"simple-ledger-go/blocks"
	"simple-ledger-go/config"
	"simple-ledger-go/logx"

	"github.com/davecgh/go-spew/spew"
)

type demoOptions struct {
	configPath string
	count      int
	asJson     bool
	verbose    bool
}

var ordinals = []string{
	"First", "Second", "Third", "Fourth", "Fifth",
	"Sixth", "Seventh", "Eighth", "Ninth", "Tenth",
}

func demoPayload(i int) string {
	if i <= len(ordinals) {
		return ordinals[i-1] + " transaction"
	}
	return fmt.Sprintf("Transaction %d", i)
}

// block i is stamped i days after the genesis date
func demoTimestamp(i int) string {
	return time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, i).
		Format("02/01/2006")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildDemoChain(ctx context.Context, cfg *config.Config, count int) (*blockchain.Blockchain, error) {
	if count < 0 {
		return nil, fmt.Errorf("block count must not be negative, got %d", count)
	}
	bc, err := blockchain.NewBlockchainFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	for i := 1; i <= count; i++ {
		candidate := blocks.NewBlock(uint64(i), "", demoPayload(i), demoTimestamp(i))
		if err := bc.AppendContext(ctx, candidate); err != nil {
			return nil, err
		}
	}
	if err := bc.Validate(); err != nil {
		return nil, err
	}
	return bc, nil
}

func runDemo(w io.Writer, opts demoOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	level, err := logx.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logx.SetLevel(level)

	bc, err := buildDemoChain(context.Background(), cfg, opts.count)
	if err != nil {
		return err
	}

	chain := bc.Blocks()
	switch {
	case opts.asJson:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(chain)
	case opts.verbose:
		spew.Fdump(w, chain)
		return nil
	default:
		return printChain(w, bc)
	}
}
