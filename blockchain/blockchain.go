package blockchain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"simple-ledger-go/blocks"
	"simple-ledger-go/config"
	"simple-ledger-go/genesis"
	"simple-ledger-go/hashing"
	"simple-ledger-go/logx"
	"simple-ledger-go/pow"

	"golang.org/x/exp/slices"
)

const (
	DEFAULT_DIFFICULTY = 4
)

var ErrInvalidDifficulty = errors.New("invalid difficulty")

type Blockchain struct {
	sync.RWMutex
	blocks     []*blocks.Block
	difficulty int
	algorithm  hashing.Algorithm
	miningOpts []pow.Option
	timeout    time.Duration
}

type Option func(*Blockchain)

func WithDifficulty(d int) Option {
	return func(bc *Blockchain) {
		bc.difficulty = d
	}
}

func WithAlgorithm(a hashing.Algorithm) Option {
	return func(bc *Blockchain) {
		bc.algorithm = a
	}
}

// WithMining passes options to every proof of work the chain runs.
func WithMining(opts ...pow.Option) Option {
	return func(bc *Blockchain) {
		bc.miningOpts = append(bc.miningOpts, opts...)
	}
}

// WithTimeout bounds each Append. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(bc *Blockchain) {
		bc.timeout = d
	}
}

func NewBlockchain(opts ...Option) (*Blockchain, error) {
	bc := Blockchain{
		difficulty: DEFAULT_DIFFICULTY,
		algorithm:  hashing.DEFAULT_ALGORITHM,
	}
	for _, opt := range opts {
		opt(&bc)
	}

	if bc.difficulty < 0 || bc.difficulty > hashing.HEX_LEN {
		return nil, fmt.Errorf(
			"%w: %d, must be within 0 and %d",
			ErrInvalidDifficulty, bc.difficulty, hashing.HEX_LEN,
		)
	}
	if !bc.algorithm.Valid() {
		return nil, fmt.Errorf("invalid hash algorithm %d", bc.algorithm)
	}

	g, err := genesis.NewGenesisBlock(bc.algorithm)
	if err != nil {
		return nil, err
	}
	bc.blocks = []*blocks.Block{g}

	logx.Info("CHAIN", fmt.Sprintf(
		"blockchain starts at difficulty: %d hash: %s genesis: %s",
		bc.difficulty, bc.algorithm.ToString(), g.Hash(),
	))
	return &bc, nil
}

func NewBlockchainFromConfig(cfg *config.Config) (*Blockchain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	algorithm, err := hashing.ParseAlgorithm(cfg.Chain.Hash)
	if err != nil {
		return nil, err
	}

	mining := []pow.Option{pow.WithWorkers(cfg.Mining.Workers)}
	if cfg.Mining.MaxIterations > 0 {
		mining = append(mining, pow.WithMaxIterations(cfg.Mining.MaxIterations))
	}
	return NewBlockchain(
		WithDifficulty(cfg.Chain.Difficulty),
		WithAlgorithm(algorithm),
		WithMining(mining...),
		WithTimeout(time.Duration(cfg.Mining.TimeoutMs)*time.Millisecond),
	)
}

func (bc *Blockchain) Difficulty() int {
	return bc.difficulty
}

func (bc *Blockchain) Algorithm() hashing.Algorithm {
	return bc.algorithm
}

func (bc *Blockchain) Len() int {
	bc.RLock()
	defer bc.RUnlock()
	return len(bc.blocks)
}

// Latest returns a copy of the tail block.
func (bc *Blockchain) Latest() *blocks.Block {
	bc.RLock()
	defer bc.RUnlock()
	return bc.blocks[len(bc.blocks)-1].Clone()
}

func (bc *Blockchain) Block(position int) (*blocks.Block, bool) {
	bc.RLock()
	defer bc.RUnlock()
	if position < 0 || position >= len(bc.blocks) {
		return nil, false
	}
	return bc.blocks[position].Clone(), true
}

// Blocks returns copies of every block, genesis first.
func (bc *Blockchain) Blocks() []*blocks.Block {
	bc.RLock()
	defer bc.RUnlock()
	out := make([]*blocks.Block, 0, len(bc.blocks))
	for _, b := range bc.blocks {
		out = append(out, b.Clone())
	}
	return out
}

// Lookup finds a block by its hex hash.
func (bc *Blockchain) Lookup(hash string) (*blocks.Block, bool) {
	bc.RLock()
	defer bc.RUnlock()
	pos := slices.IndexFunc(bc.blocks, func(b *blocks.Block) bool {
		return b.Hash() == hash
	})
	if pos < 0 {
		return nil, false
	}
	return bc.blocks[pos].Clone(), true
}

func (bc *Blockchain) Append(candidate *blocks.Block) error {
	return bc.AppendContext(context.Background(), candidate)
}

// AppendContext links candidate to the tail, mines it at the chain
// difficulty and stores a copy. The caller must supply the next index;
// a wrong one is rejected, never rewritten. On error the chain is
// unchanged.
func (bc *Blockchain) AppendContext(ctx context.Context, candidate *blocks.Block) error {
	if candidate == nil {
		return errors.New("candidate block is nil")
	}

	bc.Lock()
	defer bc.Unlock()

	tail := bc.blocks[len(bc.blocks)-1]
	expected := tail.Index() + 1
	if candidate.Index() != expected {
		return logx.Errorf(
			"CHAIN", "%w: received %d, expected %d",
			ErrIndexSequence, candidate.Index(), expected,
		)
	}

	// work on a copy so a failed search leaves the caller's block as it was
	sealed := candidate.Clone()
	err := sealed.Link(tail.Hash(), bc.algorithm)
	if err != nil {
		return err
	}

	if bc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bc.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := sealed.Mine(ctx, bc.difficulty, bc.miningOpts...)
	if err != nil {
		return logx.Errorf(
			"CHAIN", "mining block %d failed after %d iterations: %w",
			sealed.Index(), res.Iterations, err,
		)
	}

	*candidate = *sealed
	bc.blocks = append(bc.blocks, sealed)

	logx.Info("CHAIN", fmt.Sprintf(
		"appended block %d nonce: %d iterations: %d elapsed: %s hash: %s",
		sealed.Index(), sealed.Nonce(), res.Iterations,
		time.Since(start).Round(time.Millisecond), sealed.Hash(),
	))
	return nil
}
