package blockchain

import (
	"errors"
	"fmt"

	"simple-ledger-go/blocks"
	"simple-ledger-go/genesis"
	"simple-ledger-go/pow"
)

var (
	ErrEmptyChain        = errors.New("chain has no blocks")
	ErrBadGenesis        = errors.New("genesis block does not match")
	ErrIndexSequence     = errors.New("block index out of sequence")
	ErrLinkMismatch      = errors.New("previous hash does not match predecessor")
	ErrAlgorithmMismatch = errors.New("block hashed with a different algorithm")
	ErrDigestMismatch    = errors.New("hash does not match block content")
	ErrInsufficientWork  = errors.New("hash does not meet difficulty")
)

// ValidationError points at the first block that breaks the chain.
type ValidationError struct {
	Position int
	Index    uint64
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("block %d (position %d): %v", e.Index, e.Position, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate walks the chain and returns nil or a *ValidationError for the
// first violation. Genesis is checked for content and digest but not
// for work.
func (bc *Blockchain) Validate() error {
	bc.RLock()
	defer bc.RUnlock()
	return bc.validate()
}

// caller holds the lock
func (bc *Blockchain) validate() error {
	chain := bc.blocks
	if len(chain) == 0 {
		return ErrEmptyChain
	}

	fail := func(pos int, b *blocks.Block, err error) error {
		return &ValidationError{Position: pos, Index: b.Index(), Err: err}
	}

	g := chain[0]
	if !genesis.IsGenesis(g) {
		return fail(0, g, ErrBadGenesis)
	}
	if g.Algorithm() != bc.algorithm {
		return fail(0, g, ErrAlgorithmMismatch)
	}
	if !g.Verify() {
		return fail(0, g, ErrDigestMismatch)
	}

	for i := 1; i < len(chain); i++ {
		prev, b := chain[i-1], chain[i]
		if b.Index() != prev.Index()+1 {
			return fail(i, b, ErrIndexSequence)
		}
		if b.PreviousHash() != prev.Hash() {
			return fail(i, b, ErrLinkMismatch)
		}
		if b.Algorithm() != bc.algorithm {
			return fail(i, b, ErrAlgorithmMismatch)
		}
		if !b.Verify() {
			return fail(i, b, ErrDigestMismatch)
		}
		if !pow.Meets(b.Hash(), bc.difficulty) {
			return fail(i, b, ErrInsufficientWork)
		}
	}
	return nil
}
