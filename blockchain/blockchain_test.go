package blockchain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simple-ledger-go/blocks"
	"simple-ledger-go/config"
	"simple-ledger-go/genesis"
	"simple-ledger-go/hashing"
	"simple-ledger-go/pow"
)

const (
	genesisHash = "b0c04d54e2301b4c57e0e8d50fb86e36bbb94b1302ac64159db98acd22cfd5b9"
	unminedHash = "a0dc7cf8412827e796d79c76c6bab0b59681abc465cc139cbd0301197eb86093"
	firstHash   = "00007cfe0ead77b0ff2c0f94ff72e5c51d692fe9ed9056906d7058cd9d59cea5"
	secondHash  = "0000d33e52040fd183fbf6f9c33a65968de6efab1e4807e67703aa86ee0f1b0d"
)

func newChain(t *testing.T, opts ...Option) *Blockchain {
	t.Helper()
	bc, err := NewBlockchain(opts...)
	require.NoError(t, err)
	return bc
}

func requireValidationError(t *testing.T, err error, position int, cause error) {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	assert.Equal(t, position, verr.Position)
	assert.ErrorIs(t, err, cause)
}

func TestNewBlockchainHoldsGenesis(t *testing.T) {
	bc := newChain(t)

	assert.Equal(t, 1, bc.Len())
	assert.Equal(t, DEFAULT_DIFFICULTY, bc.Difficulty())
	assert.Equal(t, hashing.SHA256, bc.Algorithm())

	tail := bc.Latest()
	assert.Equal(t, uint64(0), tail.Index())
	assert.Equal(t, "Genesis Block", tail.Data())
	assert.Equal(t, genesisHash, tail.Hash())
	assert.NoError(t, bc.Validate())
}

func TestNewBlockchainRejectsBadParameters(t *testing.T) {
	_, err := NewBlockchain(WithDifficulty(-1))
	assert.ErrorIs(t, err, ErrInvalidDifficulty)

	_, err = NewBlockchain(WithDifficulty(hashing.HEX_LEN + 1))
	assert.ErrorIs(t, err, ErrInvalidDifficulty)

	_, err = NewBlockchain(WithAlgorithm(hashing.Algorithm(0)))
	assert.Error(t, err)
}

func TestAppendReproducesReferenceChain(t *testing.T) {
	bc := newChain(t)

	first := blocks.NewBlock(1, "", "First transaction", "02/01/2022")
	require.NoError(t, bc.Append(first))
	assert.Equal(t, genesisHash, first.PreviousHash())
	assert.Equal(t, uint64(24844), first.Nonce())
	assert.Equal(t, firstHash, first.Hash())
	assert.NoError(t, bc.Validate())

	second := blocks.NewBlock(2, "", "Second transaction", "03/01/2022")
	require.NoError(t, bc.Append(second))
	assert.Equal(t, uint64(334304), second.Nonce())
	assert.Equal(t, secondHash, second.Hash())

	all := bc.Blocks()
	require.Len(t, all, 3)
	assert.Equal(t, all[1].Hash(), all[2].PreviousHash())
	assert.NotEqual(t, unminedHash, all[2].PreviousHash())
	for _, b := range all[1:] {
		assert.True(t, pow.Meets(b.Hash(), bc.Difficulty()))
		assert.Equal(t, "0000", b.Hash()[:4])
	}
	assert.NoError(t, bc.Validate())
}

func TestTamperedDataIsReported(t *testing.T) {
	bc := newChain(t, WithDifficulty(2))
	require.NoError(t, bc.Append(blocks.NewBlock(1, "", "First transaction", "02/01/2022")))
	require.NoError(t, bc.Append(blocks.NewBlock(2, "", "Second transaction", "03/01/2022")))
	require.NoError(t, bc.Validate())

	b := bc.blocks[1]
	forged, err := blocks.Restore(
		b.Index(), b.PreviousHash(), "Forged transaction", b.Timestamp(),
		b.Nonce(), b.Hash(), b.Algorithm(),
	)
	require.NoError(t, err)
	bc.blocks[1] = forged

	err = bc.Validate()
	requireValidationError(t, err, 1, ErrDigestMismatch)
	assert.Contains(t, err.Error(), "block 1")
}

func TestAppendRejectsWrongIndex(t *testing.T) {
	bc := newChain(t, WithDifficulty(1))

	for _, index := range []uint64{0, 2, 7} {
		candidate := blocks.NewBlock(index, "", "payload", "t")
		before := *candidate
		err := bc.Append(candidate)
		assert.ErrorIs(t, err, ErrIndexSequence, "index %d", index)
		assert.Equal(t, before, *candidate)
	}
	assert.Equal(t, 1, bc.Len())

	require.NoError(t, bc.Append(blocks.NewBlock(1, "", "payload", "t")))
	assert.ErrorIs(t, bc.Append(blocks.NewBlock(1, "", "again", "t")), ErrIndexSequence)
	assert.Equal(t, 2, bc.Len())

	assert.Error(t, bc.Append(nil))
}

func TestAppendStoresCopy(t *testing.T) {
	bc := newChain(t, WithDifficulty(1))
	candidate := blocks.NewBlock(1, "", "payload", "t")
	require.NoError(t, bc.Append(candidate))

	// relinking the caller's block must not reach the stored one
	require.NoError(t, candidate.Link("elsewhere", hashing.SHA256))
	stored, ok := bc.Block(1)
	require.True(t, ok)
	assert.Equal(t, genesisHash, stored.PreviousHash())

	// nor must changes to a returned copy
	tail := bc.Latest()
	require.NoError(t, tail.Link("elsewhere", hashing.SHA256))
	assert.NoError(t, bc.Validate())
}

func TestAppendFailureLeavesChainUnchanged(t *testing.T) {
	bc := newChain(t, WithDifficulty(8), WithMining(pow.WithMaxIterations(50)))
	candidate := blocks.NewBlock(1, "", "payload", "t")
	before := *candidate

	err := bc.Append(candidate)
	assert.ErrorIs(t, err, pow.ErrIterationLimit)
	assert.Equal(t, before, *candidate)
	assert.Equal(t, 1, bc.Len())
	assert.NoError(t, bc.Validate())
}

func TestAppendContextCancelled(t *testing.T) {
	bc := newChain(t, WithDifficulty(8))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bc.AppendContext(ctx, blocks.NewBlock(1, "", "payload", "t"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, bc.Len())
}

func TestAppendTimeout(t *testing.T) {
	bc := newChain(t, WithDifficulty(hashing.HEX_LEN), WithTimeout(20*time.Millisecond))

	err := bc.Append(blocks.NewBlock(1, "", "payload", "t"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, bc.Len())
}

func TestAppendWithWorkersAndAlgorithm(t *testing.T) {
	bc := newChain(t,
		WithDifficulty(2),
		WithAlgorithm(hashing.KECCAK256),
		WithMining(pow.WithWorkers(4)),
	)
	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, bc.Append(blocks.NewBlock(i, "", "payload", "t")))
	}

	for _, b := range bc.Blocks() {
		assert.Equal(t, hashing.KECCAK256, b.Algorithm())
	}
	assert.NoError(t, bc.Validate())
}

func TestZeroDifficultySkipsMining(t *testing.T) {
	bc := newChain(t, WithDifficulty(0))
	candidate := blocks.NewBlock(1, "", "payload", "t")
	require.NoError(t, bc.Append(candidate))
	assert.Equal(t, uint64(0), candidate.Nonce())
	assert.NoError(t, bc.Validate())
}

func TestLookupAndBlock(t *testing.T) {
	bc := newChain(t, WithDifficulty(1))
	candidate := blocks.NewBlock(1, "", "payload", "t")
	require.NoError(t, bc.Append(candidate))

	found, ok := bc.Lookup(candidate.Hash())
	require.True(t, ok)
	assert.Equal(t, "payload", found.Data())

	_, ok = bc.Lookup("missing")
	assert.False(t, ok)

	_, ok = bc.Block(-1)
	assert.False(t, ok)
	_, ok = bc.Block(2)
	assert.False(t, ok)
}

func TestValidateDetectsEachViolation(t *testing.T) {
	build := func(t *testing.T) *Blockchain {
		bc := newChain(t, WithDifficulty(2))
		for i := uint64(1); i <= 3; i++ {
			require.NoError(t, bc.Append(blocks.NewBlock(i, "", "payload", "t")))
		}
		return bc
	}
	restore := func(t *testing.T, index uint64, prev, data string, nonce uint64, hash string, a hashing.Algorithm) *blocks.Block {
		b, err := blocks.Restore(index, prev, data, "t", nonce, hash, a)
		require.NoError(t, err)
		return b
	}

	t.Run("empty", func(t *testing.T) {
		bc := build(t)
		bc.blocks = nil
		assert.ErrorIs(t, bc.Validate(), ErrEmptyChain)
	})

	t.Run("genesis replaced", func(t *testing.T) {
		bc := build(t)
		bc.blocks[0] = blocks.NewBlock(0, "0", "Other Genesis", "01/01/2022")
		requireValidationError(t, bc.Validate(), 0, ErrBadGenesis)
	})

	t.Run("genesis digest", func(t *testing.T) {
		bc := build(t)
		bc.blocks[0] = restore(t, 0, genesis.GENESIS_PREVIOUS_HASH, genesis.GENESIS_DATA, 0, "00", hashing.SHA256)
		// timestamp differs from the genesis constant, so content check fires first
		requireValidationError(t, bc.Validate(), 0, ErrBadGenesis)

		g, err := blocks.Restore(
			0, genesis.GENESIS_PREVIOUS_HASH, genesis.GENESIS_DATA, genesis.GENESIS_TIMESTAMP,
			0, "00", hashing.SHA256,
		)
		require.NoError(t, err)
		bc.blocks[0] = g
		requireValidationError(t, bc.Validate(), 0, ErrDigestMismatch)
	})

	t.Run("index gap", func(t *testing.T) {
		bc := build(t)
		b := bc.blocks[2]
		bc.blocks[2] = restore(t, 5, b.PreviousHash(), b.Data(), b.Nonce(), b.Hash(), b.Algorithm())
		requireValidationError(t, bc.Validate(), 2, ErrIndexSequence)
	})

	t.Run("duplicate index", func(t *testing.T) {
		bc := build(t)
		b := bc.blocks[2]
		bc.blocks[2] = restore(t, 1, b.PreviousHash(), b.Data(), b.Nonce(), b.Hash(), b.Algorithm())
		requireValidationError(t, bc.Validate(), 2, ErrIndexSequence)
	})

	t.Run("broken link", func(t *testing.T) {
		bc := build(t)
		b := bc.blocks[3]
		bc.blocks[3] = restore(t, b.Index(), unminedHash, b.Data(), b.Nonce(), b.Hash(), b.Algorithm())
		requireValidationError(t, bc.Validate(), 3, ErrLinkMismatch)
	})

	t.Run("algorithm", func(t *testing.T) {
		bc := build(t)
		b := bc.blocks[1]
		bc.blocks[1] = restore(t, b.Index(), b.PreviousHash(), b.Data(), b.Nonce(), b.Hash(), hashing.SHA3_256)
		requireValidationError(t, bc.Validate(), 1, ErrAlgorithmMismatch)
	})

	t.Run("insufficient work", func(t *testing.T) {
		bc := build(t)
		b := blocks.NewBlock(4, bc.blocks[3].Hash(), "unmined", "t")
		for pow.Meets(b.Hash(), 1) {
			b = blocks.NewBlock(4, bc.blocks[3].Hash(), b.Data()+"x", "t")
		}
		bc.blocks = append(bc.blocks, b)
		requireValidationError(t, bc.Validate(), 4, ErrInsufficientWork)
	})

	t.Run("first violation wins", func(t *testing.T) {
		bc := build(t)
		one, three := bc.blocks[1], bc.blocks[3]
		bc.blocks[3] = restore(t, three.Index(), three.PreviousHash(), "forged", three.Nonce(), three.Hash(), three.Algorithm())
		bc.blocks[1] = restore(t, one.Index(), one.PreviousHash(), "forged", one.Nonce(), one.Hash(), one.Algorithm())
		requireValidationError(t, bc.Validate(), 1, ErrDigestMismatch)
	})
}

func TestNewBlockchainFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Chain.Difficulty = 2
	cfg.Chain.Hash = "sha3-256"
	cfg.Mining.Workers = 2
	cfg.Mining.MaxIterations = 1 << 20

	bc, err := NewBlockchainFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, bc.Difficulty())
	assert.Equal(t, hashing.SHA3_256, bc.Algorithm())

	require.NoError(t, bc.Append(blocks.NewBlock(1, "", "payload", "t")))
	assert.NoError(t, bc.Validate())

	cfg.Chain.Hash = "md5"
	_, err = NewBlockchainFromConfig(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
