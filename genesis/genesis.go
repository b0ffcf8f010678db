package genesis

import (
	"simple-ledger-go/blocks"
	"simple-ledger-go/hashing"
)

const (
	GENESIS_INDEX         uint64 = 0
	GENESIS_PREVIOUS_HASH        = "0"
	GENESIS_DATA                 = "Genesis Block"
	GENESIS_TIMESTAMP            = "01/01/2022"
)

// NewGenesisBlock returns the fixed first block. It is never mined.
func NewGenesisBlock(algorithm hashing.Algorithm) (*blocks.Block, error) {
	block := blocks.NewBlock(
		GENESIS_INDEX,
		GENESIS_PREVIOUS_HASH,
		GENESIS_DATA,
		GENESIS_TIMESTAMP,
	)
	if algorithm != block.Algorithm() {
		// the sentinel stays as previous hash, only the digest changes
		err := block.Link(GENESIS_PREVIOUS_HASH, algorithm)
		if err != nil {
			return nil, err
		}
	}
	return block, nil
}

// IsGenesis reports whether b carries the fixed genesis content.
func IsGenesis(b *blocks.Block) bool {
	return b.Index() == GENESIS_INDEX &&
		b.PreviousHash() == GENESIS_PREVIOUS_HASH &&
		b.Data() == GENESIS_DATA &&
		b.Timestamp() == GENESIS_TIMESTAMP &&
		b.Nonce() == 0
}
