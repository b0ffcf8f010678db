package blocks

import (
	"context"
	"fmt"
	"strconv"

	"simple-ledger-go/common"
	"simple-ledger-go/hashing"
	"simple-ledger-go/logx"
	"simple-ledger-go/pow"
)

// Block is a ledger entry sealed by proof of work. Its hash can only be
// produced by the block itself, so hash == Digest() holds for every block
// built through this package. Restore and JSON decoding are the exceptions:
// they keep a recorded hash as is so Verify can judge it.
type Block struct {
	index        uint64
	previousHash string
	data         string
	timestamp    string
	nonce        uint64
	hash         string
	algorithm    hashing.Algorithm
}

type record struct {
	Index        uint64 `json:"index"`
	PreviousHash string `json:"previous_hash"`
	Data         string `json:"data"`
	Timestamp    string `json:"timestamp"`
	Nonce        uint64 `json:"nonce"`
	Hash         string `json:"hash"`
	Algorithm    string `json:"algorithm"`
}

func NewBlock(
	index uint64,
	previousHash string,
	data string,
	timestamp string,
) *Block {
	block := Block{
		index:        index,
		previousHash: previousHash,
		data:         data,
		timestamp:    timestamp,
		nonce:        0,
		algorithm:    hashing.DEFAULT_ALGORITHM,
	}
	block.hash = block.Digest()
	return &block
}

// Restore rebuilds a block from recorded fields without recomputing the hash.
func Restore(
	index uint64,
	previousHash string,
	data string,
	timestamp string,
	nonce uint64,
	hash string,
	algorithm hashing.Algorithm,
) (*Block, error) {
	if !algorithm.Valid() {
		return nil, fmt.Errorf("invalid hash algorithm %d", algorithm)
	}
	return &Block{
		index:        index,
		previousHash: previousHash,
		data:         data,
		timestamp:    timestamp,
		nonce:        nonce,
		hash:         hash,
		algorithm:    algorithm,
	}, nil
}

// EncodePayload turns a structured value into block data.
func EncodePayload(v interface{}) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	enc, err := common.Encode(v)
	if err != nil {
		return "", err
	}
	return string(enc), nil
}

func (b *Block) Index() uint64 {
	return b.index
}

func (b *Block) PreviousHash() string {
	return b.previousHash
}

func (b *Block) Data() string {
	return b.data
}

func (b *Block) Timestamp() string {
	return b.timestamp
}

func (b *Block) Nonce() uint64 {
	return b.nonce
}

func (b *Block) Hash() string {
	return b.hash
}

func (b *Block) Algorithm() hashing.Algorithm {
	return b.algorithm
}

// ID is the base58 form of the hash.
func (b *Block) ID() string {
	return hashing.ID(b.hash)
}

// Digest computes the hash the current fields should have. It does not
// modify the block.
func (b *Block) Digest() string {
	return b.DigestAt(b.nonce)
}

func (b *Block) DigestAt(nonce uint64) string {
	input := strconv.FormatUint(b.index, 10) +
		b.previousHash +
		b.data +
		b.timestamp +
		strconv.FormatUint(nonce, 10)
	return b.algorithm.SumHex([]byte(input))
}

func (b *Block) Verify() bool {
	return b.hash == b.Digest()
}

func (b *Block) Sealed(difficulty int) bool {
	return pow.Meets(b.hash, difficulty)
}

// Link points the block at its predecessor and switches it to the given
// algorithm. The hash is recomputed for the current nonce.
func (b *Block) Link(previousHash string, algorithm hashing.Algorithm) error {
	if !algorithm.Valid() {
		return fmt.Errorf("invalid hash algorithm %d", algorithm)
	}
	b.previousHash = previousHash
	b.algorithm = algorithm
	b.hash = b.Digest()
	return nil
}

// Mine increments the nonce until the hash carries difficulty leading
// zeros. The block is left untouched when the search fails.
func (b *Block) Mine(
	ctx context.Context, difficulty int, opts ...pow.Option,
) (pow.Result, error) {
	miner, err := pow.NewProofOfWork(difficulty, opts...)
	if err != nil {
		return pow.Result{}, err
	}

	logx.Debug("POW", fmt.Sprintf("mining block %d at difficulty %d", b.index, difficulty))
	res, err := miner.Run(ctx, b.nonce, b.hash, b.DigestAt)
	if err != nil {
		return res, err
	}

	b.nonce = res.Nonce
	b.hash = res.Hash
	logx.Debug("POW", fmt.Sprintf(
		"mined block %d nonce: %d iterations: %d hash: %s",
		b.index, b.nonce, res.Iterations, b.hash,
	))
	return res, nil
}

func (b *Block) Clone() *Block {
	c := *b
	return &c
}

func (b *Block) String() string {
	return fmt.Sprintf(
		"Block{index: %d, data: %q, timestamp: %q, nonce: %d, hash: %s, previous: %s}",
		b.index, b.data, b.timestamp, b.nonce, b.hash, b.previousHash,
	)
}

func (b Block) MarshalJSON() ([]byte, error) {
	var algorithm string
	if b.algorithm.Valid() {
		algorithm = b.algorithm.ToString()
	}
	return common.Encode(record{
		Index:        b.index,
		PreviousHash: b.previousHash,
		Data:         b.data,
		Timestamp:    b.timestamp,
		Nonce:        b.nonce,
		Hash:         b.hash,
		Algorithm:    algorithm,
	})
}

func (b *Block) UnmarshalJSON(raw []byte) error {
	r, err := common.Decode[record](raw)
	if err != nil {
		return err
	}
	algorithm, err := hashing.ParseAlgorithm(r.Algorithm)
	if err != nil {
		return err
	}
	restored, err := Restore(
		r.Index, r.PreviousHash, r.Data, r.Timestamp, r.Nonce, r.Hash, algorithm,
	)
	if err != nil {
		return err
	}
	*b = *restored
	return nil
}
