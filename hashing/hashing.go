package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// every supported algorithm produces 32 bytes
const (
	DIGEST_SIZE = 32
	HEX_LEN     = DIGEST_SIZE * 2
)

type Algorithm byte

const (
	SHA256 Algorithm = iota + 1
	SHA3_256
	KECCAK256
	BLAKE2B_256
)

const DEFAULT_ALGORITHM = SHA256

var algorithms = []Algorithm{SHA256, SHA3_256, KECCAK256, BLAKE2B_256}

func Algorithms() []Algorithm {
	return append([]Algorithm(nil), algorithms...)
}

func (a Algorithm) ToString() string {
	switch a {
	case SHA256:
		return "sha256"
	case SHA3_256:
		return "sha3-256"
	case KECCAK256:
		return "keccak256"
	case BLAKE2B_256:
		return "blake2b-256"
	default:
		log.Panicf("unknown algorithm %d", a)
	}
	return ""
}

func (a Algorithm) Valid() bool {
	return a >= SHA256 && a <= BLAKE2B_256
}

func ParseAlgorithm(name string) (Algorithm, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return DEFAULT_ALGORITHM, nil
	}
	for _, a := range algorithms {
		if a.ToString() == n {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown hash algorithm %q", name)
}

func (a Algorithm) Sum(data []byte) [DIGEST_SIZE]byte {
	switch a {
	case SHA256:
		return sha256.Sum256(data)
	case SHA3_256:
		return sha3.Sum256(data)
	case KECCAK256:
		var out [DIGEST_SIZE]byte
		h := sha3.NewLegacyKeccak256()
		h.Write(data)
		copy(out[:], h.Sum(nil))
		return out
	case BLAKE2B_256:
		return blake2b.Sum256(data)
	default:
		log.Panicf("unknown algorithm %d", a)
	}
	return [DIGEST_SIZE]byte{}
}

// SumHex returns the lower-case hex form of Sum.
func (a Algorithm) SumHex(data []byte) string {
	sum := a.Sum(data)
	return hex.EncodeToString(sum[:])
}

// ID is the base58 form of a hex digest. Empty when hexHash is not hex.
func ID(hexHash string) string {
	raw, err := hex.DecodeString(hexHash)
	if err != nil || len(raw) == 0 {
		return ""
	}
	return base58.Encode(raw)
}

func FromID(id string) string {
	raw := base58.Decode(id)
	if len(raw) == 0 {
		return ""
	}
	return hex.EncodeToString(raw)
}
