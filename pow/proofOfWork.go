package pow

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const (
	MAX_NONCE      = math.MaxUint64
	CHECK_INTERVAL = 1 << 10 // attempts between context checks
)

var (
	ErrIterationLimit     = errors.New("mining iteration limit reached")
	ErrNonceExhausted     = errors.New("nonce space exhausted")
	ErrNegativeDifficulty = errors.New("difficulty must not be negative")
)

// DigestFunc returns the hex digest of the sealed content for nonce.
// It is called from several goroutines when more than one worker runs.
type DigestFunc func(nonce uint64) string

type Result struct {
	Nonce      uint64
	Hash       string
	Iterations uint64
}

type ProofOfWork struct {
	difficulty    int
	prefix        string
	maxIterations uint64
	workers       int
}

type Option func(*ProofOfWork)

// WithMaxIterations bounds the number of digests tried after the starting
// nonce. Zero means unbounded.
func WithMaxIterations(n uint64) Option {
	return func(pow *ProofOfWork) {
		pow.maxIterations = n
	}
}

// WithWorkers splits the search over n goroutines. The nonce found is
// then whichever worker wins the race, not necessarily the smallest.
func WithWorkers(n int) Option {
	return func(pow *ProofOfWork) {
		if n < 1 {
			n = 1
		}
		pow.workers = n
	}
}

func NewProofOfWork(difficulty int, opts ...Option) (*ProofOfWork, error) {
	if difficulty < 0 {
		return nil, ErrNegativeDifficulty
	}
	pow := ProofOfWork{
		difficulty: difficulty,
		prefix:     strings.Repeat("0", difficulty),
		workers:    1,
	}
	for _, opt := range opts {
		opt(&pow)
	}
	return &pow, nil
}

func (pow *ProofOfWork) Difficulty() int {
	return pow.difficulty
}

func (pow *ProofOfWork) Validate(hash string) bool {
	return strings.HasPrefix(hash, pow.prefix)
}

// Meets reports whether hash starts with at least difficulty '0' characters.
func Meets(hash string, difficulty int) bool {
	return LeadingZeros(hash) >= difficulty
}

func LeadingZeros(hash string) int {
	n := 0
	for n < len(hash) && hash[n] == '0' {
		n++
	}
	return n
}

// Run searches nonces from start upwards. startHash is the digest already
// known for start; when it satisfies the target no work is done.
func (pow *ProofOfWork) Run(
	ctx context.Context, start uint64, startHash string, digest DigestFunc,
) (Result, error) {
	if pow.Validate(startHash) {
		return Result{Nonce: start, Hash: startHash}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{Nonce: start, Hash: startHash}, err
	}
	if pow.workers > 1 {
		return pow.runParallel(ctx, start, digest)
	}
	return pow.runSequential(ctx, start, startHash, digest)
}

func (pow *ProofOfWork) runSequential(
	ctx context.Context, start uint64, startHash string, digest DigestFunc,
) (Result, error) {
	nonce := start
	hash := startHash
	var iterations uint64
	for !pow.Validate(hash) {
		if pow.maxIterations > 0 && iterations >= pow.maxIterations {
			return Result{Nonce: nonce, Hash: hash, Iterations: iterations}, ErrIterationLimit
		}
		if nonce == MAX_NONCE {
			return Result{Nonce: nonce, Hash: hash, Iterations: iterations}, ErrNonceExhausted
		}
		if iterations%CHECK_INTERVAL == 0 {
			if err := ctx.Err(); err != nil {
				return Result{Nonce: nonce, Hash: hash, Iterations: iterations}, err
			}
		}
		nonce++
		iterations++
		hash = digest(nonce)
	}
	return Result{Nonce: nonce, Hash: hash, Iterations: iterations}, nil
}

// worker w tries start+1+w, start+1+w+workers, ...
func (pow *ProofOfWork) runParallel(
	ctx context.Context, start uint64, digest DigestFunc,
) (Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	step := uint64(pow.workers)

	var (
		tried  atomic.Uint64
		found  atomic.Bool
		mu     sync.Mutex
		winner Result
	)

	for w := 0; w < pow.workers; w++ {
		first := start + 1 + uint64(w)
		if first <= start {
			// wrapped around the nonce space
			continue
		}
		g.Go(func() error {
			var local uint64
			for nonce := first; ; nonce += step {
				if found.Load() {
					return nil
				}
				n := tried.Add(1)
				if pow.maxIterations > 0 && n > pow.maxIterations {
					return ErrIterationLimit
				}
				local++
				if local%CHECK_INTERVAL == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}

				hash := digest(nonce)
				if pow.Validate(hash) {
					mu.Lock()
					if !found.Load() {
						winner = Result{Nonce: nonce, Hash: hash}
						found.Store(true)
					}
					mu.Unlock()
					return nil
				}
				if nonce > MAX_NONCE-step {
					return ErrNonceExhausted
				}
			}
		})
	}

	err := g.Wait()
	if found.Load() {
		winner.Iterations = min(tried.Load(), pow.limitOrMax())
		return winner, nil
	}
	if err == nil {
		err = ErrNonceExhausted
	}
	return Result{Nonce: start, Iterations: min(tried.Load(), pow.limitOrMax())}, err
}

func (pow *ProofOfWork) limitOrMax() uint64 {
	if pow.maxIterations == 0 {
		return math.MaxUint64
	}
	return pow.maxIterations
}
