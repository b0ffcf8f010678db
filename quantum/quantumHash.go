package quantum

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	MIN_QUBITS    = 2
	MAX_QUBITS    = 16
	DEFAULT_SHOTS = 1024
)

var ErrInvalidInput = errors.New("input must be a bit string")

type settings struct {
	shots int
	seed  int64
}

type Option func(*settings)

func WithShots(n int) Option {
	return func(s *settings) {
		s.shots = n
	}
}

func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

// Digest runs the Grover-style demonstration circuit over input and
// returns the most frequent measured bit string. Ties go to the smallest
// string. It has nothing to do with block hashing.
func Digest(input string, opts ...Option) (string, error) {
	s := settings{
		shots: DEFAULT_SHOTS,
		seed:  time.Now().UnixNano(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.shots < 1 {
		return "", fmt.Errorf("shots must be positive, got %d", s.shots)
	}

	c, err := Prepare(input)
	if err != nil {
		return "", err
	}

	counts := c.Sample(rand.New(rand.NewSource(s.seed)), s.shots)
	outcomes := maps.Keys(counts)
	slices.Sort(outcomes)
	best := outcomes[0]
	for _, o := range outcomes[1:] {
		if counts[o] > counts[best] {
			best = o
		}
	}
	return best, nil
}

// Prepare builds the circuit for input up to, not including, measurement.
func Prepare(input string) (*Circuit, error) {
	n := len(input)
	if n < MIN_QUBITS || n > MAX_QUBITS {
		return nil, fmt.Errorf(
			"%w: length %d out of range %d..%d",
			ErrInvalidInput, n, MIN_QUBITS, MAX_QUBITS,
		)
	}
	for i := 0; i < n; i++ {
		if input[i] != '0' && input[i] != '1' {
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrInvalidInput, input[i], i)
		}
	}

	c, err := NewCircuit(n)
	if err != nil {
		return nil, err
	}
	c.HAll()
	for i := 0; i < n; i++ {
		if input[i] == '1' {
			c.X(i)
		}
	}
	// oracle, then diffusion; both use the same gate pattern
	reflect(c)
	reflect(c)
	return c, nil
}

// H, X, CZ(0, n-1), X, H on the full register
func reflect(c *Circuit) {
	c.HAll()
	c.XAll()
	c.CZ(0, c.Qubits()-1)
	c.XAll()
	c.HAll()
}
