package quantum

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"strings"
)

// Circuit is a statevector simulator. Bit q of a basis index is qubit q,
// and bit strings print qubit 0 right-most.
type Circuit struct {
	qubits int
	state  []complex128
}

func NewCircuit(qubits int) (*Circuit, error) {
	if qubits < 1 || qubits > MAX_QUBITS {
		return nil, fmt.Errorf("qubit count %d out of range 1..%d", qubits, MAX_QUBITS)
	}
	state := make([]complex128, 1<<qubits)
	state[0] = 1
	return &Circuit{qubits: qubits, state: state}, nil
}

func (c *Circuit) Qubits() int {
	return c.qubits
}

func (c *Circuit) check(q int) {
	if q < 0 || q >= c.qubits {
		panic(fmt.Sprintf("qubit %d out of range", q))
	}
}

func (c *Circuit) H(q int) {
	c.check(q)
	mask := 1 << q
	for i := range c.state {
		if i&mask != 0 {
			continue
		}
		a, b := c.state[i], c.state[i|mask]
		c.state[i] = (a + b) * complex(math.Sqrt2/2, 0)
		c.state[i|mask] = (a - b) * complex(math.Sqrt2/2, 0)
	}
}

func (c *Circuit) X(q int) {
	c.check(q)
	mask := 1 << q
	for i := range c.state {
		if i&mask == 0 {
			c.state[i], c.state[i|mask] = c.state[i|mask], c.state[i]
		}
	}
}

func (c *Circuit) CZ(control, target int) {
	c.check(control)
	c.check(target)
	if control == target {
		panic("cz needs two distinct qubits")
	}
	mask := 1<<control | 1<<target
	for i := range c.state {
		if i&mask == mask {
			c.state[i] = -c.state[i]
		}
	}
}

func (c *Circuit) HAll() {
	for q := 0; q < c.qubits; q++ {
		c.H(q)
	}
}

func (c *Circuit) XAll() {
	for q := 0; q < c.qubits; q++ {
		c.X(q)
	}
}

// Probabilities returns the measurement distribution over basis states.
func (c *Circuit) Probabilities() []float64 {
	probs := make([]float64, len(c.state))
	for i, amp := range c.state {
		p := cmplx.Abs(amp)
		probs[i] = p * p
	}
	return probs
}

// Sample measures every qubit shots times and counts the outcomes.
func (c *Circuit) Sample(rng *rand.Rand, shots int) map[string]int {
	probs := c.Probabilities()
	counts := map[string]int{}
	for s := 0; s < shots; s++ {
		r := rng.Float64()
		outcome := len(probs) - 1
		acc := 0.0
		for i, p := range probs {
			acc += p
			if r < acc {
				outcome = i
				break
			}
		}
		counts[c.bitString(outcome)]++
	}
	return counts
}

func (c *Circuit) bitString(index int) string {
	var sb strings.Builder
	for q := c.qubits - 1; q >= 0; q-- {
		if index&(1<<q) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
