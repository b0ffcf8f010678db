package cli

import (
	"fmt"
	"io"

	"simple-ledger-go/quantum"
)

type quantumOptions struct {
	input string
	shots int
	seed  int64
}

func runQuantum(w io.Writer, opts quantumOptions) error {
	qopts := []quantum.Option{quantum.WithShots(opts.shots)}
	if opts.seed != 0 {
		qopts = append(qopts, quantum.WithSeed(opts.seed))
	}
	out, err := quantum.Digest(opts.input, qopts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "input:  %s\noutput: %s\n", opts.input, out)
	return nil
}
