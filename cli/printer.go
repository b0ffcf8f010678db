package cli

import (
	"fmt"
	"io"
	"strconv"

	"simple-ledger-go/blockchain"

	"github.com/pterm/pterm"
)

func printChain(w io.Writer, bc *blockchain.Blockchain) error {
	data := pterm.TableData{
		{"Index", "Data", "Nonce", "Hash", "Id"},
	}
	for _, b := range bc.Blocks() {
		data = append(data, []string{
			strconv.FormatUint(b.Index(), 10),
			b.Data(),
			strconv.FormatUint(b.Nonce(), 10),
			b.Hash(),
			b.ID(),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)
	fmt.Fprintln(w, pterm.Success.Sprintf(
		"chain of %d blocks is valid (difficulty %d, %s)",
		bc.Len(), bc.Difficulty(), bc.Algorithm().ToString(),
	))
	return nil
}
