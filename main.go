package main

import (
	"os"

	"simple-ledger-go/cli"
	"simple-ledger-go/logx"
)

func main() {
	err := cli.Run()
	if err != nil {
		logx.Error("MAIN", err)
		os.Exit(1)
	}
}
