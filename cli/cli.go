package cli

import (
	"flag"
	"fmt"
	"os"
)

func printUsage() {
	fmt.Println()
	fmt.Println("usage:")
	fmt.Println(" demo [-c CONFIG] [-n BLOCKS] [-json] [-v] (mine and print a chain)")
	fmt.Println(" quantum -i BITS [-shots N] [-seed S] (run the quantum digest)")
	fmt.Println()
}

func validateArgs() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
}

func Run() error {
	validateArgs()
	demoCmd := flag.NewFlagSet("demo", flag.ExitOnError)
	quantumCmd := flag.NewFlagSet("quantum", flag.ExitOnError)

	demoOpts := demoOptions{}
	demoCmd.StringVar(&demoOpts.configPath, "c", "", "config file (.yml, .yaml or .ini)")
	demoCmd.IntVar(&demoOpts.count, "n", 2, "number of blocks to mine after genesis")
	demoCmd.BoolVar(&demoOpts.asJson, "json", false, "print the chain as json")
	demoCmd.BoolVar(&demoOpts.verbose, "v", false, "dump every block")

	quantumOpts := quantumOptions{}
	quantumCmd.StringVar(&quantumOpts.input, "i", "", "input bit string")
	quantumCmd.IntVar(&quantumOpts.shots, "shots", 1024, "number of measurements")
	quantumCmd.Int64Var(&quantumOpts.seed, "seed", 0, "random seed, 0 for a time based seed")

	var err error
	switch os.Args[1] {
	case "demo":
		err = demoCmd.Parse(os.Args[2:])
	case "quantum":
		err = quantumCmd.Parse(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		return err
	}

	fmt.Println()
	if demoCmd.Parsed() {
		err = runDemo(os.Stdout, demoOpts)
	} else if quantumCmd.Parsed() {
		err = runQuantum(os.Stdout, quantumOpts)
	}
	return err
}
