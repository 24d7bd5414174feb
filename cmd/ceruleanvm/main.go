// Command ceruleanvm loads a CRVM bytecode file and runs it to completion.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ceruleanvm/ceruleanvm/config"
	"github.com/ceruleanvm/ceruleanvm/loader"
	"github.com/ceruleanvm/ceruleanvm/vm"
)

func main() {
	var (
		maxCycles uint64
		heapSize  uint
		stackSize uint
		trace     bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "ceruleanvm <bytecode-file>",
		Short: "Run a CRVM bytecode program to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if configPath != "" {
				loaded, err := config.LoadFrom(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if maxCycles != 0 {
				cfg.Execution.MaxCycles = maxCycles
			}
			if heapSize != 0 {
				cfg.Execution.HeapSize = heapSize
			}
			if stackSize != 0 {
				cfg.Execution.StackSize = stackSize
			}

			e := vm.NewEngine(vm.Options{
				HeapSize:  int(cfg.Execution.HeapSize),
				StackSize: int(cfg.Execution.StackSize),
				MaxCycles: cfg.Execution.MaxCycles,
				Out:       os.Stdout,
				In:        os.Stdin,
			})
			e.Trace = trace || cfg.Execution.EnableTrace

			if err := loader.FromFile(e, args[0]); err != nil {
				return err
			}
			if err := e.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "ceruleanvm: %v\n", err)
				os.Exit(2)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0, "abort after this many instructions (0 = config/default)")
	cmd.Flags().UintVar(&heapSize, "heap-size", 0, "heap segment size in bytes (0 = config/default)")
	cmd.Flags().UintVar(&stackSize, "stack-size", 0, "stack segment size in bytes (0 = config/default)")
	cmd.Flags().BoolVar(&trace, "trace", false, "log every decoded instruction before executing it")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a config.toml (default: platform config dir)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
