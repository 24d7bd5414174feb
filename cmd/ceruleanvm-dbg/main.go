// Command ceruleanvm_dbg loads a CRVM bytecode file and enters an
// interactive debugger, either a line-mode REPL or the tcell/tview TUI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ceruleanvm/ceruleanvm/config"
	"github.com/ceruleanvm/ceruleanvm/debugger"
	"github.com/ceruleanvm/ceruleanvm/loader"
	"github.com/ceruleanvm/ceruleanvm/vm"
)

func main() {
	var (
		useTUI     bool
		heapSize   uint
		stackSize  uint
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "ceruleanvm_dbg <bytecode-file>",
		Short: "Interactively debug a CRVM bytecode program",
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
			if heapSize != 0 {
				cfg.Execution.HeapSize = heapSize
			}
			if stackSize != 0 {
				cfg.Execution.StackSize = stackSize
			}

			e := vm.NewEngine(vm.Options{
				HeapSize:  int(cfg.Execution.HeapSize),
				StackSize: int(cfg.Execution.StackSize),
				Out:       os.Stdout,
				In:        os.Stdin,
			})
			if err := loader.FromFile(e, args[0]); err != nil {
				return err
			}

			dbg := debugger.NewDebugger(e)
			if useTUI || cfg.Debugger.UseTUI {
				return debugger.RunTUI(dbg)
			}
			return debugger.RunCLI(dbg, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&useTUI, "tui", false, "use the full-screen debugger instead of the line REPL")
	cmd.Flags().UintVar(&heapSize, "heap-size", 0, "heap segment size in bytes (0 = config/default)")
	cmd.Flags().UintVar(&stackSize, "stack-size", 0, "stack segment size in bytes (0 = config/default)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a config.toml (default: platform config dir)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
