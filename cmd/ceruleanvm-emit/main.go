// Command ceruleanvm_emit writes a small fixed CRVM bytecode program to a
// file (or stdout): it prints ten asterisks and a newline. It exists to
// give new CRVM programs a starting point without hand-assembling bytes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ceruleanvm/ceruleanvm/vm"
)

// encRI encodes the LUI/LLI shape: dest plus a 16-bit immediate spanning
// bytes 2-3, with byte1's low nibble unused.
func encRI(op vm.Opcode, d int, imm int16) []byte {
	return []byte{byte(op), byte(d << 4), byte(uint16(imm)), byte(uint16(imm) >> 8)}
}

func encRRI(op vm.Opcode, d, s1 int, imm int16) []byte {
	return []byte{byte(op), byte(d<<4 | s1), byte(uint16(imm)), byte(uint16(imm) >> 8)}
}

func encRRR(op vm.Opcode, d, s1, s2 int) []byte {
	return []byte{byte(op), byte(d<<4 | s1), byte(s2 << 4), 0}
}

func encR(op vm.Opcode, d int) []byte {
	return []byte{byte(op), byte(d << 4), 0, 0}
}

func encNone(op vm.Opcode) []byte {
	return []byte{byte(op), 0, 0, 0}
}

// helloLoop builds a program that prints "**********\n": r0 counts up to
// r1's limit of 10, printing r2 ('*') each iteration via a BGE-guarded loop,
// then prints a trailing newline and halts.
func helloLoop() []byte {
	const (
		loopAddr = 20
		endAddr  = 36
	)
	var code []byte
	code = append(code, encRI(vm.OpLLI, 0, 0)...)       // 0:  r0 = 0
	code = append(code, encRI(vm.OpLLI, 1, 10)...)      // 4:  r1 = 10
	code = append(code, encRI(vm.OpLLI, 2, '*')...)     // 8:  r2 = '*'
	code = append(code, encRI(vm.OpLLI, 9, loopAddr)...) // 12: r9 = loop address
	code = append(code, encRI(vm.OpLLI, 8, endAddr)...)  // 16: r8 = end address
	code = append(code, encRRR(vm.OpBGE, 0, 1, 8)...)    // 20: if r0 >= r1 goto end
	code = append(code, encR(vm.OpPUTCHAR, 2)...)        // 24: putchar r2
	code = append(code, encRRI(vm.OpADD32I, 0, 0, 1)...) // 28: r0 += 1
	code = append(code, encR(vm.OpJMP, 9)...)            // 32: goto loop
	code = append(code, encRI(vm.OpLLI, 3, '\n')...)     // 36: r3 = '\n'
	code = append(code, encR(vm.OpPUTCHAR, 3)...)        // 40: putchar r3
	code = append(code, encNone(vm.OpHALT)...)           // 44: halt
	return code
}

func main() {
	var outPath string
	cmd := &cobra.Command{
		Use:   "ceruleanvm_emit",
		Short: "Emit a small demo CRVM bytecode program",
		RunE: func(cmd *cobra.Command, args []string) error {
			code := helloLoop()
			if outPath == "" || outPath == "-" {
				_, err := os.Stdout.Write(code)
				return err
			}
			return os.WriteFile(outPath, code, 0o644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output path (default: stdout)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
