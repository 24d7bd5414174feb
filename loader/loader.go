// Package loader reads a CRVM bytecode file into an Engine. The format has
// no header, no magic number, and no checksum: a program is exactly its raw
// little-endian instruction stream, and length is implicit from file size.
package loader

import (
	"fmt"
	"os"

	"github.com/ceruleanvm/ceruleanvm/vm"
)

// FromFile reads the bytecode at path in full and loads it into engine.
func FromFile(engine *vm.Engine, path string) error {
	bytecode, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loader: read %s: %w", path, err)
	}
	return FromBytes(engine, bytecode)
}

// FromBytes loads a raw bytecode image into engine. It is the single point
// where a caller hands a byte slice to the machine, whether that slice came
// from a file, a test fixture, or the emit tool.
func FromBytes(engine *vm.Engine, bytecode []byte) error {
	if err := engine.Load(bytecode); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return nil
}
