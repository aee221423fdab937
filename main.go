// Package main provides the entry point for c8sim.
// c8sim is a CHIP-8 virtual machine with a frame-timed core model.
//
// For the full CLI, use: go run ./cmd/c8sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("c8sim - CHIP-8 virtual machine")
	fmt.Println("")
	fmt.Println("Usage: c8sim [options] <program>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -d          Print a disassembly and exit")
	fmt.Println("  -config     Path to TOML configuration file")
	fmt.Println("  -frontend   sdl, term or headless")
	fmt.Println("  -v          Log verbosity")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/c8sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/c8sim' instead.")
	}
}
