// Validate the decoder over every 16-bit word and measure decode throughput.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sarchlab/c8sim/insts"
)

// validWords is the number of words the decode table accepts.
const validWords = 43954

func main() {
	decoder := insts.NewDecoder()

	counts := map[insts.Op]int{}
	failures := 0

	for w := 0; w <= 0xFFFF; w++ {
		word := uint16(w)
		inst := decoder.Decode(word)
		if inst.Word != word {
			fmt.Printf("0x%04x: decoded word is 0x%04x\n", word, inst.Word)
			failures++
		}

		_, err := decoder.Disassemble(0x200, word)
		if (err != nil) != (inst.Op == insts.OpUnknown) {
			fmt.Printf("0x%04x: decode says %s but disassembly error is %v\n", word, inst.Op, err)
			failures++
		}

		counts[inst.Op]++
	}

	valid := 0x10000 - counts[insts.OpUnknown]
	if valid != validWords {
		fmt.Printf("expected %d valid words, got %d\n", validWords, valid)
		failures++
	}

	// Measure allocations
	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		decoder.Decode(0x6A02) // ld Va, 0x02
		decoder.Decode(0xD015) // drw V0, V1, 0x5
		decoder.Decode(0x8124) // add V1, V2
		decoder.Decode(0xF233) // ld B, V2
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * 4
	allocations := m2.Mallocs - m1.Mallocs

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("Valid words: %d of 65536\n", valid)
	for op := insts.OpUnknown + 1; int(op) <= insts.NumOps; op++ {
		fmt.Printf("  %-10s %5d\n", op, counts[op])
	}
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations per decode: %.2f\n", float64(allocations)/float64(totalDecodes))

	if failures > 0 {
		fmt.Printf("\n%d failures\n", failures)
		os.Exit(1)
	}
}
