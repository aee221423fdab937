package benchmarks

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each one
// targets a single instruction class and leaves its answer in V0.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		countdownLoop(),
		subroutineCalls(),
		bulkTransfer(),
		bcdConversion(),
		spriteDraw(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation: a loop,
// calls, and drawing.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countdownLoop(),
		subroutineCalls(),
		spriteDraw(),
	}
}

// 1. Arithmetic Sequential - ALU throughput
func arithmeticSequential() Benchmark {
	words := make([]uint16, 0, 21)
	for i := 0; i < 20; i++ {
		words = append(words, 0x7001) // add V0, 0x01
	}
	words = append(words, 0x1228) // jp self

	return Benchmark{
		Name:           "arithmetic_sequential",
		Description:    "20 add-immediates - measures ALU cost",
		Program:        BuildProgram(words...),
		Frames:         5,
		ExpectedResult: 20,
	}
}

// 2. Countdown Loop - a counted loop with a skip and a jump
func countdownLoop() Benchmark {
	return Benchmark{
		Name:        "countdown_loop",
		Description: "10 iterations of add/decrement/skip/jump - measures branch cost",
		Program: BuildProgram(
			0x6000, // 200: ld V0, 0x00
			0x610A, // 202: ld V1, 0x0a
			0x7001, // 204: add V0, 0x01
			0x71FF, // 206: add V1, 0xff
			0x3100, // 208: se V1, 0x00
			0x1204, // 20a: jp 0x0204
			0x120C, // 20c: jp self
		),
		Frames:         10,
		ExpectedResult: 10,
	}
}

// 3. Subroutine Calls - call/return pairs
func subroutineCalls() Benchmark {
	return Benchmark{
		Name:        "subroutine_calls",
		Description: "3 calls to a one-instruction subroutine",
		Program: BuildProgram(
			0x6000, // 200: ld V0, 0x00
			0x220A, // 202: call 0x020a
			0x220A, // 204: call 0x020a
			0x220A, // 206: call 0x020a
			0x1208, // 208: jp self
			0x7001, // 20a: add V0, 0x01
			0x00EE, // 20c: ret
		),
		Frames:         5,
		ExpectedResult: 3,
	}
}

// 4. Bulk Transfer - register block store and load through I
func bulkTransfer() Benchmark {
	return Benchmark{
		Name:        "bulk_transfer",
		Description: "store V0-V1, clobber V0, load V0-V1 - measures transfer cost",
		Program: BuildProgram(
			0xA300, // 200: ld I, 0x0300
			0x6005, // 202: ld V0, 0x05
			0x6106, // 204: ld V1, 0x06
			0xF155, // 206: ld [I], V1
			0x6000, // 208: ld V0, 0x00
			0xF165, // 20a: ld V1, [I]
			0x120C, // 20c: jp self
		),
		Frames:         5,
		ExpectedResult: 5,
	}
}

// 5. BCD Conversion - decimal digits through memory
func bcdConversion() Benchmark {
	return Benchmark{
		Name:        "bcd_conversion",
		Description: "BCD of 254 read back into V0-V2",
		Program: BuildProgram(
			0xA300, // 200: ld I, 0x0300
			0x62FE, // 202: ld V2, 0xfe
			0xF233, // 204: ld B, V2
			0xF265, // 206: ld V2, [I]
			0x1208, // 208: jp self
		),
		Frames:         5,
		ExpectedResult: 2,
	}
}

// 6. Sprite Draw - glyph drawing across the screen
func spriteDraw() Benchmark {
	return Benchmark{
		Name:        "sprite_draw",
		Description: "8 glyphs drawn left to right - measures draw cost",
		Program: BuildProgram(
			0x6000, // 200: ld V0, 0x00
			0x6100, // 202: ld V1, 0x00
			0x6208, // 204: ld V2, 0x08
			0xF229, // 206: ld F, V2
			0xD015, // 208: drw V0, V1, 0x5
			0x7005, // 20a: add V0, 0x05
			0x72FF, // 20c: add V2, 0xff
			0x3200, // 20e: se V2, 0x00
			0x1206, // 210: jp 0x0206
			0x1212, // 212: jp self
		),
		Frames:         30,
		ExpectedResult: 40,
	}
}
