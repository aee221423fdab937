package loader_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/loader"
)

var _ = Describe("ROM Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "rom-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		It("should load an image byte for byte", func() {
			path := filepath.Join(tempDir, "test.ch8")
			Expect(os.WriteFile(path, []byte{0x6A, 0x02, 0x12, 0x02}, 0o644)).To(Succeed())

			prog, err := loader.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Path).To(Equal(path))
			Expect(prog.Origin).To(Equal(uint16(emu.ProgramStart)))
			Expect(prog.Data).To(Equal([]byte{0x6A, 0x02, 0x12, 0x02}))
			Expect(prog.Size()).To(Equal(4))
		})

		It("should fail for a missing file", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing.ch8"))

			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})

		It("should reject an empty file", func() {
			path := filepath.Join(tempDir, "empty.ch8")
			Expect(os.WriteFile(path, nil, 0o644)).To(Succeed())

			_, err := loader.Load(path)

			Expect(errors.Is(err, loader.ErrEmptyProgram)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("empty.ch8"))
		})
	})

	Describe("Read", func() {
		It("should accept an image that fills program memory", func() {
			prog, err := loader.Read(bytes.NewReader(make([]byte, emu.MaxProgramSize)))

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Size()).To(Equal(emu.MaxProgramSize))
		})

		It("should reject an image one byte too large", func() {
			_, err := loader.Read(bytes.NewReader(make([]byte, emu.MaxProgramSize+1)))

			Expect(errors.Is(err, loader.ErrProgramTooLarge)).To(BeTrue())
		})

		It("should load into an emulator", func() {
			prog, err := loader.Read(bytes.NewReader([]byte{0x60, 0x2A}))
			Expect(err).NotTo(HaveOccurred())

			e := emu.NewEmulator()
			Expect(e.LoadProgram(prog.Data)).To(Succeed())
			e.Step()

			Expect(e.RegFile().V[0]).To(Equal(uint8(0x2A)))
		})
	})
})
