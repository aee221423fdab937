package tone_test

import (
	"os"
	"path/filepath"

	"github.com/go-audio/wav"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/tone"
)

var _ = Describe("Square", func() {
	It("should alternate half periods", func() {
		dst := make([]byte, 8)

		// 4 samples per period
		phase := tone.Square(dst, 0, 1, 4)

		high := byte(tone.Silence + tone.Amplitude)
		low := byte(tone.Silence - tone.Amplitude)
		Expect(dst).To(Equal([]byte{high, high, low, low, high, high, low, low}))
		Expect(phase).To(BeNumerically("~", 0, 1e-9))
	})

	It("should continue from the returned phase", func() {
		first := make([]byte, 3)
		second := make([]byte, 1)

		phase := tone.Square(first, 0, 1, 4)
		tone.Square(second, phase, 1, 4)

		Expect(second[0]).To(Equal(byte(tone.Silence - tone.Amplitude)))
	})
})

var _ = Describe("Generator", func() {
	It("should fill silence when off", func() {
		g := tone.NewGenerator(440)
		dst := make([]byte, 16)

		g.Fill(dst, false)

		for _, s := range dst {
			Expect(s).To(Equal(byte(tone.Silence)))
		}
	})

	It("should produce both levels when on", func() {
		g := tone.NewGenerator(440)
		dst := make([]byte, tone.SamplesPerFrame(tone.SampleRate, 60))

		g.Fill(dst, true)

		Expect(dst).To(ContainElement(byte(tone.Silence + tone.Amplitude)))
		Expect(dst).To(ContainElement(byte(tone.Silence - tone.Amplitude)))
	})
})

var _ = Describe("Recorder", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "tone-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	It("should write one frame of samples per call", func() {
		path := filepath.Join(tempDir, "beep.wav")
		r, err := tone.Create(path, 440, 60)
		Expect(err).NotTo(HaveOccurred())

		Expect(r.AddFrame(false)).To(Succeed())
		Expect(r.AddFrame(true)).To(Succeed())
		Expect(r.AddFrame(true)).To(Succeed())
		Expect(r.Frames()).To(Equal(3))
		Expect(r.Close()).To(Succeed())

		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = f.Close() }()

		dec := wav.NewDecoder(f)
		Expect(dec.IsValidFile()).To(BeTrue())
		Expect(dec.SampleRate).To(Equal(uint32(tone.SampleRate)))
		Expect(dec.NumChans).To(Equal(uint16(1)))
		Expect(dec.BitDepth).To(Equal(uint16(8)))

		buf, err := dec.FullPCMBuffer()
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.Data).To(HaveLen(3 * tone.SamplesPerFrame(tone.SampleRate, 60)))
	})

	It("should fail to create in a missing directory", func() {
		_, err := tone.Create(filepath.Join(tempDir, "no", "beep.wav"), 440, 60)

		Expect(err).To(HaveOccurred())
	})
})
