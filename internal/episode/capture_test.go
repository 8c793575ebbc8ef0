package episode

import (
	"bytes"
	"errors"
	"strings"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/simrec/internal/render"
)

var _ = ginkgo.Describe("CaptureLoop", func() {
	var (
		sim      *fakeSession
		renderer *fakeRenderer
		sink     *memSink
		progress *bytes.Buffer
		loop     *CaptureLoop
	)

	ginkgo.BeforeEach(func() {
		sim = newFakeSession()
		renderer = &fakeRenderer{}
		sink = &memSink{}
		progress = &bytes.Buffer{}
		fb, err := render.NewFrameBuffer(2, 2)
		Expect(err).NotTo(HaveOccurred())

		loop = &CaptureLoop{
			Duration:    1,
			FPS:         10,
			Sim:         sim,
			Renderer:    renderer,
			Sink:        sink,
			Frame:       fb,
			VelocityAdr: 0,
			Velocity:    [2]float64{1, 0.25},
			Progress:    progress,
		}
	})

	ginkgo.It("starts running and ends done", func() {
		Expect(loop.State()).To(Equal(Running))
		Expect(loop.Run()).To(Succeed())
		Expect(loop.State()).To(Equal(Done))
		Expect(sim.Time()).To(BeNumerically(">=", 1))
	})

	ginkgo.It("captures about duration*fps frames spaced by more than 1/fps", func() {
		Expect(loop.Run()).To(Succeed())

		Expect(loop.Frames()).To(BeNumerically(">=", 9))
		Expect(loop.Frames()).To(BeNumerically("<=", 11))
		Expect(sink.frames).To(HaveLen(loop.Frames()))

		stamps := loop.Timestamps()
		Expect(stamps).To(HaveLen(loop.Frames()))
		Expect(stamps[0]).To(BeNumerically(">", 0.1))
		for i := 1; i < len(stamps); i++ {
			Expect(stamps[i] - stamps[i-1]).To(BeNumerically(">", 0.1))
		}
	})

	ginkgo.It("captures nothing when the duration is shorter than one frame interval", func() {
		loop.Duration = 0.09
		Expect(loop.Run()).To(Succeed())
		Expect(loop.Frames()).To(BeZero())
		Expect(sink.frames).To(BeEmpty())
		Expect(loop.Steps()).To(BeNumerically(">", 0))
	})

	ginkgo.It("does not step when the clock already reached the duration", func() {
		loop.Duration = 0
		Expect(loop.Run()).To(Succeed())
		Expect(loop.Steps()).To(BeZero())
		Expect(sim.velWrites).To(BeZero())
	})

	ginkgo.It("reasserts the cue velocity before every step", func() {
		Expect(loop.Run()).To(Succeed())
		Expect(sim.velWrites).To(Equal(loop.Steps()))
		Expect(sim.qvel[0]).To(Equal(1.0))
		Expect(sim.qvel[1]).To(Equal(0.25))
	})

	ginkgo.It("prints a progress mark on every tenth frame", func() {
		loop.Duration = 1.2
		loop.FPS = 30
		Expect(loop.Run()).To(Succeed())

		marks := (loop.Frames() + progressEvery - 1) / progressEvery
		Expect(progress.String()).To(Equal(strings.Repeat(".", marks)))
	})

	ginkgo.It("marks frames with x when the renderer flags an error", func() {
		renderer.glError = true
		Expect(loop.Run()).To(Succeed())
		Expect(progress.String()).To(HavePrefix("x"))
		Expect(progress.String()).NotTo(ContainSubstring("."))

		n, first := loop.RenderErrors()
		Expect(n).To(Equal(loop.Frames()))
		Expect(first).To(MatchError("invalid framebuffer operation"))
	})

	ginkgo.It("reports no render errors for clean frames", func() {
		Expect(loop.Run()).To(Succeed())
		n, first := loop.RenderErrors()
		Expect(n).To(BeZero())
		Expect(first).NotTo(HaveOccurred())
	})

	ginkgo.It("stays done after completion", func() {
		Expect(loop.Run()).To(Succeed())
		steps := loop.Steps()

		state, err := loop.Tick()
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(Equal(Done))
		Expect(loop.Steps()).To(Equal(steps))
	})

	ginkgo.It("calls OnStep once per step", func() {
		calls := 0
		loop.OnStep = func() { calls++ }
		Expect(loop.Run()).To(Succeed())
		Expect(calls).To(Equal(loop.Steps()))
	})

	ginkgo.It("aborts on a simulation error", func() {
		sim.failAt = 3
		err := loop.Run()
		Expect(err).To(MatchError(ContainSubstring("diverged")))
		Expect(loop.State()).To(Equal(Running))
	})

	ginkgo.It("aborts on a capture error", func() {
		boom := errors.New("no buffer")
		renderer.fail = boom
		Expect(errors.Is(loop.Run(), boom)).To(BeTrue())
		Expect(sink.frames).To(BeEmpty())
	})
})
