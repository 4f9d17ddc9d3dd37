package renderer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/achilleasa/skytrace/scene"
	"github.com/achilleasa/skytrace/tracer"
	"github.com/achilleasa/skytrace/tracer/cpu"
	"github.com/achilleasa/skytrace/types"
)

func testSetup() (*scene.Scene, *scene.Camera) {
	sc := scene.NewScene()
	sc.AddSphere(scene.Sphere{Center: types.XYZ(0, 1, -3), Radius: 1, Albedo: types.XYZ(0.2, 0.8, 0.2), Specular: types.Splat3(0.04)})
	sc.AddSphere(scene.Sphere{Center: types.XYZ(-2, 0.75, -5), Radius: 0.75, Specular: types.Splat3(0.8)})

	cam := scene.NewCamera(60)
	cam.Position = types.XYZ(0, 1.5, 2)
	return sc, cam
}

func cpuTracers(count int) []tracer.Tracer {
	tracers := make([]tracer.Tracer, count)
	for i := range tracers {
		tracers[i] = cpu.NewTracer(string(rune('a'+i)), 1, cpu.DefaultKernelOptions())
	}
	return tracers
}

func TestNewDefaultErrors(t *testing.T) {
	sc, cam := testSetup()
	opts := Options{FrameW: 4, FrameH: 4}

	type spec struct {
		sc      *scene.Scene
		cam     *scene.Camera
		tracers []tracer.Tracer
		expErr  error
	}
	specs := []spec{
		{sc, cam, nil, ErrNoTracers},
		{nil, cam, cpuTracers(1), ErrSceneNotDefined},
		{sc, nil, cpuTracers(1), ErrCameraNotDefined},
	}

	for index, s := range specs {
		r, err := NewDefault(s.sc, s.cam, tracer.NaiveScheduler(), s.tracers, opts)
		if err != s.expErr {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
		if r != nil {
			t.Fatalf("[spec %d] expected renderer to be nil", index)
		}
		for _, tr := range s.tracers {
			tr.Close()
		}
	}
}

func TestRenderMatchesKernel(t *testing.T) {
	const frameW, frameH = 24, 16
	sc, cam := testSetup()

	r, err := NewDefault(sc, cam, tracer.NaiveScheduler(), cpuTracers(3), Options{FrameW: frameW, FrameH: frameH, Exposure: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	img, err := r.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if img.Bounds().Dx() != frameW || img.Bounds().Dy() != frameH {
		t.Fatalf("expected a %dx%d image; got %v", frameW, frameH, img.Bounds())
	}

	fr := &cpu.Frame{Scene: sc, Pose: cam.Pose()}
	for y := uint32(0); y < frameH; y++ {
		for x := uint32(0); x < frameW; x++ {
			px := cpu.RenderPixel(x, y, frameW, frameH, cpu.PixelCenter, fr, cpu.DefaultKernelOptions())
			exp := tonemapChannel(px[0], 1)
			if got := img.RGBAAt(int(x), int(y)).R; got != exp {
				t.Fatalf("pixel (%d, %d): expected red channel %d; got %d", x, y, exp, got)
			}
		}
	}

	stats := r.Stats()
	if len(stats.Tracers) != 3 {
		t.Fatalf("expected stats for 3 tracers; got %d", len(stats.Tracers))
	}
	var totalH uint32
	for _, st := range stats.Tracers {
		totalH += st.BlockH
	}
	if totalH != frameH {
		t.Fatalf("expected block heights to add up to %d; got %d", frameH, totalH)
	}
	if !stats.Tracers[0].IsPrimary {
		t.Fatal("expected first tracer to be marked as primary")
	}
	if stats.Samples != 1 {
		t.Fatalf("expected 1 accumulated sample; got %d", stats.Samples)
	}
}

func TestTracerCountDoesNotAffectOutput(t *testing.T) {
	const frameW, frameH = 16, 16
	opts := Options{FrameW: frameW, FrameH: frameH, SamplesPerPixel: 3, Exposure: 1.5, Seed: 7}

	render := func(count int, scheduler tracer.BlockScheduler) []uint8 {
		sc, cam := testSetup()
		r, err := NewDefault(sc, cam, scheduler, cpuTracers(count), opts)
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()

		// Render twice so that the perfect scheduler uses feedback from the first pass
		if _, err = r.Render(context.Background()); err != nil {
			t.Fatal(err)
		}
		r.UpdateCamera(cam)
		img, err := r.Render(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return img.Pix
	}

	single := render(1, tracer.NaiveScheduler())
	multi := render(4, tracer.PerfectScheduler())
	for i := range single {
		if single[i] != multi[i] {
			t.Fatalf("expected identical output for 1 and 4 tracers; first mismatch at byte %d", i)
		}
	}
}

func TestUpdatesResetAccumulation(t *testing.T) {
	sc, cam := testSetup()
	r, err := NewDefault(sc, cam, tracer.NaiveScheduler(), cpuTracers(1), Options{FrameW: 8, FrameH: 8, SamplesPerPixel: 2, Exposure: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := r.Stats().Samples; got != 2 {
		t.Fatalf("expected 2 accumulated samples; got %d", got)
	}

	cam.Move(scene.Forward, 1)
	r.UpdateCamera(cam)
	if got := r.(*defaultRenderer).sampleIndex; got != 0 {
		t.Fatalf("expected camera update to reset the sample counter; got %d", got)
	}

	r.UpdateScene(scene.NewScene())
	r.SetSky(nil)
	if _, err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := r.Stats().Samples; got != 2 {
		t.Fatalf("expected 2 accumulated samples after the update; got %d", got)
	}
}

func TestRenderInterrupted(t *testing.T) {
	sc, cam := testSetup()
	r, err := NewDefault(sc, cam, tracer.NaiveScheduler(), cpuTracers(2), Options{FrameW: 8, FrameH: 8, SamplesPerPixel: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err = r.Render(ctx); err != ErrInterrupted {
		t.Fatalf("expected ErrInterrupted; got %v", err)
	}
}

type failingTracer struct {
	tracer.Tracer
	err error
}

func (tr *failingTracer) Id() string { return "failing" }
func (tr *failingTracer) Close() {}
func (tr *failingTracer) SpeedEstimate() float32 { return 1 }
func (tr *failingTracer) Setup(*tracer.Surface) error { return nil }
func (tr *failingTracer) AppendChange(tracer.ChangeType, interface{}) {}
func (tr *failingTracer) Stats() *tracer.Stats { return &tracer.Stats{} }
func (tr *failingTracer) Enqueue(req tracer.BlockRequest) {
	req.ErrChan <- tr.err
}

func TestRenderPropagatesTracerErrors(t *testing.T) {
	sc, cam := testSetup()
	expErr := errors.New("device lost")
	tracers := append(cpuTracers(1), &failingTracer{err: expErr})

	r, err := NewDefault(sc, cam, tracer.NaiveScheduler(), tracers, Options{FrameW: 8, FrameH: 8})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err = r.Render(context.Background()); err != expErr {
		t.Fatalf("expected tracer error to be propagated; got %v", err)
	}
}

func TestTonemap(t *testing.T) {
	type spec struct {
		in       float32
		exposure float32
		exp      uint8
	}
	specs := []spec{
		{0, 1, 0},
		{-1, 1, 0},
		{1, 1, 186},
		{3, 1, 224},
		{0.5, 2, 186},
		{1000, 1, 255},
		{float32(math.Inf(1)), 1, 255},
		{float32(math.NaN()), 1, 0},
	}

	for index, s := range specs {
		surface := tracer.NewSurface(1, 1)
		surface.Set(0, 0, types.XYZW(s.in, s.in, s.in, 1))
		img := Tonemap(surface, s.exposure)
		px := img.RGBAAt(0, 0)
		if px.R != s.exp || px.G != s.exp || px.B != s.exp || px.A != 255 {
			t.Fatalf("[spec %d] expected tonemapped value %d; got %v", index, s.exp, px)
		}
	}
}

// Cancels the render context as soon as a block is enqueued.
type cancellingTracer struct {
	tracer.Tracer
	cancel context.CancelFunc
}

func (tr *cancellingTracer) Enqueue(req tracer.BlockRequest) {
	tr.cancel()
	tr.Tracer.Enqueue(req)
}

// Fails every block after the first failAfter ones.
type flakyTracer struct {
	tracer.Tracer
	failAfter int
	calls     int
}

func (tr *flakyTracer) Enqueue(req tracer.BlockRequest) {
	tr.calls++
	if tr.calls > tr.failAfter {
		req.ErrChan <- errors.New("block failed")
		return
	}
	tr.Tracer.Enqueue(req)
}

func TestInterruptedSampleIsCounted(t *testing.T) {
	opts := Options{FrameW: 8, FrameH: 8, SamplesPerPixel: 3, Exposure: 1, Seed: 11}

	sc, cam := testSetup()
	ref, err := NewDefault(sc, cam, tracer.NaiveScheduler(), cpuTracers(1), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer ref.Close()
	expImg, err := ref.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	sc, cam = testSetup()
	ctx, cancel := context.WithCancel(context.Background())
	tr := &cancellingTracer{Tracer: cpuTracers(1)[0], cancel: cancel}
	r, err := NewDefault(sc, cam, tracer.NaiveScheduler(), []tracer.Tracer{tr}, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err = r.Render(ctx); err != ErrInterrupted {
		t.Fatalf("expected ErrInterrupted; got %v", err)
	}
	if got := r.(*defaultRenderer).sampleIndex; got != 1 {
		t.Fatalf("expected the completed sample to be counted; got sample index %d", got)
	}

	// Resume without interruptions
	tr.cancel = func() {}
	img, err := r.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i := range expImg.Pix {
		if img.Pix[i] != expImg.Pix[i] {
			t.Fatalf("expected resumed render to match an uninterrupted one; first mismatch at byte %d", i)
		}
	}
}

func TestFailedSampleRestartsAccumulation(t *testing.T) {
	sc, cam := testSetup()
	tr := &flakyTracer{Tracer: cpuTracers(1)[0], failAfter: 1}
	r, err := NewDefault(sc, cam, tracer.NaiveScheduler(), []tracer.Tracer{tr}, Options{FrameW: 8, FrameH: 8, SamplesPerPixel: 3})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err = r.Render(context.Background()); err == nil {
		t.Fatal("expected the second sample to fail")
	}
	if got := r.(*defaultRenderer).sampleIndex; got != 0 {
		t.Fatalf("expected accumulation to restart after a failed sample; got sample index %d", got)
	}
}
