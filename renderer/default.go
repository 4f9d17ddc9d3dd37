package renderer

import (
	"context"
	"image"
	"math/rand"
	"sync"
	"time"

	"github.com/achilleasa/skytrace/asset/texture"
	"github.com/achilleasa/skytrace/log"
	"github.com/achilleasa/skytrace/scene"
	"github.com/achilleasa/skytrace/tracer"
)

// A renderer that splits each sample pass into blocks and distributes them
// to a set of tracers.
type defaultRenderer struct {
	logger log.Logger

	// mutex for synchronizing updates
	sync.Mutex

	scheduler tracer.BlockScheduler
	tracers   []tracer.Tracer
	options   Options

	// The surface where tracers accumulate their samples.
	accum *tracer.Surface

	// Block assignment for the last rendered sample.
	blockAssignments []uint32

	// Number of samples accumulated since the last change.
	sampleIndex uint32

	rng   *rand.Rand
	stats FrameStats
}

// Create a new default renderer using the specified block scheduler and tracers.
// The renderer takes ownership of the tracers and closes them when Close is invoked.
func NewDefault(sc *scene.Scene, cam *scene.Camera, scheduler tracer.BlockScheduler, tracers []tracer.Tracer, opts Options) (Renderer, error) {
	if len(tracers) == 0 {
		return nil, ErrNoTracers
	}
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if cam == nil {
		return nil, ErrCameraNotDefined
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		scheduler: scheduler,
		tracers:   tracers,
		options:   opts,
		accum:     tracer.NewSurface(opts.FrameW, opts.FrameH),
		rng:       rand.New(rand.NewSource(opts.Seed)),
	}

	for _, tr := range tracers {
		if err := tr.Setup(r.accum); err != nil {
			r.Close()
			return nil, err
		}
	}

	r.UpdateScene(sc)
	r.UpdateCamera(cam)
	r.logger.Debugf("attached %d tracer(s) to a %dx%d frame", len(tracers), opts.FrameW, opts.FrameH)

	return r, nil
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	r.Lock()
	defer r.Unlock()
	return r.stats
}

func (r *defaultRenderer) UpdateCamera(cam *scene.Camera) {
	cam.SetupProjection(float32(r.options.FrameW) / float32(r.options.FrameH))
	r.appendChange(tracer.UpdateCamera, cam.Pose())
}

func (r *defaultRenderer) UpdateScene(sc *scene.Scene) {
	r.appendChange(tracer.SetScene, sc.Snapshot())
}

func (r *defaultRenderer) SetSky(sky *texture.Texture) {
	r.appendChange(tracer.SetSky, sky)
}

// Queue a change to all tracers and restart sample accumulation.
func (r *defaultRenderer) appendChange(changeType tracer.ChangeType, data interface{}) {
	r.Lock()
	defer r.Unlock()

	for _, tr := range r.tracers {
		tr.AppendChange(changeType, data)
	}
	r.sampleIndex = 0
}

func (r *defaultRenderer) Render(ctx context.Context) (*image.RGBA, error) {
	r.Lock()
	defer r.Unlock()

	if len(r.tracers) == 0 {
		return nil, ErrNoTracers
	}

	spp := r.options.SamplesPerPixel
	if spp == 0 {
		spp = 1
	}

	start := time.Now()
	for r.sampleIndex < spp {
		if ctx.Err() != nil {
			return nil, ErrInterrupted
		}

		blended, err := r.renderFrame(ctx, r.sampleIndex)
		switch {
		case blended:
			r.sampleIndex++
		case err != nil:
			// Some rows may already hold the failed sample; restart accumulation
			r.sampleIndex = 0
		}
		if err != nil {
			return nil, err
		}
	}

	r.stats.Samples = r.sampleIndex
	r.stats.RenderTime = time.Since(start)
	return Tonemap(r.accum, r.options.Exposure), nil
}

// Render a single sample pass. Blocks that were already enqueued are always
// waited for so that no tracer is still writing to the accumulation surface
// when this method returns. The returned flag is true when every block was
// blended into the surface, even if ctx was cancelled in the meantime.
func (r *defaultRenderer) renderFrame(ctx context.Context, sampleIndex uint32) (bool, error) {
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	doneChan := make(chan uint32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))

	seed := r.rng.Uint32()
	var blockY uint32
	pending := 0
	for index, tr := range r.tracers {
		blockH := r.blockAssignments[index]
		if blockH == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			FrameW:      r.options.FrameW,
			FrameH:      r.options.FrameH,
			BlockY:      blockY,
			BlockH:      blockH,
			Seed:        seed,
			SampleIndex: sampleIndex,
			DoneChan:    doneChan,
			ErrChan:     errChan,
		})
		blockY += blockH
		pending++
	}

	var err error
	blockFailed := false
	for pending > 0 {
		select {
		case <-doneChan:
			pending--
		case blockErr := <-errChan:
			pending--
			if !blockFailed {
				err = blockErr
			}
			blockFailed = true
		case <-ctx.Done():
			if err == nil {
				err = ErrInterrupted
			}
			// Stop watching ctx; the enqueued blocks still need to complete
			ctx = context.Background()
		}
	}

	if blockFailed {
		r.logger.Errorf("sample %d failed: %v", sampleIndex, err)
		return false, err
	}

	r.collectStats()
	return true, err
}

func (r *defaultRenderer) collectStats() {
	r.stats.Tracers = make([]TracerStat, len(r.tracers))
	for index, tr := range r.tracers {
		blockH := r.blockAssignments[index]
		stat := TracerStat{
			Id:           tr.Id(),
			IsPrimary:    index == 0,
			BlockH:       blockH,
			FramePercent: 100.0 * float32(blockH) / float32(r.options.FrameH),
		}
		if blockH != 0 {
			stat.RenderTime = tr.Stats().RenderTime
		}
		r.stats.Tracers[index] = stat
	}
}
