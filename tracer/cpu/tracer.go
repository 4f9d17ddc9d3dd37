package cpu

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/skytrace/asset/texture"
	"github.com/achilleasa/skytrace/log"
	"github.com/achilleasa/skytrace/scene"
	"github.com/achilleasa/skytrace/tracer"
	"github.com/achilleasa/skytrace/types"
	"golang.org/x/sync/errgroup"
)

// Blocks are split into square tiles which are rendered in parallel.
const tileSize uint32 = 8

// A tracer that renders blocks on the host CPU.
type Tracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	// Number of goroutines used for rendering tiles.
	workers int

	opts KernelOptions

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[tracer.ChangeType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats *tracer.Stats

	// The surface where samples are accumulated.
	accum *tracer.Surface

	// Per-frame state. Only accessed by the worker goroutine.
	frame     Frame
	hasCamera bool
}

// Create a new cpu tracer. If workers is zero, one worker per available
// cpu core will be used.
func NewTracer(id string, workers int, opts KernelOptions) *Tracer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Tracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		workers:      workers,
		opts:         opts,
		updateBuffer: make(map[tracer.ChangeType]interface{}, 0),
		blockReqChan: make(chan tracer.BlockRequest, 1),
		stats:        &tracer.Stats{},
	}
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Get the computation speed estimate. A single core is the baseline.
func (tr *Tracer) SpeedEstimate() float32 {
	return float32(tr.workers)
}

// Setup the tracer and start its worker.
func (tr *Tracer) Setup(accumBuffer *tracer.Surface) error {
	if accumBuffer == nil {
		return ErrNotSetup
	}

	tr.Lock()
	defer tr.Unlock()

	tr.accum = accumBuffer
	if tr.closeChan == nil {
		tr.startWorker()
	}

	tr.logger.Debugf("setup tracer with %d workers for a %dx%d frame", tr.workers, accumBuffer.Width, accumBuffer.Height)
	return nil
}

// Shutdown and cleanup tracer.
func (tr *Tracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	// If the worker is running shut it down
	if tr.closeChan != nil {
		close(tr.closeChan)
		tr.wg.Wait()
		tr.closeChan = nil
	}
}

// Enqueue block request.
func (tr *Tracer) Enqueue(blockReq tracer.BlockRequest) {
	select {
	case tr.blockReqChan <- blockReq:
	default:
		// drop the request if worker is not listening
		tr.logger.Error(ErrTracerBusy.Error())
		blockReq.ErrChan <- ErrTracerBusy
	}
}

// Append a change to the tracer's update buffer.
func (tr *Tracer) AppendChange(changeType tracer.ChangeType, data interface{}) {
	tr.Lock()
	defer tr.Unlock()
	tr.updateBuffer[changeType] = data
}

// Retrieve last frame statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return tr.stats
}

// Apply queued changes. The batch is validated as a whole so a bad payload
// never leaves the frame partially updated.
func (tr *Tracer) commitUpdates() error {
	tr.Lock()
	pending := tr.updateBuffer
	tr.updateBuffer = make(map[tracer.ChangeType]interface{}, 0)
	tr.Unlock()

	next := tr.frame
	hasCamera := tr.hasCamera
	for changeType, data := range pending {
		switch changeType {
		case tracer.SetScene:
			sc, ok := data.(*scene.Scene)
			if !ok {
				return fmt.Errorf("cpu tracer: invalid scene payload %T", data)
			}
			next.Scene = sc
		case tracer.SetSky:
			switch sky := data.(type) {
			case nil:
				next.Sky = nil
			case *texture.Texture:
				if sky == nil {
					next.Sky = nil
				} else {
					next.Sky = sky
				}
			default:
				return fmt.Errorf("cpu tracer: invalid sky payload %T", data)
			}
		case tracer.UpdateCamera:
			pose, ok := data.(scene.CameraPose)
			if !ok {
				return fmt.Errorf("cpu tracer: invalid camera payload %T", data)
			}
			next.Pose = pose
			hasCamera = true
		default:
			return fmt.Errorf("cpu tracer: unsupported change type %d", changeType)
		}
	}

	tr.frame = next
	tr.hasCamera = hasCamera
	return nil
}

// Spawn a go-routine to process block render requests. This method is meant
// to be called while holding tr.Lock()
func (tr *Tracer) startWorker() {
	tr.closeChan = make(chan struct{})
	closeChan := tr.closeChan

	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		for {
			select {
			case blockReq := <-tr.blockReqChan:
				startTime := time.Now()
				if err := tr.commitUpdates(); err != nil {
					blockReq.ErrChan <- err
					continue
				}
				tr.stats.UpdateTime = time.Since(startTime)

				// Render block and reply with our completion status
				startTime = time.Now()
				if err := tr.renderBlock(&blockReq); err != nil {
					blockReq.ErrChan <- err
					continue
				}

				tr.stats.BlockH = blockReq.BlockH
				tr.stats.RenderTime = time.Since(startTime)
				blockReq.DoneChan <- blockReq.BlockH
			case <-closeChan:
				return
			}
		}
	}()
}

// Render block by splitting it into tiles and rendering them in parallel.
func (tr *Tracer) renderBlock(blockReq *tracer.BlockRequest) error {
	if tr.frame.Scene == nil {
		return ErrNoSceneData
	}
	if !tr.hasCamera {
		return ErrNoCameraData
	}
	if tr.accum == nil {
		return ErrNotSetup
	}
	if blockReq.FrameW != tr.accum.Width || blockReq.FrameH != tr.accum.Height {
		return ErrFrameMismatch
	}

	offset := samplePixelOffset(blockReq)
	fr := tr.frame
	blockEnd := blockReq.BlockY + blockReq.BlockH

	var g errgroup.Group
	g.SetLimit(tr.workers)
	for tileY := blockReq.BlockY; tileY < blockEnd; tileY += tileSize {
		for tileX := uint32(0); tileX < blockReq.FrameW; tileX += tileSize {
			x0, y0 := tileX, tileY
			x1, y1 := minUint32(x0+tileSize, blockReq.FrameW), minUint32(y0+tileSize, blockEnd)
			g.Go(func() error {
				return tr.renderTile(x0, y0, x1, y1, offset, &fr, blockReq.SampleIndex)
			})
		}
	}

	return g.Wait()
}

// Render the pixels in [x0, x1) x [y0, y1) and blend them into the
// accumulation buffer.
func (tr *Tracer) renderTile(x0, y0, x1, y1 uint32, offset types.Vec2, fr *Frame, sampleIndex uint32) error {
	w, h := tr.accum.Width, tr.accum.Height
	weight := 1.0 / float32(sampleIndex+1)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sample := RenderPixel(x, y, w, h, offset, fr, tr.opts)
			if sampleIndex != 0 {
				prev, err := tr.accum.At(x, y)
				if err != nil {
					return err
				}
				sample = prev.Lerp(sample, weight)
			}
			if err := tr.accum.Set(x, y, sample); err != nil {
				return err
			}
		}
	}

	return nil
}

// The first sample always goes through the pixel center. Subsequent samples
// are jittered using the request seed so that all tracers use the same offset.
func samplePixelOffset(blockReq *tracer.BlockRequest) types.Vec2 {
	if blockReq.SampleIndex == 0 {
		return PixelCenter
	}
	rng := rand.New(rand.NewSource(int64(blockReq.Seed)))
	return types.XY(rng.Float32(), rng.Float32())
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
