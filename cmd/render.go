package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/skytrace/asset"
	"github.com/achilleasa/skytrace/asset/sink"
	"github.com/achilleasa/skytrace/asset/texture"
	"github.com/achilleasa/skytrace/renderer"
	"github.com/achilleasa/skytrace/scene"
	sceneio "github.com/achilleasa/skytrace/scene/io"
	"github.com/achilleasa/skytrace/tracer"
	"github.com/achilleasa/skytrace/tracer/cpu"
	"github.com/achilleasa/skytrace/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame or, when an input script is supplied, one frame per
// scripted input step.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	kernelOpts := cpu.DefaultKernelOptions()
	kernelOpts.MaxBounces = uint32(ctx.Int("bounces"))
	kernelOpts.SkyExposure = float32(ctx.Float64("sky-exposure"))

	shadowMode, err := parseShadowMode(ctx.String("shadow-mode"))
	if err != nil {
		return err
	}
	kernelOpts.ShadowMode = shadowMode

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opener, err := newOpener()
	if err != nil {
		return err
	}

	r, cam, err := setupRenderer(renderCtx, ctx, opener, kernelOpts)
	if err != nil {
		return err
	}
	defer r.Close()

	frameSink := sink.New(opener.S3)
	out := ctx.String("out")

	if script := ctx.String("input-script"); script != "" {
		return replayInputScript(renderCtx, r, cam, opener, frameSink, script, out)
	}

	logger.Notice("rendering frame")
	img, err := r.Render(renderCtx)
	if err != nil {
		return err
	}

	displayFrameStats(r.Stats())
	return frameSink.Write(renderCtx, out, img)
}

// Load the scene and sky, setup the camera and attach tracers to a new renderer.
func setupRenderer(renderCtx context.Context, ctx *cli.Context, opener *asset.Opener, kernelOpts cpu.KernelOptions) (renderer.Renderer, *scene.Camera, error) {
	sc, err := loadScene(renderCtx, ctx, opener)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("scene contains %d sphere(s)", len(sc.Spheres))

	cam, err := setupCamera(ctx)
	if err != nil {
		return nil, nil, err
	}

	scheduler, err := blockScheduler(ctx.String("scheduler"))
	if err != nil {
		return nil, nil, err
	}

	opts := renderer.Options{
		FrameW:          uint32(ctx.Int("width")),
		FrameH:          uint32(ctx.Int("height")),
		SamplesPerPixel: uint32(ctx.Int("spp")),
		Exposure:        float32(ctx.Float64("exposure")),
		Seed:            ctx.Int64("seed"),
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, nil, fmt.Errorf("invalid frame dimensions %dx%d", opts.FrameW, opts.FrameH)
	}

	numTracers := ctx.Int("tracers")
	if numTracers < 1 {
		numTracers = 1
	}
	tracers := make([]tracer.Tracer, numTracers)
	for i := range tracers {
		tracers[i] = cpu.NewTracer(fmt.Sprintf("cpu-%d", i), ctx.Int("workers"), kernelOpts)
	}

	start := time.Now()
	r, err := renderer.NewDefault(sc, cam, scheduler, tracers, opts)
	if err != nil {
		for _, tr := range tracers {
			tr.Close()
		}
		return nil, nil, err
	}
	logger.Infof("setup %d tracer(s) in %d ms", numTracers, time.Since(start).Nanoseconds()/1000000)

	if skyPath := ctx.String("sky"); skyPath != "" {
		sky, err := loadSky(renderCtx, opener, skyPath, uint(ctx.Int("sky-max-width")))
		if err != nil {
			r.Close()
			return nil, nil, err
		}
		r.SetSky(sky)
	}

	return r, cam, nil
}

func loadScene(renderCtx context.Context, ctx *cli.Context, opener *asset.Opener) (*scene.Scene, error) {
	if sceneFile := ctx.String("scene"); sceneFile != "" {
		logger.Noticef("loading scene from %s", sceneFile)
		return sceneio.ReadSceneWith(renderCtx, opener, sceneFile)
	}

	cfg := scene.DefaultGenerateConfig()
	cfg.Seed = ctx.Int64("seed")
	cfg.SphereCount = ctx.Int("spheres")
	return scene.Generate(cfg), nil
}

func loadSky(ctx context.Context, opener *asset.Opener, skyPath string, maxWidth uint) (*texture.Texture, error) {
	start := time.Now()
	res, err := opener.Open(ctx, skyPath, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	sky, err := texture.New(res, maxWidth)
	if err != nil {
		return nil, err
	}
	logger.Infof("loaded %dx%d sky texture (%s) in %d ms", sky.Width, sky.Height, sky.Format, time.Since(start).Nanoseconds()/1000000)
	return sky, nil
}

func setupCamera(ctx *cli.Context) (*scene.Camera, error) {
	cam := scene.NewCamera(float32(ctx.Float64("fov")))
	if pos := ctx.String("camera"); pos != "" {
		v, err := parseVec3(pos)
		if err != nil {
			return nil, err
		}
		cam.Position = v
	}
	cam.Rotate(float32(ctx.Float64("yaw")), float32(ctx.Float64("pitch")))
	logger.Infof("camera: %s", cam)
	return cam, nil
}

// Apply each scripted input step to the camera and render a frame for it.
func replayInputScript(renderCtx context.Context, r renderer.Renderer, cam *scene.Camera, opener *asset.Opener, frameSink *sink.FrameSink, script, out string) error {
	res, err := opener.Open(renderCtx, script, nil)
	if err != nil {
		return err
	}
	steps, err := scene.ReadInputScript(res)
	res.Close()
	if err != nil {
		return err
	}
	logger.Noticef("replaying %d input step(s) from %s", len(steps), script)

	ctrl := scene.NewFlyController()
	for index, in := range steps {
		if ctrl.Update(cam, in) {
			r.UpdateCamera(cam)
		}

		img, err := r.Render(renderCtx)
		if err != nil {
			return err
		}
		logger.Infof("step %d: %s", index, cam)

		if err = frameSink.Write(renderCtx, frameName(out, index), img); err != nil {
			return err
		}
	}

	displayFrameStats(r.Stats())
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Primary", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "", fmt.Sprintf("TOTAL (%d spp)", stats.Samples), fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}

// Append a zero-padded frame index to the output filename.
func frameName(out string, index int) string {
	ext := path.Ext(out)
	return fmt.Sprintf("%s_%04d%s", strings.TrimSuffix(out, ext), index, ext)
}

func parseVec3(s string) (types.Vec3, error) {
	var v types.Vec3
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected 3 comma-separated components; got %q", s)
	}

	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return v, fmt.Errorf("invalid vector component %q: %w", part, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

func parseShadowMode(s string) (cpu.ShadowMode, error) {
	switch s {
	case "", cpu.ShadowLiteral.String():
		return cpu.ShadowLiteral, nil
	case cpu.ShadowCorrected.String():
		return cpu.ShadowCorrected, nil
	}
	return 0, fmt.Errorf("unsupported shadow mode %q", s)
}

func blockScheduler(name string) (tracer.BlockScheduler, error) {
	switch name {
	case "", "naive":
		return tracer.NaiveScheduler(), nil
	case "perfect":
		return tracer.PerfectScheduler(), nil
	}
	return nil, fmt.Errorf("unsupported block scheduler %q", name)
}
