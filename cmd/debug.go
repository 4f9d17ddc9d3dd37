package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/achilleasa/skytrace/asset/sink"
	"github.com/achilleasa/skytrace/tracer/cpu"
	"github.com/urfave/cli"
)

// Render a single frame visualizing primary ray hit depth or surface normals.
func Debug(ctx *cli.Context) error {
	setupLogging(ctx)

	kernelOpts := cpu.DefaultKernelOptions()
	switch mode := ctx.String("mode"); mode {
	case "depth":
		kernelOpts.Debug = cpu.DebugDepth
		kernelOpts.DebugMaxDepth = float32(ctx.Float64("max-depth"))
	case "normals":
		kernelOpts.Debug = cpu.DebugNormals
	default:
		return fmt.Errorf("unsupported debug mode %q", mode)
	}

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opener, err := newOpener()
	if err != nil {
		return err
	}

	r, _, err := setupRenderer(renderCtx, ctx, opener, kernelOpts)
	if err != nil {
		logger.Error(err)
		return err
	}
	defer r.Close()

	img, err := r.Render(renderCtx)
	if err != nil {
		logger.Error(err)
		return err
	}

	return sink.New(opener.S3).Write(renderCtx, ctx.String("out"), img)
}
