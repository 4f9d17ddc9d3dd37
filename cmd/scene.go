package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/achilleasa/skytrace/scene"
	sceneio "github.com/achilleasa/skytrace/scene/io"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Generate a random sphere scene and write it to a zip archive.
func GenerateScene(ctx *cli.Context) error {
	setupLogging(ctx)

	out := ctx.String("out")
	if !strings.HasSuffix(out, ".zip") {
		return errors.New("generated scenes can only be written to files with a .zip extension")
	}

	cfg := scene.DefaultGenerateConfig()
	cfg.Seed = ctx.Int64("seed")
	cfg.SphereCount = ctx.Int("spheres")
	cfg.RadiusMin = float32(ctx.Float64("radius-min"))
	cfg.RadiusMax = float32(ctx.Float64("radius-max"))
	cfg.PlacementRadius = float32(ctx.Float64("placement-radius"))
	if cfg.RadiusMin <= 0 || cfg.RadiusMax < cfg.RadiusMin {
		return fmt.Errorf("invalid sphere radius range [%f, %f]", cfg.RadiusMin, cfg.RadiusMax)
	}

	sc := scene.Generate(cfg)
	logger.Noticef("generated scene with %d sphere(s)", len(sc.Spheres))

	return sceneio.WriteScene(sc, out)
}

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene zip file")
	}

	opener, err := newOpener()
	if err != nil {
		return err
	}

	sc, err := sceneio.ReadSceneWith(context.Background(), opener, ctx.Args().First())
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", sceneStats(sc))
	return nil
}

func sceneStats(sc *scene.Scene) string {
	var metallic int
	for _, sphere := range sc.Spheres {
		if sphere.Albedo.IsZero() {
			metallic++
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})
	table.AppendBulk([][]string{
		{"Spheres", fmt.Sprintf("%d", len(sc.Spheres))},
		{"Metallic spheres", fmt.Sprintf("%d", metallic)},
		{"Light direction", fmt.Sprintf("%v", sc.Light.Direction)},
		{"Light intensity", fmt.Sprintf("%.2f", sc.Light.Intensity)},
		{"Ground albedo", fmt.Sprintf("%v", sc.Ground.Albedo)},
		{"Ground specular", fmt.Sprintf("%v", sc.Ground.Specular)},
		{"Sky color", fmt.Sprintf("%v", sc.SkyColor)},
	})
	table.Render()

	return buf.String()
}
