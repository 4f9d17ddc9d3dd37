package main

import (
	"os"

	"github.com/achilleasa/skytrace/cmd"
	"github.com/achilleasa/skytrace/log"
	"github.com/urfave/cli"
)

var logger = log.New("skytrace")

// Flags shared by all commands that render frames.
func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:   "width",
			Value:  512,
			Usage:  "frame width",
			EnvVar: "SKYTRACE_WIDTH",
		},
		cli.IntFlag{
			Name:   "height",
			Value:  512,
			Usage:  "frame height",
			EnvVar: "SKYTRACE_HEIGHT",
		},
		cli.IntFlag{
			Name:   "spp",
			Value:  16,
			Usage:  "samples per pixel",
			EnvVar: "SKYTRACE_SPP",
		},
		cli.IntFlag{
			Name:   "bounces",
			Value:  8,
			Usage:  "max number of bounces per path",
			EnvVar: "SKYTRACE_BOUNCES",
		},
		cli.Float64Flag{
			Name:   "exposure",
			Value:  1.0,
			Usage:  "camera exposure for tone-mapping",
			EnvVar: "SKYTRACE_EXPOSURE",
		},
		cli.Float64Flag{
			Name:   "sky-exposure",
			Value:  1.5,
			Usage:  "multiplier applied to sky samples",
			EnvVar: "SKYTRACE_SKY_EXPOSURE",
		},
		cli.Float64Flag{
			Name:   "fov",
			Value:  60,
			Usage:  "vertical field of view in degrees",
			EnvVar: "SKYTRACE_FOV",
		},
		cli.IntFlag{
			Name:   "tracers",
			Value:  1,
			Usage:  "number of cpu tracers to attach",
			EnvVar: "SKYTRACE_TRACERS",
		},
		cli.IntFlag{
			Name:   "workers",
			Value:  0,
			Usage:  "goroutines per tracer (0 = one per cpu core)",
			EnvVar: "SKYTRACE_WORKERS",
		},
		cli.StringFlag{
			Name:   "scheduler",
			Value:  "naive",
			Usage:  "block scheduler (naive, perfect)",
			EnvVar: "SKYTRACE_SCHEDULER",
		},
		cli.StringFlag{
			Name:   "sky",
			Usage:  "equirectangular sky image (local path, http(s) or s3 URL)",
			EnvVar: "SKYTRACE_SKY",
		},
		cli.IntFlag{
			Name:   "sky-max-width",
			Value:  2048,
			Usage:  "downsample sky images wider than this (0 = keep original size)",
			EnvVar: "SKYTRACE_SKY_MAX_WIDTH",
		},
		cli.StringFlag{
			Name:   "shadow-mode",
			Value:  "literal",
			Usage:  "shadow term (literal, corrected)",
			EnvVar: "SKYTRACE_SHADOW_MODE",
		},
		cli.Int64Flag{
			Name:   "seed",
			Value:  1,
			Usage:  "seed for scene generation and sample jittering",
			EnvVar: "SKYTRACE_SEED",
		},
		cli.IntFlag{
			Name:   "spheres",
			Value:  100,
			Usage:  "number of sphere placement attempts for generated scenes",
			EnvVar: "SKYTRACE_SPHERES",
		},
		cli.StringFlag{
			Name:   "scene",
			Usage:  "scene zip file; a random scene is generated if omitted",
			EnvVar: "SKYTRACE_SCENE",
		},
		cli.StringFlag{
			Name:  "camera",
			Value: "0,1,5",
			Usage: "camera position as x,y,z",
		},
		cli.Float64Flag{
			Name:  "yaw",
			Usage: "camera yaw in degrees",
		},
		cli.Float64Flag{
			Name:  "pitch",
			Usage: "camera pitch in degrees",
		},
		cli.StringFlag{
			Name:   "out, o",
			Value:  "frame.png",
			Usage:  "output image filename or s3://bucket/key URL",
			EnvVar: "SKYTRACE_OUT",
		},
	}
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "skytrace"
	app.Usage = "render sphere scenes using whitted-style ray tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "log verbosity (debug, info, notice, warning, error)",
			EnvVar: "SKYTRACE_LOG_LEVEL",
		},
		cli.StringFlag{
			Name:  "env",
			Value: ".env",
			Usage: "load environment variables from this file if it exists",
		},
	}
	app.Before = cmd.LoadEnv
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render scene",
			Description: `
Render a frame of a generated or loaded sphere scene. When an input script is
supplied, each scripted input step moves the camera using the free-fly
controller and a separate frame is written for it.`,
			Flags: append(renderFlags(),
				cli.StringFlag{
					Name:   "input-script",
					Usage:  "JSON-lines file with camera input steps",
					EnvVar: "SKYTRACE_INPUT_SCRIPT",
				},
			),
			Action: cmd.RenderFrame,
		},
		{
			Name:  "scene",
			Usage: "manage scene files",
			Subcommands: []cli.Command{
				{
					Name:  "generate",
					Usage: "generate a random sphere scene",
					Flags: []cli.Flag{
						cli.Int64Flag{
							Name:  "seed",
							Value: 1,
							Usage: "random seed",
						},
						cli.IntFlag{
							Name:  "spheres",
							Value: 100,
							Usage: "number of sphere placement attempts",
						},
						cli.Float64Flag{
							Name:  "radius-min",
							Value: 3,
							Usage: "min sphere radius",
						},
						cli.Float64Flag{
							Name:  "radius-max",
							Value: 8,
							Usage: "max sphere radius",
						},
						cli.Float64Flag{
							Name:  "placement-radius",
							Value: 100,
							Usage: "spheres are placed inside a disc of this radius",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "scene.zip",
							Usage: "scene zip file",
						},
					},
					Action: cmd.GenerateScene,
				},
				{
					Name:      "info",
					Usage:     "display scene information",
					ArgsUsage: "scene.zip",
					Action:    cmd.ShowSceneInfo,
				},
			},
		},
		{
			Name:  "list-tracers",
			Usage: "list the cpu tracers that would be attached",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "tracers",
					Value: 1,
					Usage: "number of cpu tracers",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "goroutines per tracer (0 = one per cpu core)",
				},
			},
			Action: cmd.ListTracers,
		},
		{
			Name:  "debug",
			Usage: "render primary ray hit depth or normals",
			Flags: append(renderFlags(),
				cli.StringFlag{
					Name:  "mode",
					Value: "normals",
					Usage: "debug output (depth, normals)",
				},
				cli.Float64Flag{
					Name:  "max-depth",
					Value: 100,
					Usage: "hit distance mapped to white in depth mode",
				},
			),
			Action: cmd.Debug,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
