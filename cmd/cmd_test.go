package cmd

import (
	"flag"
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/skytrace/scene"
	sceneio "github.com/achilleasa/skytrace/scene/io"
	"github.com/achilleasa/skytrace/tracer/cpu"
	"github.com/achilleasa/skytrace/types"
	"github.com/urfave/cli"
)

func renderContext(t *testing.T, overrides map[string]string) *cli.Context {
	set := flag.NewFlagSet("render", flag.ContinueOnError)
	set.Int("width", 8, "")
	set.Int("height", 6, "")
	set.Int("spp", 2, "")
	set.Int("bounces", 4, "")
	set.Float64("exposure", 1, "")
	set.Float64("sky-exposure", 1.5, "")
	set.Float64("fov", 60, "")
	set.Int("tracers", 2, "")
	set.Int("workers", 1, "")
	set.String("scheduler", "perfect", "")
	set.String("sky", "", "")
	set.Int("sky-max-width", 0, "")
	set.String("shadow-mode", "corrected", "")
	set.Int64("seed", 3, "")
	set.Int("spheres", 5, "")
	set.String("scene", "", "")
	set.String("camera", "0,20,120", "")
	set.Float64("yaw", 0, "")
	set.Float64("pitch", -10, "")
	set.String("out", filepath.Join(t.TempDir(), "frame.png"), "")
	set.String("input-script", "", "")
	set.String("mode", "depth", "")
	set.Float64("max-depth", 200, "")

	for name, value := range overrides {
		if err := set.Set(name, value); err != nil {
			t.Fatal(err)
		}
	}
	return cli.NewContext(nil, set, nil)
}

func assertPNG(t *testing.T, file string, expW, expH int) {
	f, err := os.Open(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != expW || img.Bounds().Dy() != expH {
		t.Fatalf("expected %s to be %dx%d; got %v", file, expW, expH, img.Bounds())
	}
}

func TestRenderFrame(t *testing.T) {
	ctx := renderContext(t, nil)
	if err := RenderFrame(ctx); err != nil {
		t.Fatal(err)
	}
	assertPNG(t, ctx.String("out"), 8, 6)
}

func TestRenderFrameFromSceneFile(t *testing.T) {
	sceneFile := filepath.Join(t.TempDir(), "scene.zip")
	if err := sceneio.WriteScene(scene.Generate(scene.DefaultGenerateConfig()), sceneFile); err != nil {
		t.Fatal(err)
	}

	ctx := renderContext(t, map[string]string{"scene": sceneFile})
	if err := RenderFrame(ctx); err != nil {
		t.Fatal(err)
	}
	assertPNG(t, ctx.String("out"), 8, 6)
}

func TestReplayInputScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "input.jsonl")
	data := `# move forward, then look around
{"forward": 1, "dt": 0.5}

{"mouse_dx": 20, "cursor_locked": true, "dt": 0.1}
{"boost": true, "up": 1, "dt": 0.1}
`
	if err := ioutil.WriteFile(script, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "frames", "out.png")
	ctx := renderContext(t, map[string]string{"input-script": script, "out": out})
	if err := RenderFrame(ctx); err != nil {
		t.Fatal(err)
	}

	for index := 0; index < 3; index++ {
		assertPNG(t, frameName(out, index), 8, 6)
	}
	if _, err := os.Stat(frameName(out, 3)); !os.IsNotExist(err) {
		t.Fatalf("expected exactly 3 frames to be written")
	}
}

func TestRenderFrameErrors(t *testing.T) {
	specs := []map[string]string{
		{"shadow-mode": "soft"},
		{"scheduler": "fancy"},
		{"camera": "1,2"},
		{"width": "0"},
		{"scene": "missing.obj"},
		{"sky": filepath.Join(os.TempDir(), "no-such-sky.png")},
	}

	for index, overrides := range specs {
		if err := RenderFrame(renderContext(t, overrides)); err == nil {
			t.Fatalf("[spec %d] expected an error", index)
		}
	}
}

func TestDebugRender(t *testing.T) {
	for _, mode := range []string{"depth", "normals"} {
		ctx := renderContext(t, map[string]string{"mode": mode})
		if err := Debug(ctx); err != nil {
			t.Fatalf("mode %s: %v", mode, err)
		}
		assertPNG(t, ctx.String("out"), 8, 6)
	}

	if err := Debug(renderContext(t, map[string]string{"mode": "albedo"})); err == nil {
		t.Fatal("expected an error for an unsupported debug mode")
	}
}

func TestGenerateScene(t *testing.T) {
	out := filepath.Join(t.TempDir(), "scene.zip")

	set := flag.NewFlagSet("generate", flag.ContinueOnError)
	set.Int64("seed", 5, "")
	set.Int("spheres", 20, "")
	set.Float64("radius-min", 1, "")
	set.Float64("radius-max", 2, "")
	set.Float64("placement-radius", 30, "")
	set.String("out", out, "")

	if err := GenerateScene(cli.NewContext(nil, set, nil)); err != nil {
		t.Fatal(err)
	}

	sc, err := sceneio.ReadScene(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Spheres) == 0 {
		t.Fatal("expected generated scene to contain spheres")
	}
	if stats := sceneStats(sc); stats == "" {
		t.Fatal("expected non-empty scene stats")
	}

	set.Set("out", "scene.obj")
	if err = GenerateScene(cli.NewContext(nil, set, nil)); err == nil {
		t.Fatal("expected an error for a non-zip output file")
	}
}

func TestLoadEnv(t *testing.T) {
	const key = "SKYTRACE_TEST_LOAD_ENV"
	os.Unsetenv(key)
	defer os.Unsetenv(key)

	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := ioutil.WriteFile(envFile, []byte(key+"=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}

	set := flag.NewFlagSet("app", flag.ContinueOnError)
	set.String("env", envFile, "")
	if err := LoadEnv(cli.NewContext(nil, set, nil)); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv(key); got != "loaded" {
		t.Fatalf("expected env var to be loaded from file; got %q", got)
	}

	// Missing files are ignored
	set.Set("env", filepath.Join(t.TempDir(), "missing.env"))
	if err := LoadEnv(cli.NewContext(nil, set, nil)); err != nil {
		t.Fatalf("expected missing env file to be ignored; got %v", err)
	}
}

func TestFrameName(t *testing.T) {
	type spec struct {
		out   string
		index int
		exp   string
	}
	specs := []spec{
		{"frame.png", 0, "frame_0000.png"},
		{"out/frame.png", 12, "out/frame_0012.png"},
		{"s3://renders/run/frame.png", 7, "s3://renders/run/frame_0007.png"},
		{"frame", 3, "frame_0003"},
	}

	for index, s := range specs {
		if got := frameName(s.out, s.index); got != s.exp {
			t.Fatalf("[spec %d] expected %q; got %q", index, s.exp, got)
		}
	}
}

func TestParseVec3(t *testing.T) {
	v, err := parseVec3(" 1.5, -2,3 ")
	if err != nil {
		t.Fatal(err)
	}
	if v != types.XYZ(1.5, -2, 3) {
		t.Fatalf("expected (1.5, -2, 3); got %v", v)
	}

	for _, invalid := range []string{"", "1,2", "1,2,3,4", "a,b,c"} {
		if _, err = parseVec3(invalid); err == nil {
			t.Fatalf("expected an error parsing %q", invalid)
		}
	}
}

func TestParseShadowMode(t *testing.T) {
	type spec struct {
		in  string
		exp cpu.ShadowMode
	}
	specs := []spec{
		{"", cpu.ShadowLiteral},
		{"literal", cpu.ShadowLiteral},
		{"corrected", cpu.ShadowCorrected},
	}
	for index, s := range specs {
		mode, err := parseShadowMode(s.in)
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if mode != s.exp {
			t.Fatalf("[spec %d] expected %s; got %s", index, s.exp, mode)
		}
	}
}
