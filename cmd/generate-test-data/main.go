package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docshot/docshot/internal/testutil"
	"github.com/docshot/docshot/internal/utils"
)

// namedScene couples a renderable scene spec with its ground truth.
type namedScene struct {
	name     string
	desc     string
	spec     testutil.SceneSpec
	expected testutil.SceneExpectation
}

func main() {
	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		generateScenes   = flag.Bool("scenes", true, "Generate synthetic scene images")
		generateFixtures = flag.Bool("fixtures", true, "Generate ground-truth fixtures")
		verbose          = flag.Bool("v", false, "Verbose output")
		help             = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate synthetic document scenes and ground-truth fixtures.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                 # Generate all test data\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -fixtures=false # Generate only scene images\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	slog.Info("Starting test data generation...")

	if *verbose {
		slog.Info("Options", "scenes", *generateScenes, "fixtures", *generateFixtures)
	}

	root, err := testutil.GetProjectRoot()
	if err != nil {
		slog.Error("Failed to find project root", "error", err)
		os.Exit(1)
	}

	if *verbose {
		slog.Info("Project root", "path", root)
	}

	if err := os.Chdir(root); err != nil {
		slog.Error("Failed to change to project root", "error", err)
		os.Exit(1)
	}

	scenes := sceneCatalog()

	if *generateScenes {
		if err := renderScenes(scenes); err != nil {
			slog.Error("Failed to render scene images", "error", err)
			os.Exit(1)
		}
		if err := renderSequence(); err != nil {
			slog.Error("Failed to render frame sequence", "error", err)
			os.Exit(1)
		}
		slog.Info("Rendered synthetic scenes", "count", len(scenes))
	}

	if *generateFixtures {
		if err := writeFixtures(scenes); err != nil {
			slog.Error("Failed to write fixtures", "error", err)
			os.Exit(1)
		}
		slog.Info("Wrote ground-truth fixtures", "count", len(scenes))
	}

	slog.Info("Test data generation completed successfully")
}

// sceneCatalog returns every scene variant with its expected detection
// outcome. The first three entries mirror the fixtures the test helpers
// create on demand, so both paths produce compatible data.
func sceneCatalog() []namedScene {
	frontal := testutil.DefaultSceneSpec()

	tilted := testutil.TiltedSceneSpec()
	tilted.TextLines = 5

	noisy := testutil.DefaultSceneSpec()
	noisy.Noise = 0.05
	noisy.Seed = 7

	gradient := testutil.DefaultSceneSpec()
	gradient.Gradient = 0.35

	lowContrast := testutil.DefaultSceneSpec()
	lowContrast.Bg = 100
	lowContrast.Fill = 135

	blank := testutil.SceneSpec{Size: testutil.SmallScene, Bg: 120, Fill: 120}

	return []namedScene{
		{
			name: "frontal_sheet",
			desc: "Frontal 300x400 sheet on a dark background",
			spec: frontal,
			expected: testutil.SceneExpectation{
				Found:           true,
				Corners:         cornersOf(frontal.Corners),
				CornerTolerance: 3,
				TrueRatio:       0.75,
				RatioTolerance:  0.05,
				Scene:           "normal",
			},
		},
		{
			name: "tilted_sheet",
			desc: "Off-axis sheet with interior text lines",
			spec: tilted,
			expected: testutil.SceneExpectation{
				Found:           true,
				Corners:         cornersOf(tilted.Corners),
				CornerTolerance: 8,
				Scene:           "normal",
			},
		},
		{
			name: "blank_scene",
			desc: "Uniform frame with no sheet present",
			spec: blank,
			expected: testutil.SceneExpectation{
				Found: false,
				Scene: "low_contrast",
			},
		},
		{
			name: "noisy_sheet",
			desc: "Frontal sheet with 5% impulse noise",
			spec: noisy,
			expected: testutil.SceneExpectation{
				Found:           true,
				Corners:         cornersOf(noisy.Corners),
				CornerTolerance: 5,
				Scene:           "normal",
			},
		},
		{
			name: "gradient_sheet",
			desc: "Frontal sheet under left-to-right illumination falloff",
			spec: gradient,
			expected: testutil.SceneExpectation{
				Found:           true,
				Corners:         cornersOf(gradient.Corners),
				CornerTolerance: 6,
			},
		},
		{
			name: "low_contrast_sheet",
			desc: "Sheet only 35 levels above the background",
			spec: lowContrast,
			expected: testutil.SceneExpectation{
				Found:           true,
				Corners:         cornersOf(lowContrast.Corners),
				CornerTolerance: 6,
				Scene:           "low_contrast",
			},
		},
	}
}

// renderScenes writes every catalog scene as PNG under testdata/synthetic.
func renderScenes(scenes []namedScene) error {
	syntheticDir := filepath.Join("testdata", "synthetic")
	if err := testutil.EnsureDir(syntheticDir); err != nil {
		return fmt.Errorf("failed to create synthetic directory: %w", err)
	}

	for _, sc := range scenes {
		path := filepath.Join(syntheticDir, sc.name+".png")
		if err := savePNG(sc.spec.Render(), path); err != nil {
			return fmt.Errorf("failed to save scene %q: %w", sc.name, err)
		}
	}
	return nil
}

// renderSequence writes a short multi-view sequence of the default sheet
// for multi-frame estimation tests.
func renderSequence() error {
	seqDir := filepath.Join("testdata", "synthetic", "sequence")
	if err := testutil.EnsureDir(seqDir); err != nil {
		return fmt.Errorf("failed to create sequence directory: %w", err)
	}

	base := testutil.DefaultSceneSpec()
	rendered := base.Render()
	angles := []float64{-6, 0, 6}
	for i, angle := range angles {
		frame := image.Image(rendered)
		if angle != 0 {
			frame = testutil.RotateScene(rendered, angle, base.Bg)
		}
		path := filepath.Join(seqDir, fmt.Sprintf("frame_%02d.png", i))
		if err := savePNG(frame, path); err != nil {
			return fmt.Errorf("failed to save sequence frame %d: %w", i, err)
		}
	}
	return nil
}

// writeFixtures writes the ground-truth JSON for every catalog scene.
func writeFixtures(scenes []namedScene) error {
	fixturesDir := filepath.Join("testdata", "fixtures")
	if err := testutil.EnsureDir(fixturesDir); err != nil {
		return fmt.Errorf("failed to create fixtures directory: %w", err)
	}

	for _, sc := range scenes {
		fixture := testutil.SceneFixture{
			Name:        sc.name,
			Description: sc.desc,
			InputFile:   filepath.Join("synthetic", sc.name+".png"),
			Expected:    sc.expected,
			Metadata: map[string]any{
				"width":  sc.spec.Size.Width,
				"height": sc.spec.Size.Height,
			},
		}
		if err := saveFixtureJSON(fixture, fixturesDir); err != nil {
			return fmt.Errorf("failed to save fixture %q: %w", sc.name, err)
		}
	}
	return nil
}

// Helper functions that don't require testing.T

func savePNG(img image.Image, path string) error {
	file, err := os.Create(path) //nolint:gosec // G304: Test data generation uses controlled paths
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func saveFixtureJSON(fixture testutil.SceneFixture, dir string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fixture.Name+".json"), data, 0o600)
}

func cornersOf(q utils.Quad) [][2]float64 {
	out := make([][2]float64, 0, 4)
	for _, p := range q {
		out = append(out, [2]float64{p.X, p.Y})
	}
	return out
}
