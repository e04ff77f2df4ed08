package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docshot/docshot/internal/utils"
)

// SceneFixture pairs a rendered scene with the detection outcome it
// should produce.
type SceneFixture struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	InputFile   string           `json:"input_file"`
	Expected    SceneExpectation `json:"expected"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
}

// SceneExpectation is the ground truth for one scene: whether a sheet
// is present, where its corners lie and what its true aspect ratio is.
type SceneExpectation struct {
	Found           bool         `json:"found"`
	Corners         [][2]float64 `json:"corners,omitempty"` // tl, tr, br, bl
	CornerTolerance float64      `json:"corner_tolerance_px,omitempty"`
	TrueRatio       float64      `json:"true_ratio,omitempty"`
	RatioTolerance  float64      `json:"ratio_tolerance,omitempty"`
	Scene           string       `json:"scene,omitempty"`
}

// LoadFixture loads a scene fixture from its JSON file.
func LoadFixture(t *testing.T, name string) SceneFixture {
	t.Helper()

	fixturePath := filepath.Join(GetFixturesDir(t), name+".json")

	data, err := os.ReadFile(fixturePath) //nolint:gosec // G304: Reading test fixture files with controlled paths
	require.NoError(t, err, "Failed to read fixture file: %s", fixturePath)

	var fixture SceneFixture
	require.NoError(t, json.Unmarshal(data, &fixture), "Failed to unmarshal fixture JSON")

	return fixture
}

// SaveFixture saves a scene fixture to its JSON file.
func SaveFixture(t *testing.T, fixture SceneFixture) {
	t.Helper()

	fixturesDir := GetFixturesDir(t)
	require.NoError(t, EnsureDir(fixturesDir))

	data, err := json.MarshalIndent(fixture, "", "  ")
	require.NoError(t, err, "Failed to marshal fixture to JSON")

	fixturePath := filepath.Join(fixturesDir, fixture.Name+".json")
	require.NoError(t, os.WriteFile(fixturePath, data, 0o600),
		"Failed to write fixture file: %s", fixturePath)
}

// CreateSampleFixtures renders the standard synthetic scenes into the
// testdata tree and writes their ground-truth fixtures.
func CreateSampleFixtures(t *testing.T) {
	t.Helper()

	syntheticDir := GetSyntheticDir(t)
	require.NoError(t, EnsureDir(syntheticDir))

	frontal := DefaultSceneSpec()
	SaveImage(t, frontal.Render(), filepath.Join(syntheticDir, "frontal_sheet.png"))
	SaveFixture(t, SceneFixture{
		Name:        "frontal_sheet",
		Description: "Frontal 300x400 sheet on a dark background",
		InputFile:   "synthetic/frontal_sheet.png",
		Expected: SceneExpectation{
			Found:           true,
			Corners:         quadCorners(frontal.Corners),
			CornerTolerance: 3,
			TrueRatio:       0.75,
			RatioTolerance:  0.05,
			Scene:           "normal",
		},
		Metadata: map[string]any{
			"width":  frontal.Size.Width,
			"height": frontal.Size.Height,
		},
	})

	tilted := TiltedSceneSpec()
	tilted.TextLines = 5
	SaveImage(t, tilted.Render(), filepath.Join(syntheticDir, "tilted_sheet.png"))
	SaveFixture(t, SceneFixture{
		Name:        "tilted_sheet",
		Description: "Off-axis sheet with interior text lines",
		InputFile:   "synthetic/tilted_sheet.png",
		Expected: SceneExpectation{
			Found:           true,
			Corners:         quadCorners(tilted.Corners),
			CornerTolerance: 8,
			Scene:           "normal",
		},
	})

	blank := SceneSpec{Size: SmallScene, Bg: 120, Fill: 120}
	SaveImage(t, blank.Render(), filepath.Join(syntheticDir, "blank_scene.png"))
	SaveFixture(t, SceneFixture{
		Name:        "blank_scene",
		Description: "Uniform frame with no sheet present",
		InputFile:   "synthetic/blank_scene.png",
		Expected: SceneExpectation{
			Found: false,
			Scene: "low_contrast",
		},
	})
}

// GetFixtureInputPath returns the full path to a fixture's input file.
func GetFixtureInputPath(t *testing.T, fixture SceneFixture) string {
	t.Helper()

	return filepath.Join(GetTestDataDir(t), fixture.InputFile)
}

// ValidateFixture validates that a fixture's input file exists.
func ValidateFixture(t *testing.T, fixture SceneFixture) {
	t.Helper()

	inputPath := GetFixtureInputPath(t, fixture)
	require.True(t, FileExists(inputPath), "Fixture input file does not exist: %s", inputPath)
}

func quadCorners(q utils.Quad) [][2]float64 {
	out := make([][2]float64, 0, 4)
	for _, p := range q {
		out = append(out, [2]float64{p.X, p.Y})
	}
	return out
}
