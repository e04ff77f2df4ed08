package support

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// catalogScenes are the variants rendered for the feature suite.
var catalogScenes = []string{"frontal_sheet", "tilted_sheet", "noisy_sheet", "blank_scene"}

// theSyntheticTestScenesAreAvailable renders every catalog scene into
// the scenario temp directory.
func (testCtx *TestContext) theSyntheticTestScenesAreAvailable() error {
	for _, name := range catalogScenes {
		if _, err := testCtx.scenePath(name); err != nil {
			return fmt.Errorf("failed to render scene %q: %w", name, err)
		}
	}
	return nil
}

// theOutputShouldReportADetectedDocument verifies the text report
// describes a found quadrilateral.
func (testCtx *TestContext) theOutputShouldReportADetectedDocument() error {
	out := testCtx.combinedOutput()
	for _, marker := range []string{"strategy=", "corner["} {
		if !strings.Contains(out, marker) {
			return fmt.Errorf("output does not report a detected document (missing %q):\n%s", marker, out)
		}
	}
	return nil
}

// theOutputShouldReportNoDocument verifies the text report describes
// an empty frame.
func (testCtx *TestContext) theOutputShouldReportNoDocument() error {
	if !strings.Contains(testCtx.combinedOutput(), "no document found") {
		return fmt.Errorf("output does not report an empty frame:\n%s", testCtx.combinedOutput())
	}
	return nil
}

// theOutputShouldIncludeAnAspectRatioEstimate verifies the text report
// carries a ratio line.
func (testCtx *TestContext) theOutputShouldIncludeAnAspectRatioEstimate() error {
	if !strings.Contains(testCtx.combinedOutput(), "aspect ratio") {
		return fmt.Errorf("output does not include an aspect ratio estimate:\n%s", testCtx.combinedOutput())
	}
	return nil
}

// RegisterSceneSteps registers synthetic scene step definitions.
func (testCtx *TestContext) RegisterSceneSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the synthetic test scenes are available$`, testCtx.theSyntheticTestScenesAreAvailable)
	sc.Step(`^the output should report a detected document$`, testCtx.theOutputShouldReportADetectedDocument)
	sc.Step(`^the output should report no document$`, testCtx.theOutputShouldReportNoDocument)
	sc.Step(`^the output should include an aspect ratio estimate$`, testCtx.theOutputShouldIncludeAnAspectRatioEstimate)
}
