package support

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// theErrorShouldMention verifies the error output contains specific
// text, matching case-insensitively across stdout, stderr and the
// process error.
func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil && testCtx.LastExitCode == 0 {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}

	fullErrorText := testCtx.combinedOutput()
	if testCtx.LastError != nil {
		fullErrorText += " " + testCtx.LastError.Error()
	}

	if !strings.Contains(strings.ToLower(fullErrorText), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not contain '%s'\nActual error: %s", errorText, fullErrorText)
	}

	return nil
}

// theErrorShouldMentionAnUnknownFlag verifies flag parsing errors.
func (testCtx *TestContext) theErrorShouldMentionAnUnknownFlag() error {
	return testCtx.theErrorShouldMention("unknown flag")
}

// theErrorShouldMentionAnUnsupportedImageFormat verifies format
// rejection errors.
func (testCtx *TestContext) theErrorShouldMentionAnUnsupportedImageFormat() error {
	return testCtx.theErrorShouldMention("unsupported image format")
}

// theErrorShouldMentionThatNoInputFilesWereProvided verifies empty
// argument errors.
func (testCtx *TestContext) theErrorShouldMentionThatNoInputFilesWereProvided() error {
	return testCtx.theErrorShouldMention("no input files provided")
}

// RegisterErrorSteps registers error verification step definitions.
func (testCtx *TestContext) RegisterErrorSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the error should mention an unknown flag$`, testCtx.theErrorShouldMentionAnUnknownFlag)
	sc.Step(`^the error should mention an unsupported image format$`, testCtx.theErrorShouldMentionAnUnsupportedImageFormat)
	sc.Step(`^the error should mention that no input files were provided$`, testCtx.theErrorShouldMentionThatNoInputFilesWereProvided)
}
