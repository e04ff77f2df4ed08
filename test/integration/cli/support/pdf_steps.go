package support

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// theOutputShouldDescribePageSelectionFlags verifies the pdf help
// documents page range and decryption options.
func (testCtx *TestContext) theOutputShouldDescribePageSelectionFlags() error {
	for _, flag := range []string{"--pages", "--password"} {
		if !strings.Contains(testCtx.combinedOutput(), flag) {
			return fmt.Errorf("pdf help does not document %s\nActual output: %s", flag, testCtx.combinedOutput())
		}
	}
	return nil
}

// RegisterPDFSteps registers PDF processing step definitions.
func (testCtx *TestContext) RegisterPDFSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the output should describe page selection flags$`, testCtx.theOutputShouldDescribePageSelectionFlags)
}
