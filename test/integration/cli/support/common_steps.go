package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

var scenePlaceholder = regexp.MustCompile(`\{scene:([a-z_]+)\}`)

// substituteVariables resolves placeholders in commands and paths.
// {temp_dir} expands to the scenario temp directory and {scene:name}
// renders the named synthetic scene on first use.
func (testCtx *TestContext) substituteVariables(s string) (string, error) {
	s = strings.ReplaceAll(s, "{temp_dir}", testCtx.TempDir)

	var substErr error
	s = scenePlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		name := scenePlaceholder.FindStringSubmatch(match)[1]
		path, err := testCtx.scenePath(name)
		if err != nil {
			substErr = err
			return match
		}
		return path
	})
	return s, substErr
}

// iRunCommand executes a command and stores the result.
func (testCtx *TestContext) iRunCommand(command string) error {
	command, err := testCtx.substituteVariables(command)
	if err != nil {
		return err
	}

	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()
	testCtx.LastOutputFile = ""

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}

	// Remember the output file so later file steps can refer to it.
	for i, part := range parts {
		if (part == "--output" || part == "-o") && i+1 < len(parts) {
			testCtx.LastOutputFile = parts[i+1]
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = testCtx.WorkingDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)

	// Keep stdout separate from stderr: results go to stdout while
	// logs and errors go to stderr, and the JSON and CSV assertions
	// must not trip over interleaved log lines.
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	testCtx.LastOutput = stdout.String()
	testCtx.LastStderr = stderr.String()
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)

	if err != nil {
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			testCtx.LastExitCode = exitError.ExitCode()
		} else {
			testCtx.LastExitCode = -1
		}
	} else {
		testCtx.LastExitCode = 0
	}

	return nil
}

// combinedOutput returns stdout and stderr of the last command.
func (testCtx *TestContext) combinedOutput() string {
	return testCtx.LastOutput + "\n" + testCtx.LastStderr
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.combinedOutput())
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.combinedOutput())
	}
	return nil
}

// theOutputShouldContain verifies the output contains specific text.
func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.combinedOutput(), expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.combinedOutput())
	}
	return nil
}

// jsonPart extracts the JSON payload from stdout, skipping any leading
// progress lines.
func (testCtx *TestContext) jsonPart() (string, error) {
	output := strings.TrimSpace(testCtx.LastOutput)

	jsonStart := -1
	for i, r := range output {
		if r == '{' || r == '[' {
			jsonStart = i
			break
		}
	}
	if jsonStart == -1 {
		return "", fmt.Errorf("no JSON found in output: %s", testCtx.LastOutput)
	}
	return output[jsonStart:], nil
}

// theOutputShouldBeValidJSON verifies the output is valid JSON.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	part, err := testCtx.jsonPart()
	if err != nil {
		return err
	}

	var js json.RawMessage
	if err := json.Unmarshal([]byte(part), &js); err != nil {
		return fmt.Errorf("output is not valid JSON: %w\nJSON part: %s", err, part)
	}
	return nil
}

// theJSONShouldContain verifies JSON contains a specific field.
func (testCtx *TestContext) theJSONShouldContain(field string) error {
	part, err := testCtx.jsonPart()
	if err != nil {
		return err
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(part), &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return checkFieldExists(data, field)
}

// checkFieldExists walks a dotted field path through nested objects.
func checkFieldExists(data map[string]interface{}, field string) error {
	parts := strings.Split(field, ".")
	current := data

	for i, part := range parts {
		val, exists := current[part]
		if !exists {
			return fmt.Errorf("field '%s' not found in JSON", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return nil
		}
		nextMap, ok := val.(map[string]interface{})
		if !ok {
			return fmt.Errorf("cannot navigate deeper into non-object field '%s'", part)
		}
		current = nextMap
	}

	return nil
}

// theOutputShouldBeInCSVFormat verifies the output is CSV.
func (testCtx *TestContext) theOutputShouldBeInCSVFormat() error {
	lines := strings.Split(strings.TrimSpace(testCtx.LastOutput), "\n")
	if len(lines) < 1 || strings.TrimSpace(lines[0]) == "" {
		return errors.New("CSV output is empty")
	}
	if !strings.Contains(lines[0], ",") {
		return fmt.Errorf("CSV output does not contain comma separators: %s", lines[0])
	}
	return nil
}

// resolveFilePath substitutes placeholders and anchors relative paths
// at the project working directory.
func (testCtx *TestContext) resolveFilePath(filename string) (string, error) {
	filename, err := testCtx.substituteVariables(filename)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(filename) {
		filename = filepath.Join(testCtx.WorkingDir, filename)
	}
	return filename, nil
}

// theFileShouldExist verifies a file exists.
func (testCtx *TestContext) theFileShouldExist(filename string) error {
	fullPath, err := testCtx.resolveFilePath(filename)
	if err != nil {
		return err
	}
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", fullPath)
	}
	return nil
}

// theFileShouldContain verifies a file contains specific content.
func (testCtx *TestContext) theFileShouldContain(filename, expectedContent string) error {
	fullPath, err := testCtx.resolveFilePath(filename)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(fullPath) //nolint:gosec // G304: Test file reading with controlled path
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", fullPath, err)
	}

	if !strings.Contains(string(content), expectedContent) {
		return fmt.Errorf("file %s does not contain '%s'\nActual content: %s",
			filename, expectedContent, string(content))
	}

	return nil
}

// aTextFileExistsInTheTempDirectory creates a plain text file for
// format rejection scenarios.
func (testCtx *TestContext) aTextFileExistsInTheTempDirectory(name string) error {
	path := filepath.Join(testCtx.TempDir, name)
	return os.WriteFile(path, []byte("plain text, not an image\n"), 0o600)
}

// theOutputShouldContainUsageInformation verifies help output.
func (testCtx *TestContext) theOutputShouldContainUsageInformation() error {
	requiredHelpTexts := []string{"Usage:", "Flags:"}
	for _, text := range requiredHelpTexts {
		if !strings.Contains(testCtx.combinedOutput(), text) {
			return fmt.Errorf("help output missing '%s' section", text)
		}
	}
	return nil
}

// theOutputShouldListAvailableSubcommands verifies subcommand listing.
func (testCtx *TestContext) theOutputShouldListAvailableSubcommands() error {
	subcommands := []string{"detect", "ratio", "scan", "pdf", "serve", "config"}
	for _, cmd := range subcommands {
		if !strings.Contains(testCtx.combinedOutput(), cmd) {
			return fmt.Errorf("subcommand not listed: %s", cmd)
		}
	}
	return nil
}

// theOutputShouldContainVersionInformation verifies version output.
func (testCtx *TestContext) theOutputShouldContainVersionInformation() error {
	requiredParts := []string{"docshot", "commit"}
	for _, part := range requiredParts {
		if !strings.Contains(testCtx.combinedOutput(), part) {
			return fmt.Errorf("version output missing '%s'\nActual output: %s", part, testCtx.combinedOutput())
		}
	}
	return nil
}

// RegisterCommonSteps registers all common step definitions.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)

	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON should contain "([^"]*)"$`, testCtx.theJSONShouldContain)
	sc.Step(`^the output should be in CSV format$`, testCtx.theOutputShouldBeInCSVFormat)

	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^a text file "([^"]*)" exists in the temp directory$`, testCtx.aTextFileExistsInTheTempDirectory)

	sc.Step(`^the output should contain usage information$`, testCtx.theOutputShouldContainUsageInformation)
	sc.Step(`^the output should list available subcommands$`, testCtx.theOutputShouldListAvailableSubcommands)
	sc.Step(`^the output should contain version information$`, testCtx.theOutputShouldContainVersionInformation)
}
