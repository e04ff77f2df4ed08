package support

import (
	"fmt"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/docshot/docshot/internal/testutil"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand    string
	LastOutput     string
	LastStderr     string
	LastError      error
	LastExitCode   int
	LastStartTime  time.Time
	LastDuration   time.Duration
	LastOutputFile string

	// Test environment
	WorkingDir string
	TempDir    string
	EnvVars    []string

	// Rendered synthetic scenes, keyed by catalog name
	SceneDir   string
	scenePaths map[string]string

	// In-process detection server
	HTTPServer *DetectionServerWrapper

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    http.Header

	// Test artifacts
	CreatedFiles       []string
	CreatedDirectories []string
}

// NewTestContext creates a new test context.
func NewTestContext() (*TestContext, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	// Test execution may start in a subdirectory; walk up to the
	// go.mod so relative paths in commands resolve consistently.
	currentDir := workingDir
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "go.mod")); err == nil {
			workingDir = currentDir
			break
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	tempDir, err := os.MkdirTemp("", "docshot-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	ctx := &TestContext{
		WorkingDir:         workingDir,
		TempDir:            tempDir,
		EnvVars:            []string{},
		scenePaths:         map[string]string{},
		CreatedFiles:       []string{},
		CreatedDirectories: []string{},
	}

	return ctx, nil
}

// Cleanup removes all temporary files and directories created during tests.
func (testCtx *TestContext) Cleanup() error {
	var errs []error

	if testCtx.HTTPServer != nil {
		if err := testCtx.stopDetectionServer(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop server: %w", err))
		}
	}

	for _, file := range testCtx.CreatedFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove file %s: %w", file, err))
		}
	}

	for _, dir := range testCtx.CreatedDirectories {
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove directory %s: %w", dir, err))
		}
	}

	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}

	return nil
}

// AddEnvVar adds an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, fmt.Sprintf("%s=%s", name, value))
}

// TrackFile adds a file to be cleaned up after tests.
func (testCtx *TestContext) TrackFile(filename string) {
	absPath := filename
	if !filepath.IsAbs(filename) {
		absPath = filepath.Join(testCtx.WorkingDir, filename)
	}
	testCtx.CreatedFiles = append(testCtx.CreatedFiles, absPath)
}

// TrackDirectory adds a directory to be cleaned up after tests.
func (testCtx *TestContext) TrackDirectory(dirname string) {
	absPath := dirname
	if !filepath.IsAbs(dirname) {
		absPath = filepath.Join(testCtx.WorkingDir, dirname)
	}
	testCtx.CreatedDirectories = append(testCtx.CreatedDirectories, absPath)
}

// GetTempFile returns a path to a temporary file.
func (testCtx *TestContext) GetTempFile(suffix string) string {
	return filepath.Join(testCtx.TempDir, fmt.Sprintf("test-%d%s", time.Now().UnixNano(), suffix))
}

// GetTempDir returns a path to a temporary directory.
func (testCtx *TestContext) GetTempDir(prefix string) string {
	dirPath := filepath.Join(testCtx.TempDir, fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano()))
	testCtx.TrackDirectory(dirPath)
	return dirPath
}

// scenePath renders the named catalog scene on first use and returns
// the path of its PNG under the scenario temp directory.
func (testCtx *TestContext) scenePath(name string) (string, error) {
	if path, ok := testCtx.scenePaths[name]; ok {
		return path, nil
	}

	spec, ok := sceneSpecByName(name)
	if !ok {
		return "", fmt.Errorf("unknown scene %q", name)
	}

	if testCtx.SceneDir == "" {
		testCtx.SceneDir = filepath.Join(testCtx.TempDir, "scenes")
		if err := testutil.EnsureDir(testCtx.SceneDir); err != nil {
			return "", fmt.Errorf("failed to create scene directory: %w", err)
		}
	}

	path := filepath.Join(testCtx.SceneDir, name+".png")
	file, err := os.Create(path) //nolint:gosec // G304: Test scene rendering uses controlled paths
	if err != nil {
		return "", fmt.Errorf("failed to create scene file: %w", err)
	}
	if err := png.Encode(file, spec.Render()); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to encode scene %q: %w", name, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close scene file: %w", err)
	}

	testCtx.scenePaths[name] = path
	return path, nil
}

// sceneSpecByName maps catalog names to renderable scene specs.
func sceneSpecByName(name string) (testutil.SceneSpec, bool) {
	switch name {
	case "frontal_sheet":
		return testutil.DefaultSceneSpec(), true
	case "tilted_sheet":
		spec := testutil.TiltedSceneSpec()
		spec.TextLines = 5
		return spec, true
	case "noisy_sheet":
		spec := testutil.DefaultSceneSpec()
		spec.Noise = 0.05
		spec.Seed = 7
		return spec, true
	case "blank_scene":
		return testutil.SceneSpec{Size: testutil.SmallScene, Bg: 120, Fill: 120}, true
	default:
		return testutil.SceneSpec{}, false
	}
}
