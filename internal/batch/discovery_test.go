package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDiscoverImageFiles_EmptyArgs(t *testing.T) {
	files, err := discoverImageFiles([]string{}, false, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverImageFiles_ExplicitFiles(t *testing.T) {
	tempDir := t.TempDir()
	pngFile := filepath.Join(tempDir, "test.png")
	jpgFile := filepath.Join(tempDir, "test.jpg")
	writeFile(t, pngFile, "fake png")
	writeFile(t, jpgFile, "fake jpg")

	files, err := discoverImageFiles([]string{pngFile, jpgFile}, false, nil, nil)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, files, pngFile)
	assert.Contains(t, files, jpgFile)
}

func TestDiscoverImageFiles_ExplicitFileExcluded(t *testing.T) {
	tempDir := t.TempDir()
	pngFile := filepath.Join(tempDir, "skip_me.png")
	writeFile(t, pngFile, "fake png")

	files, err := discoverImageFiles([]string{pngFile}, false, nil, []string{"skip_*"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverImageFiles_DirectoryKeepsSupportedOnly(t *testing.T) {
	tempDir := t.TempDir()
	pngFile := filepath.Join(tempDir, "image.png")
	jpgFile := filepath.Join(tempDir, "photo.jpg")
	txtFile := filepath.Join(tempDir, "notes.txt")
	writeFile(t, pngFile, "fake png")
	writeFile(t, jpgFile, "fake jpg")
	writeFile(t, txtFile, "text")

	files, err := discoverImageFiles([]string{tempDir}, false, nil, nil)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, files, pngFile)
	assert.Contains(t, files, jpgFile)
	assert.NotContains(t, files, txtFile)
}

func TestDiscoverImageFiles_Recursive(t *testing.T) {
	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "subdir")
	require.NoError(t, os.MkdirAll(subDir, 0o750))

	rootPng := filepath.Join(tempDir, "root.png")
	subPng := filepath.Join(subDir, "sub.png")
	writeFile(t, rootPng, "root png")
	writeFile(t, subPng, "sub png")

	files, err := discoverImageFiles([]string{tempDir}, true, nil, nil)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, files, rootPng)
	assert.Contains(t, files, subPng)
}

func TestDiscoverImageFiles_NonRecursive(t *testing.T) {
	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "subdir")
	require.NoError(t, os.MkdirAll(subDir, 0o750))

	rootPng := filepath.Join(tempDir, "root.png")
	subPng := filepath.Join(subDir, "sub.png")
	writeFile(t, rootPng, "root png")
	writeFile(t, subPng, "sub png")

	files, err := discoverImageFiles([]string{tempDir}, false, nil, nil)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Contains(t, files, rootPng)
	assert.NotContains(t, files, subPng)
}

func TestDiscoverImageFiles_IncludeExcludePatterns(t *testing.T) {
	tempDir := t.TempDir()
	test1 := filepath.Join(tempDir, "test1.png")
	test2 := filepath.Join(tempDir, "test2.png")
	excluded := filepath.Join(tempDir, "exclude.png")
	writeFile(t, test1, "test1")
	writeFile(t, test2, "test2")
	writeFile(t, excluded, "exclude")

	files, err := discoverImageFiles([]string{tempDir}, false, []string{"*.png"}, []string{"*exclude*"})
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, files, test1)
	assert.Contains(t, files, test2)
	assert.NotContains(t, files, excluded)
}

func TestDiscoverImageFiles_IncludeOverridesExtensionFilter(t *testing.T) {
	tempDir := t.TempDir()
	tiff := filepath.Join(tempDir, "scan.tiff")
	writeFile(t, tiff, "tiff bytes")

	files, err := discoverImageFiles([]string{tempDir}, false, []string{"*.tiff"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{tiff}, files)
}

func TestDiscoverImageFiles_NonExistentPath(t *testing.T) {
	files, err := discoverImageFiles([]string{"/nonexistent/directory"}, false, nil, nil)
	require.Error(t, err)
	assert.Nil(t, files)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestDiscoverInDirectory_EmptyDirectory(t *testing.T) {
	files, err := discoverInDirectory(t.TempDir(), false, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestShouldIncludeFile(t *testing.T) {
	testCases := []struct {
		name     string
		path     string
		include  []string
		exclude  []string
		expected bool
	}{
		{"supported image, no patterns", "photo.jpg", nil, nil, true},
		{"unsupported file, no patterns", "notes.txt", nil, nil, false},
		{"exclude wins over include", "photo.jpg", []string{"*.jpg"}, []string{"photo.*"}, false},
		{"include pattern matches", "scan.tiff", []string{"*.tiff"}, nil, true},
		{"include pattern misses", "photo.jpg", []string{"*.tiff"}, nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, shouldIncludeFile(tc.path, tc.include, tc.exclude))
		})
	}
}

func TestMatchesAnyPattern(t *testing.T) {
	testCases := []struct {
		filename string
		patterns []string
		expected bool
	}{
		{"test.png", []string{"*.png"}, true},
		{"test.jpg", []string{"*.png"}, false},
		{"test.PNG", []string{"*.png"}, false},
		{"test.png", []string{"test.*"}, true},
		{"other.png", []string{"test.*"}, false},
		{"photo.jpg", []string{"*.png", "*.jpg"}, true},
		{"test.png", nil, false},
	}

	for _, tc := range testCases {
		result := matchesAnyPattern(tc.filename, tc.patterns)
		assert.Equal(t, tc.expected, result, "filename=%s patterns=%v", tc.filename, tc.patterns)
	}
}
