package pdf

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPasswordError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "password mention", err: errors.New("please provide the correct password"), want: true},
		{name: "encrypted mention", err: errors.New("this file is Encrypted"), want: true},
		{name: "decrypt mention", err: errors.New("cannot decrypt stream"), want: true},
		{name: "unrelated error", err: errors.New("file not found"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPasswordError(tt.err))
		})
	}
}

func TestIsEncrypted_MissingFile(t *testing.T) {
	_, err := IsEncrypted("/non/existent/file.pdf")
	require.Error(t, err)
}

func TestDecrypt_MissingFile(t *testing.T) {
	_, err := Decrypt("/non/existent/file.pdf", Credentials{UserPassword: "secret"})
	require.Error(t, err)
}

func TestResolveEncrypted_PlainFile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	pdfPath := filepath.Join(t.TempDir(), "plain.pdf")
	createMinimalPDF(t, pdfPath)

	encrypted, err := IsEncrypted(pdfPath)
	if err != nil {
		t.Logf("encryption check failed (acceptable for minimal test PDF): %v", err)
		return
	}
	require.False(t, encrypted)

	path, cleanup, err := resolveEncrypted(pdfPath, nil)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, pdfPath, path, "plain files must pass through undecrypted")
}
