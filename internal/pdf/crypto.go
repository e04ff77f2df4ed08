package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Credentials carries the passwords of a protected PDF.
type Credentials struct {
	UserPassword  string `json:"user_password,omitempty"`
	OwnerPassword string `json:"owner_password,omitempty"`
}

// IsEncrypted reports whether a PDF file is password-protected. The
// check reads the page count, which fails with a password error on
// protected files.
func IsEncrypted(filename string) (bool, error) {
	_, err := api.PageCountFile(filename)
	if err != nil {
		if IsPasswordError(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check PDF encryption status: %w", err)
	}
	return false, nil
}

// Decrypt writes a decrypted copy of a protected PDF to a temporary
// file and returns its path. The caller removes the file when done.
func Decrypt(filename string, creds Credentials) (string, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = creds.UserPassword
	conf.OwnerPW = creds.OwnerPassword

	tempFile, err := os.CreateTemp("", "docshot-decrypted-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	_ = tempFile.Close()

	if err := api.DecryptFile(filename, tempFile.Name(), conf); err != nil {
		_ = os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to decrypt PDF: %w", err)
	}
	return tempFile.Name(), nil
}

// IsPasswordError reports whether an error from pdfcpu indicates a
// missing or wrong password.
func IsPasswordError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") ||
		strings.Contains(msg, "encrypted") ||
		strings.Contains(msg, "decrypt")
}

// resolveEncrypted returns a readable path for the PDF, decrypting to a
// temporary file when necessary. cleanup removes any temporary copy.
func resolveEncrypted(filename string, creds *Credentials) (path string, cleanup func(), err error) {
	encrypted, err := IsEncrypted(filename)
	if err != nil {
		return "", nil, err
	}
	if !encrypted {
		return filename, func() {}, nil
	}
	if creds == nil {
		return "", nil, fmt.Errorf("%s is password protected", filename)
	}

	decrypted, err := Decrypt(filename, *creds)
	if err != nil {
		return "", nil, err
	}
	return decrypted, func() { _ = os.Remove(decrypted) }, nil
}
