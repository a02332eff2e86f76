package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// TempDir is where multipart uploads are staged before they are relayed.
type TempDir string

// NewPath returns a fresh path inside the dir for a client file name. Only
// the extension of the client name is kept.
func (d TempDir) NewPath(clientName string) (string, error) {
	if err := os.MkdirAll(string(d), 0o755); err != nil {
		return "", fmt.Errorf("media: create temp dir: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(clientName)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return filepath.Join(string(d), uuid.NewString()+ext), nil
}

// Remove deletes a staged file. Missing files are fine.
func Remove(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}
