// Package artifact persists a captured download to the output directory.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write ensures dir exists, then writes body to dir/name, overwriting any
// existing file. The name is reduced to its base so a portal-supplied
// disposition header cannot place the file outside dir. Returns the full
// path written.
func Write(dir, name string, body []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}

	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("unusable artifact name %q", name)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	return path, nil
}
