package present

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"autoposter/internal/generation"
	"autoposter/internal/textutil"
)

const maxNameAttempts = 1000

// FileName derives the base download name from the artifact title.
func FileName(a generation.Artifact, f Format) string {
	name := textutil.SanitizeFileName(a.Title)
	if name == "" {
		name = "article"
	}
	return name + f.Extension()
}

// WriteFile renders the artifact into dir without overwriting existing files:
// a taken name gets a -2, -3, ... suffix. It returns the path written.
func WriteFile(dir string, a generation.Artifact, f Format) (string, error) {
	data, err := Render(a, f)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}
	base := FileName(a, f)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		name := base
		if attempt > 1 {
			name = fmt.Sprintf("%s-%d%s", stem, attempt, ext)
		}
		path := filepath.Join(dir, name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := file.Write(data); err != nil {
			_ = file.Close()
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		if err := file.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free filename for %s after %d attempts", base, maxNameAttempts)
}
