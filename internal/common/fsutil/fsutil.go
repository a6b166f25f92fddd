package fsutil

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/reports/coverage.json
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// LocalPath resolves a resource location to a filesystem path.
// It accepts file:// URLs and plain paths (a leading '~' is expanded);
// ok is false for any other scheme.
func LocalPath(location string) (path string, ok bool, err error) {
	if location == "" {
		return "", false, nil
	}
	u, perr := url.Parse(location)
	// single-letter schemes are Windows drive letters, not URLs
	if perr != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		p, err := ExpandHome(location)
		if err != nil {
			return "", true, err
		}
		return filepath.Clean(p), true, nil
	}
	if strings.EqualFold(u.Scheme, "file") {
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		return filepath.FromSlash(p), true, nil
	}
	return "", false, nil
}
