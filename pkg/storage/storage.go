package storage

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/imgbot/internal/common"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Storage writes media files under a destination directory. Files are
// written to a temporary name first and renamed when complete, so
// concurrent writers of distinct names never see each other's partial
// files.
type Storage struct{}

// SaveStream copies r into dir/name and returns the number of bytes written.
// On error no file named name is left behind.
func (s *Storage) SaveStream(dir, name string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return 0, fmt.Errorf("error creating destination: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".imgbot-*.part")
	if err != nil {
		return 0, fmt.Errorf("error creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmpName)
		if copyErr != nil {
			return n, fmt.Errorf("error writing %s: %w", name, copyErr)
		}
		return n, fmt.Errorf("error closing %s: %w", name, closeErr)
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return n, fmt.Errorf("error setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return n, fmt.Errorf("error saving file: %w", err)
	}
	return n, nil
}

// FileNameFromURL names a downloaded file after the last path segment of
// its URL. URLs without a usable segment get a name derived from a hash of
// the URL.
func FileNameFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	name := SanitizeName(path.Base(strings.ReplaceAll(p, "\\", "/")))
	if name == "" {
		return "media-" + common.ContentHash([]byte(rawURL))[:12]
	}
	return name
}

// SanitizeName strips characters that cannot appear in a single path
// element. It returns "" for names that refer to a directory.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return -1
		case r < 32:
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	switch name {
	case "", ".", "..":
		return ""
	}
	return name
}
