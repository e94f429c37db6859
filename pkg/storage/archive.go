package storage

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrBadArchive is returned for archives that are corrupt, too large, or
// contain entries that would escape the destination.
var ErrBadArchive = errors.New("bad archive")

const (
	DefaultMaxArchiveBytes   int64 = 256 << 20
	DefaultMaxArchiveEntries       = 1000
)

// ArchiveLimits bound what ExtractArchive is willing to write.
type ArchiveLimits struct {
	MaxBytes   int64
	MaxEntries int
}

func DefaultArchiveLimits() ArchiveLimits {
	return ArchiveLimits{MaxBytes: DefaultMaxArchiveBytes, MaxEntries: DefaultMaxArchiveEntries}
}

// ExtractArchive unpacks a zip album into dir. Entries are flattened to
// their base names, with later duplicates renamed name-1.ext, name-2.ext
// and so on. Everything is staged in a hidden directory inside dir
// and only moved into place once the whole archive has been read, so a
// failed extraction leaves dir as it was. If a move fails, the files
// already moved are removed again. It returns the total bytes
// extracted and the names written.
func (s *Storage) ExtractArchive(dir string, data []byte, limits ArchiveLimits) (int64, []string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrBadArchive, err)
	}

	if limits.MaxEntries > 0 && len(zr.File) > limits.MaxEntries {
		return 0, nil, fmt.Errorf("%w: %d entries exceeds limit of %d", ErrBadArchive, len(zr.File), limits.MaxEntries)
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return 0, nil, fmt.Errorf("error creating destination: %w", err)
	}
	staging, err := os.MkdirTemp(dir, ".imgbot-album-*")
	if err != nil {
		return 0, nil, fmt.Errorf("error creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	var total int64
	var names []string
	used := make(map[string]bool)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name, err := entryName(f.Name)
		if err != nil {
			return 0, nil, err
		}
		name = uniqueName(name, used)

		remaining := int64(-1)
		if limits.MaxBytes > 0 {
			remaining = limits.MaxBytes - total
			if f.UncompressedSize64 > uint64(remaining) {
				return 0, nil, fmt.Errorf("%w: exceeds size limit of %d bytes", ErrBadArchive, limits.MaxBytes)
			}
		}

		n, err := extractEntry(f, filepath.Join(staging, name), remaining)
		if err != nil {
			return 0, nil, err
		}
		total += n
		used[name] = true
		names = append(names, name)
	}

	moved := make([]string, 0, len(names))
	for _, name := range names {
		target := filepath.Join(dir, name)
		if err := os.Rename(filepath.Join(staging, name), target); err != nil {
			for _, done := range moved {
				os.Remove(done)
			}
			return 0, nil, fmt.Errorf("error moving %s into place: %w", name, err)
		}
		moved = append(moved, target)
	}
	return total, names, nil
}

// uniqueName returns name, or name with a numeric suffix before the
// extension when an earlier entry already flattened to it.
func uniqueName(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if !used[candidate] {
			return candidate
		}
	}
}

// entryName validates a zip entry name and flattens it to a base name.
func entryName(raw string) (string, error) {
	clean := strings.ReplaceAll(raw, "\\", "/")
	if strings.HasPrefix(clean, "/") || filepath.IsAbs(raw) || filepath.VolumeName(raw) != "" {
		return "", fmt.Errorf("%w: absolute entry %q", ErrBadArchive, raw)
	}
	for _, part := range strings.Split(clean, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: entry %q escapes destination", ErrBadArchive, raw)
		}
	}
	name := SanitizeName(path.Base(clean))
	if name == "" {
		return "", fmt.Errorf("%w: unusable entry name %q", ErrBadArchive, raw)
	}
	return name, nil
}

// extractEntry writes one entry. limit < 0 means unbounded.
func extractEntry(f *zip.File, dst string, limit int64) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrBadArchive, f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return 0, fmt.Errorf("error creating %s: %w", dst, err)
	}

	var src io.Reader = rc
	if limit >= 0 {
		src = io.LimitReader(rc, limit+1)
	}
	n, copyErr := io.Copy(out, src)
	closeErr := out.Close()

	switch {
	case copyErr != nil:
		return 0, fmt.Errorf("%w: %s: %w", ErrBadArchive, f.Name, copyErr)
	case closeErr != nil:
		return 0, fmt.Errorf("error closing %s: %w", dst, closeErr)
	case limit >= 0 && n > limit:
		return 0, fmt.Errorf("%w: exceeds size limit", ErrBadArchive)
	}
	return n, nil
}
