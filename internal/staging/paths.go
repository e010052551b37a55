package staging

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// FromPaths resolves local paths into staged files. Directories are walked
// recursively and hidden entries below them are skipped. If any path cannot
// be read the whole call fails and nothing is returned.
func FromPaths(paths ...string) ([]StagedFile, error) {
	var files []StagedFile
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			f, err := fileFor(p, info)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != p && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			f, err := fileFor(path, info)
			if err != nil {
				return err
			}
			files = append(files, f)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	return files, nil
}

func fileFor(path string, info fs.FileInfo) (StagedFile, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return StagedFile{}, fmt.Errorf("detect type %s: %w", path, err)
	}
	return StagedFile{
		Name:      filepath.Base(path),
		MimeType:  baseMime(mt.String()),
		SizeBytes: info.Size(),
		Path:      path,
	}, nil
}

// baseMime drops parameters and maps the "unknown" fallback to empty,
// which is how a file picker reports a type it does not recognise.
func baseMime(s string) string {
	s, _, _ = strings.Cut(s, ";")
	s = strings.TrimSpace(s)
	if s == "application/octet-stream" {
		return ""
	}
	return s
}

// FormatBytes renders a byte count for display, e.g. "1.5 KiB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
