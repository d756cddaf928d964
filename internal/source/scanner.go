package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DiscoveredFile is an input file found in the data directory.
type DiscoveredFile struct {
	Path    string
	Name    string // path relative to the scanned directory
	Format  string // "csv" or "toml"
	Size    int64
	ModTime time.Time
}

// supportedExt maps lowercase file extensions to formats.
var supportedExt = map[string]string{
	".csv":  "csv",
	".toml": "toml",
}

// FormatOf returns the input format for a path, or "" when unsupported.
func FormatOf(path string) string {
	return supportedExt[strings.ToLower(filepath.Ext(path))]
}

// ScanDir walks dataDir and discovers all CSV and TOML input files, newest
// first. A missing directory yields no files and no error.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		name := d.Name()
		if d.IsDir() {
			if path != dataDir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		format := FormatOf(path)
		if format == "" {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished between readdir and stat
		}

		rel, _ := filepath.Rel(dataDir, path)
		files = append(files, DiscoveredFile{
			Path:    path,
			Name:    rel,
			Format:  format,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})

	return files, err
}
