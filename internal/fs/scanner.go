// Package fs finds workbooks on the local file system.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klytics/unmerge/internal/formats/xlsx"
	"github.com/klytics/unmerge/internal/processor"
)

// FileInfo represents a scanned workbook.
type FileInfo struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// ScanResult holds the results of a directory scan.
type ScanResult struct {
	RootDir   string     `json:"rootDir"`
	Files     []FileInfo `json:"files"`
	Skipped   int        `json:"skipped"` // previous outputs and lock files
	TotalSize int64      `json:"totalSize"`
	ScannedAt time.Time  `json:"scannedAt"`
}

// ScanOptions configures the directory scan.
type ScanOptions struct {
	Recursive bool
	Suffix    string // output suffix; matching files are skipped
	ModAfter  time.Time
}

// Scan walks a directory and finds workbooks that have not been processed yet.
// Returned paths are joined onto root as given, so relative roots stay relative.
func Scan(root string, opts ScanOptions) (*ScanResult, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("could not access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	result := &ScanResult{
		RootDir:   abs,
		ScannedAt: time.Now(),
	}

	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible
		}
		if d.IsDir() {
			if !opts.Recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !xlsx.Supported(path) {
			return nil
		}
		if strings.HasPrefix(d.Name(), "~$") || processor.IsOutput(path, opts.Suffix) {
			result.Skipped++
			return nil
		}

		finfo, err := d.Info()
		if err != nil {
			return nil
		}
		if !opts.ModAfter.IsZero() && finfo.ModTime().Before(opts.ModAfter) {
			return nil
		}

		result.Files = append(result.Files, FileInfo{
			Path:       path,
			Name:       d.Name(),
			Size:       finfo.Size(),
			ModifiedAt: finfo.ModTime(),
		})
		result.TotalSize += finfo.Size()
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	// Sort by path for deterministic output
	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})

	return result, nil
}

// Paths returns the scanned file paths in order.
func (r *ScanResult) Paths() []string {
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	return paths
}
