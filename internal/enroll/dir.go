package enroll

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/kozaktomas/fras/internal/constants"
	"golang.org/x/sync/errgroup"
)

// imageExtensions lists the file types EnrollDir picks up
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".tif": true, ".tiff": true,
}

// FileResult is the outcome for one file of a directory enrollment
type FileResult struct {
	Path     string
	RecordID int64
	Err      error
}

// DirSummary aggregates a directory enrollment
type DirSummary struct {
	Total    int
	Enrolled int
	NoFace   int
	Failed   int
	Results  []FileResult // in file name order
}

// ListImages returns the image files directly inside dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// EnrollDir enrolls every image in dir under the same label, one record per
// image with a face. Per-file failures are collected, not returned; only
// listing failures and cancellation abort the run. progress, if non-nil, is
// called once per finished file, never concurrently.
func (s *Service) EnrollDir(ctx context.Context, label, dir string, concurrency int, progress func(FileResult)) (DirSummary, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return DirSummary{}, err
	}
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrency
	}

	results := make([]FileResult, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := s.Enroll(gctx, label, FromPath(path))
			if errors.Is(err, ErrInvalidInput) {
				return err
			}
			res := FileResult{Path: path, RecordID: out.RecordID, Err: err}
			results[i] = res
			if progress != nil {
				mu.Lock()
				progress(res)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DirSummary{}, err
	}

	summary := DirSummary{Total: len(paths), Results: results}
	for _, r := range results {
		switch {
		case r.Err == nil:
			summary.Enrolled++
		case errors.Is(r.Err, ErrNoFace):
			summary.NoFace++
		default:
			summary.Failed++
		}
	}
	return summary, nil
}
