package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/runway/internal/source"
)

// CatalogEntry is one discovered input file and its parse outcome.
type CatalogEntry struct {
	File   source.DiscoveredFile
	Result *source.ParseResult
	Err    error
}

// Periods returns the number of parsed periods, or 0 on error.
func (e CatalogEntry) Periods() int {
	if e.Result == nil {
		return 0
	}
	return len(e.Result.Input.Periods)
}

// LoadResult holds the output of cataloging a data directory.
type LoadResult struct {
	Entries     []CatalogEntry // same order as the scan: newest first
	TotalFiles  int
	ParsedFiles int
	FileErrors  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every input file in dataDir so the caller can
// offer them for selection with their period counts and errors.
// It uses a bounded worker pool for parallel parsing.
func Load(dataDir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	entries := make([]CatalogEntry, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				res, err := source.LoadFile(files[idx].Path)
				entries[idx] = CatalogEntry{File: files[idx], Result: res, Err: err}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()

	for _, e := range entries {
		if e.Err != nil {
			result.FileErrors++
		} else {
			result.ParsedFiles++
		}
	}
	result.Entries = entries

	return result, nil
}
