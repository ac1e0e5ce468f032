package fingerprint

import (
	"context"
	"runtime"
	"sync"

	"photorestore/internal/asset"
	"photorestore/internal/logging"
)

// Failure records a file the batch could not fingerprint at all.
type Failure struct {
	Path string
	Err  error
}

// Batch fingerprints paths concurrently with a bounded worker pool.
// Records come back in input order; per-file failures are collected and
// never abort the batch. The returned error is non-nil only when the
// context is cancelled before all work is issued.
func (s *Service) Batch(ctx context.Context, paths []string, workers int) ([]asset.Record, []Failure, error) {
	if len(paths) == 0 {
		return nil, nil, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(paths))

	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job)
	records := make([]*asset.Record, len(paths))
	failures := make([]*Failure, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				rec, err := s.File(ctx, j.path)
				if err != nil {
					failures[j.idx] = &Failure{Path: j.path, Err: err}
					continue
				}
				records[j.idx] = &rec
			}
		}()
	}

feed:
	for i, path := range paths {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{idx: i, path: path}:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	out := make([]asset.Record, 0, len(paths))
	var failed []Failure
	for i := range paths {
		switch {
		case records[i] != nil:
			out = append(out, *records[i])
		case failures[i] != nil:
			failed = append(failed, *failures[i])
			s.logger.Warn("file skipped",
				logging.String("path", failures[i].Path),
				logging.Error(failures[i].Err))
		}
	}
	return out, failed, nil
}
