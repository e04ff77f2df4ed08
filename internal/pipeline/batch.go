package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
)

type imageJob struct {
	index int
	img   image.Image
}

type imageResult struct {
	index int
	fr    *FrameResult
	err   error
}

// AnalyzeBatch fans the images out over a bounded worker pool. Each
// worker gets its own analyzer built from this analyzer's configuration,
// since one analyzer must not run concurrent frames. Results come back
// in input order; per-image failures leave a nil slot and the first one
// is returned after the pool drains.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, imgs []image.Image) ([]*FrameResult, error) {
	if a == nil || a.closed {
		return nil, errors.New("analyzer is closed")
	}
	if len(imgs) == 0 {
		return nil, errors.New("no images provided")
	}

	workers := a.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(imgs) {
		workers = len(imgs)
	}

	if cb := a.cfg.Progress; cb != nil {
		cb.OnStart(len(imgs))
		defer cb.OnComplete()
	}

	if workers == 1 {
		return a.analyzeSerial(ctx, imgs)
	}

	jobs := make(chan imageJob, len(imgs))
	results := make(chan imageResult, len(imgs))

	var wg sync.WaitGroup
	for range workers {
		worker, err := (&Builder{cfg: a.cfg}).Build()
		if err != nil {
			return nil, fmt.Errorf("spawn batch worker: %w", err)
		}
		wg.Add(1)
		go func(w *Analyzer) {
			defer wg.Done()
			defer func() { _ = w.Close() }()
			for {
				select {
				case job, ok := <-jobs:
					if !ok {
						return
					}
					fr, err := w.AnalyzeFrame(ctx, job.img)
					select {
					case results <- imageResult{index: job.index, fr: fr, err: err}:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}(worker)
	}

	go func() {
		defer close(jobs)
		for i, img := range imgs {
			select {
			case jobs <- imageJob{index: i, img: img}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*FrameResult, len(imgs))
	errs := make([]error, len(imgs))
	done := 0
	for res := range results {
		ordered[res.index] = res.fr
		errs[res.index] = res.err
		done++
		if cb := a.cfg.Progress; cb != nil {
			cb.OnProgress(done, len(imgs))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var firstErr error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if cb := a.cfg.Progress; cb != nil {
			cb.OnError(i, err)
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("image %d: %w", i, err)
		}
	}
	return ordered, firstErr
}

func (a *Analyzer) analyzeSerial(ctx context.Context, imgs []image.Image) ([]*FrameResult, error) {
	ordered := make([]*FrameResult, len(imgs))
	var firstErr error
	for i, img := range imgs {
		fr, err := a.AnalyzeFrame(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				return ordered, ctx.Err()
			}
			if cb := a.cfg.Progress; cb != nil {
				cb.OnError(i, err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("image %d: %w", i, err)
			}
			continue
		}
		ordered[i] = fr
		if cb := a.cfg.Progress; cb != nil {
			cb.OnProgress(i+1, len(imgs))
		}
	}
	return ordered, firstErr
}
