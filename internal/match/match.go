package match

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"photorestore/internal/asset"
)

// Default tunables. The perceptual values are Hamming distances over
// 64-bit hashes; the metadata tolerances mirror what consumer photo
// libraries drift by in practice.
const (
	DefaultPerceptualThreshold = 5
	DefaultReviewThreshold     = 10
	DefaultTimestampTolerance  = time.Minute
	DefaultSizeTolerance       = 0.05
	DefaultDurationTolerance   = time.Second
)

// Options tunes the match engine. Use DefaultOptions as the starting point;
// a zero Options value is valid but disables the perceptual tier's slack
// entirely (threshold 0 accepts only identical hashes).
type Options struct {
	// PerceptualThreshold is the largest Hamming distance accepted as a
	// perceptual match.
	PerceptualThreshold int
	// ReviewThreshold extends the perceptual tier with an uncertain band:
	// distances in (PerceptualThreshold, ReviewThreshold] surface for
	// manual review when no later tier claims the unit. Zero disables the
	// band.
	ReviewThreshold int
	// TimestampTolerance is the capture-time agreement window in the
	// metadata tier.
	TimestampTolerance time.Duration
	// SizeTolerance is the relative byte-size agreement bound in the
	// metadata tier (0.05 accepts a 5% difference).
	SizeTolerance float64
	// DurationTolerance is the video-duration window used to break
	// metadata ties.
	DurationTolerance time.Duration
	// Workers bounds classification parallelism. Zero means NumCPU.
	Workers int
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		PerceptualThreshold: DefaultPerceptualThreshold,
		ReviewThreshold:     DefaultReviewThreshold,
		TimestampTolerance:  DefaultTimestampTolerance,
		SizeTolerance:       DefaultSizeTolerance,
		DurationTolerance:   DefaultDurationTolerance,
	}
}

// Validate rejects configurations the engine must not run with.
func (o Options) Validate() error {
	if o.PerceptualThreshold < 0 {
		return fmt.Errorf("perceptual threshold must be >= 0, got %d", o.PerceptualThreshold)
	}
	if o.PerceptualThreshold > asset.MaxHashDistance {
		return fmt.Errorf("perceptual threshold must be <= %d, got %d", asset.MaxHashDistance, o.PerceptualThreshold)
	}
	if o.ReviewThreshold < 0 {
		return fmt.Errorf("review threshold must be >= 0, got %d", o.ReviewThreshold)
	}
	if o.ReviewThreshold > 0 && o.ReviewThreshold < o.PerceptualThreshold {
		return fmt.Errorf("review threshold %d must not be below perceptual threshold %d",
			o.ReviewThreshold, o.PerceptualThreshold)
	}
	if o.TimestampTolerance < 0 {
		return fmt.Errorf("timestamp tolerance must be >= 0, got %v", o.TimestampTolerance)
	}
	if o.SizeTolerance < 0 || o.SizeTolerance >= 1 {
		return fmt.Errorf("size tolerance must be in [0,1), got %v", o.SizeTolerance)
	}
	if o.DurationTolerance < 0 {
		return fmt.Errorf("duration tolerance must be >= 0, got %v", o.DurationTolerance)
	}
	return nil
}

// library is the prepared iCloud side: the unit list plus hash indexes
// mapping each content hash to the earliest unit carrying it.
type library struct {
	units         []asset.Unit
	primaryHash   map[string]int
	companionHash map[string]int
}

func buildLibrary(units []asset.Unit) *library {
	lib := &library{
		units:         units,
		primaryHash:   make(map[string]int, len(units)),
		companionHash: make(map[string]int),
	}
	for i, unit := range units {
		if _, ok := lib.primaryHash[unit.Primary.ContentHash]; !ok {
			lib.primaryHash[unit.Primary.ContentHash] = i
		}
		if unit.Companion != nil {
			if _, ok := lib.companionHash[unit.Companion.ContentHash]; !ok {
				lib.companionHash[unit.Companion.ContentHash] = i
			}
		}
	}
	return lib
}

// Classify evaluates every Amazon unit against the iCloud set. The result
// slice preserves Amazon input order. The iCloud collection is only read,
// so classification fans out across a bounded worker pool; determinism is
// unaffected because each unit's verdict is independent.
func Classify(ctx context.Context, amazon, icloud []asset.Unit, opts Options) ([]Classification, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("match options: %w", err)
	}
	if len(amazon) == 0 {
		return nil, nil
	}

	lib := buildLibrary(icloud)
	out := make([]Classification, len(amazon))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(amazon))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out[idx] = classifyUnit(lib, amazon[idx], opts)
			}
		}()
	}

feed:
	for i := range amazon {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// classifyUnit walks the tiers in priority order and returns the first
// terminal verdict. A perceptual review-band candidate is deferred behind
// the metadata tier and only surfaces when nothing else claims the unit.
func classifyUnit(lib *library, unit asset.Unit, opts Options) Classification {
	var deferred *Classification
	for _, evaluate := range tiers {
		res := evaluate(lib, unit, opts)
		if res.ok {
			return res.classification
		}
		if res.deferred != nil && deferred == nil {
			deferred = res.deferred
		}
	}
	if deferred != nil {
		return *deferred
	}
	return Classification{
		Unit:     unit,
		Status:   StatusMissing,
		Strategy: StrategyNone,
		Reason:   "no exact, perceptual, or metadata candidate",
	}
}
