package match

import "photorestore/internal/asset"

// Status is the verdict for one Amazon unit.
type Status string

const (
	StatusMatched   Status = "matched"
	StatusMissing   Status = "missing"
	StatusUncertain Status = "uncertain"
)

// Strategy names the tier that produced a match. Missing and uncertain
// verdicts carry StrategyNone; the raising tier is described in Reason.
type Strategy string

const (
	StrategyExact      Strategy = "exact"
	StrategyPerceptual Strategy = "perceptual"
	StrategyMetadata   Strategy = "metadata"
	StrategyNone       Strategy = "none"
)

// Classification is the terminal result of comparing one Amazon unit
// against the iCloud library. Matched is set iff Status is StatusMatched.
type Classification struct {
	Unit       asset.Unit
	Status     Status
	Strategy   Strategy
	Matched    *asset.Unit
	Confidence float64
	Reason     string
}

// Tally aggregates a classification list for reporting.
type Tally struct {
	Units      int
	LivePhotos int
	Matched    int
	Missing    int
	Uncertain  int
	Exact      int
	Perceptual int
	Metadata   int
	Warnings   int
}

// Summarize counts classifications in a single pass.
func Summarize(classifications []Classification) Tally {
	var tally Tally
	tally.Units = len(classifications)
	for _, c := range classifications {
		if c.Unit.IsLivePhoto() {
			tally.LivePhotos++
		}
		if c.Unit.Primary.HasWarnings() || (c.Unit.Companion != nil && c.Unit.Companion.HasWarnings()) {
			tally.Warnings++
		}
		switch c.Status {
		case StatusMatched:
			tally.Matched++
		case StatusMissing:
			tally.Missing++
		case StatusUncertain:
			tally.Uncertain++
		}
		switch c.Strategy {
		case StrategyExact:
			tally.Exact++
		case StrategyPerceptual:
			tally.Perceptual++
		case StrategyMetadata:
			tally.Metadata++
		}
	}
	return tally
}
