// Package filter selects the turns of one conversation that are usable for
// packing.
package filter

import (
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/rt09-segmenter/groundtruth"
)

// Sub-millisecond slack for float products such as 1.1*4000.
const epsilon = 1e-6

// Policy is one of the two mutually exclusive filtering strategies.
type Policy func(turns []groundtruth.Turn) []groundtruth.Turn

// NewPolicy returns SkipOverlapping when skipOverlapping is set, otherwise a
// WithinTolerance policy bound to minSegmentMs and tolerance.
func NewPolicy(skipOverlapping bool, minSegmentMs int64, tolerance float64, log *logrus.Entry) Policy {
	if skipOverlapping {
		return SkipOverlapping
	}
	return func(turns []groundtruth.Turn) []groundtruth.Turn {
		return WithinTolerance(turns, minSegmentMs, tolerance, log)
	}
}

// SkipOverlapping keeps only turns that are isolated from both neighbours.
// A turn overlapping its predecessor is skipped; a clean turn whose successor
// overlaps it is skipped together with that successor.
func SkipOverlapping(turns []groundtruth.Turn) []groundtruth.Turn {
	n := len(turns)
	out := make([]groundtruth.Turn, 0, n)

	for i := 0; i < n; {
		cur := turns[i]
		if i > 0 && !(turns[i-1].End < cur.Start) {
			i++
			continue
		}
		if i+1 < n && !(turns[i+1].Start > cur.End) {
			i += 2
			continue
		}
		out = append(out, cur)
		i++
	}
	return out
}

// WithinTolerance drops turns longer than (1+tolerance)*minSegmentMs.
func WithinTolerance(turns []groundtruth.Turn, minSegmentMs int64, tolerance float64, log *logrus.Entry) []groundtruth.Turn {
	ceiling := (1 + tolerance) * float64(minSegmentMs)
	out := make([]groundtruth.Turn, 0, len(turns))

	for _, t := range turns {
		d := t.DurationMs()
		if float64(d) > ceiling+epsilon {
			if log != nil {
				log.WithFields(logrus.Fields{
					"speaker":     t.Speaker,
					"duration_ms": d,
					"ceiling_ms":  ceiling,
				}).Debug("dropping oversized turn")
			}
			continue
		}
		out = append(out, t)
	}
	return out
}
