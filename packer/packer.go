// Package packer greedily assembles speaker intervals into clips close to a
// target duration and enforces a per-speaker duration quota.
package packer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

type Packer struct {
	opts Options
	clip Clipper
	rng  Shuffler
	log  *logrus.Entry
}

func New(opts Options, clip Clipper, rng Shuffler, log *logrus.Entry) *Packer {
	return &Packer{opts: opts, clip: clip, rng: rng, log: log.WithField("component", "packer")}
}

// Result of one packing run.
type Result struct {
	Speakers map[SpeakerKey]GenerationInfo
	Excluded []SpeakerKey
	Stats    Stats
}

// Included returns the speakers not on the exclusion list, sorted.
func (r *Result) Included() []SpeakerKey {
	skip := make(map[SpeakerKey]bool, len(r.Excluded))
	for _, k := range r.Excluded {
		skip[k] = true
	}
	var out []SpeakerKey
	for _, k := range sortedKeys(r.Speakers) {
		if !skip[k] {
			out = append(out, k)
		}
	}
	return out
}

func sortedKeys[V any](m map[SpeakerKey]V) []SpeakerKey {
	keys := make([]SpeakerKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}

// SegmentPath is where the idx-th clip of key is written under root.
func SegmentPath(root string, key SpeakerKey, idx int, ext string) string {
	return filepath.Join(root, key.Organisation, key.Name(), fmt.Sprintf("%d.%s", idx, ext))
}

// Pack processes every speaker of intervals in key order and writes the
// clips under root. The caller's slices are not modified.
func (p *Packer) Pack(intervals map[SpeakerKey][]Interval, root string) (*Result, error) {
	res := &Result{Speakers: make(map[SpeakerKey]GenerationInfo, len(intervals))}
	t := newTally()

	for _, key := range sortedKeys(intervals) {
		info, err := p.packSpeaker(key, intervals[key], root, t)
		res.Speakers[key] = info
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", key.Name(), err)
		}
		if p.opts.excluded(info.DurationMs) {
			res.Excluded = append(res.Excluded, key)
		}
	}
	res.Stats = t.stats()

	p.log.WithFields(logrus.Fields{
		"speakers":          len(res.Speakers),
		"excluded":          len(res.Excluded),
		"segments":          res.Stats.Segments,
		"total_duration_ms": res.Stats.TotalDurationMs,
	}).Info("packing finished")
	return res, nil
}

func (p *Packer) packSpeaker(key SpeakerKey, candidates []Interval, root string, t *tally) (GenerationInfo, error) {
	var info GenerationInfo

	list := make([]Interval, len(candidates))
	copy(list, candidates)
	if p.rng != nil {
		p.rng.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
	}

	buf := p.clip.Empty()
	var size int64
	discarded := 0

	for i := 0; i < len(list) && info.DurationMs < p.opts.MaxPerSpeakerMs; i++ {
		seg := list[i]
		if seg.DurationMs() <= 0 {
			p.log.WithFields(logrus.Fields{
				"speaker":  key.Name(),
				"source":   seg.Source,
				"start_ms": seg.StartMs,
				"end_ms":   seg.EndMs,
			}).Debug("empty or inverted interval dropped")
			discarded++
			continue
		}
		next := size + seg.DurationMs()
		if !p.opts.fits(next) {
			discarded++
			continue
		}

		cut, err := p.clip.Cut(seg.Source, seg.StartMs, seg.EndMs)
		if err != nil {
			return info, err
		}
		if buf, err = p.clip.Concat(buf, cut); err != nil {
			return info, err
		}
		size = next

		if size <= p.opts.MinSegmentMs {
			continue
		}

		path := SegmentPath(root, key, info.Segments, p.opts.Format)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return info, err
		}
		if err := p.clip.Export(buf, path, p.opts.Format); err != nil {
			return info, err
		}
		info.Segments++
		info.DurationMs += size
		t.add(key.Gender, size)

		buf = p.clip.Empty()
		size = 0
	}

	p.log.WithFields(logrus.Fields{
		"speaker":     key.Name(),
		"gender":      key.Gender,
		"candidates":  len(list),
		"discarded":   discarded,
		"segments":    info.Segments,
		"duration_ms": info.DurationMs,
	}).Debug("speaker packed")
	return info, nil
}
