package packer

import (
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const unknownGender = "unknown"

// Distribution summarises exported clip sizes in milliseconds.
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type Stats struct {
	TotalDurationMs int64              `json:"total_duration_ms"`
	Segments        int                `json:"segments"`
	GenderCounts    map[string]int     `json:"gender_counts"`
	GenderBalance   map[string]float64 `json:"gender_balance"`
	Sizes           Distribution       `json:"sizes"`
}

func genderBucket(g string) string {
	g = strings.ToLower(strings.TrimSpace(g))
	if g == "" {
		return unknownGender
	}
	return g
}

type tally struct {
	sizes   []float64
	genders map[string]int
	total   int64
}

func newTally() *tally {
	return &tally{genders: map[string]int{}}
}

func (t *tally) add(gender string, sizeMs int64) {
	t.sizes = append(t.sizes, float64(sizeMs))
	t.genders[genderBucket(gender)]++
	t.total += sizeMs
}

func (t *tally) stats() Stats {
	s := Stats{
		TotalDurationMs: t.total,
		Segments:        len(t.sizes),
		GenderCounts:    t.genders,
		GenderBalance:   make(map[string]float64, len(t.genders)),
	}
	if len(t.sizes) == 0 {
		return s
	}
	for g, n := range t.genders {
		s.GenderBalance[g] = float64(n) / float64(len(t.sizes))
	}
	mean, std := stat.PopMeanStdDev(t.sizes, nil)
	s.Sizes = Distribution{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(t.sizes),
		Max:    floats.Max(t.sizes),
	}
	return s
}
