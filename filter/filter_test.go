package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maastricht-university/rt09-segmenter/groundtruth"
	"github.com/maastricht-university/rt09-segmenter/logger"
)

func turn(speaker string, start, end float64) groundtruth.Turn {
	return groundtruth.Turn{Start: start, End: end, Speaker: speaker, SpkrType: "male"}
}

func speakers(turns []groundtruth.Turn) []string {
	out := []string{}
	for _, t := range turns {
		out = append(out, t.Speaker)
	}
	return out
}

func TestSkipOverlapping(t *testing.T) {
	tests := []struct {
		name  string
		turns []groundtruth.Turn
		want  []string
	}{
		{
			name:  "empty",
			turns: nil,
			want:  []string{},
		},
		{
			name:  "single",
			turns: []groundtruth.Turn{turn("a", 0, 1)},
			want:  []string{"a"},
		},
		{
			name:  "three isolated turns",
			turns: []groundtruth.Turn{turn("a", 0, 1), turn("b", 2, 3), turn("c", 4, 5)},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "second overlaps first, resume at third",
			turns: []groundtruth.Turn{turn("a", 0, 2), turn("b", 1.5, 3), turn("c", 4, 5)},
			want:  []string{"c"},
		},
		{
			name:  "touching boundaries count as overlap",
			turns: []groundtruth.Turn{turn("a", 0, 2), turn("b", 2, 3), turn("c", 4, 5)},
			want:  []string{"c"},
		},
		{
			name: "third overlaps second",
			turns: []groundtruth.Turn{
				turn("a", 0, 1), turn("b", 2, 4), turn("c", 3.5, 5), turn("d", 6, 7),
			},
			want: []string{"a", "d"},
		},
		{
			name: "resumed turn overlapping its predecessor is skipped alone",
			turns: []groundtruth.Turn{
				turn("a", 0, 2), turn("b", 1, 5), turn("c", 4, 6), turn("d", 7, 8),
			},
			want: []string{"d"},
		},
		{
			name:  "last turn overlapping its predecessor",
			turns: []groundtruth.Turn{turn("a", 0, 1), turn("b", 2, 4), turn("c", 3, 5)},
			want:  []string{"a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, speakers(SkipOverlapping(tt.turns)))
		})
	}
}

func TestSkipOverlapping_PreservesOrder(t *testing.T) {
	in := []groundtruth.Turn{turn("x", 0, 1), turn("y", 2, 3), turn("z", 4, 5), turn("w", 6, 7)}
	assert.Equal(t, in, SkipOverlapping(in))
}

func TestWithinTolerance_Boundary(t *testing.T) {
	log := logger.Discard()
	// ceiling = 1.1 * 4000 = 4400ms
	exact := turn("exact", 10, 14.4)
	over := turn("over", 20, 24.401)
	short := turn("short", 30, 31)

	got := WithinTolerance([]groundtruth.Turn{exact, over, short}, 4000, 0.1, log)
	assert.Equal(t, []string{"exact", "short"}, speakers(got))
}

func TestWithinTolerance_KeepsOverlaps(t *testing.T) {
	in := []groundtruth.Turn{turn("a", 0, 2), turn("b", 1, 3)}
	assert.Len(t, WithinTolerance(in, 4000, 0.1, nil), 2)
}

func TestNewPolicy(t *testing.T) {
	in := []groundtruth.Turn{turn("a", 0, 2), turn("b", 1, 3), turn("c", 10, 20)}

	skip := NewPolicy(true, 4000, 0.1, logger.Discard())
	assert.Equal(t, []string{"c"}, speakers(skip(in)))

	tol := NewPolicy(false, 4000, 0.1, logger.Discard())
	assert.Equal(t, []string{"a", "b"}, speakers(tol(in)))
}
