package clients

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/maastricht-university/rt09-segmenter/packer"
)

var _ packer.Clipper = (*WavClipper)(nil)

// Clip is a PCM buffer. The zero value is the empty clip.
type Clip struct {
	format *audio.Format
	depth  int
	data   []int
}

func (c *Clip) frames() int {
	if c.format == nil || c.format.NumChannels == 0 {
		return 0
	}
	return len(c.data) / c.format.NumChannels
}

func (c *Clip) DurationMs() int64 {
	if c.format == nil || c.format.SampleRate == 0 {
		return 0
	}
	return int64(c.frames()) * 1000 / int64(c.format.SampleRate)
}

// WavClipper cuts clips out of WAV sources and writes WAV files. Decoded
// sources are kept in a small LRU cache since one speaker's intervals
// usually come from the same few files.
type WavClipper struct {
	Normalize bool

	cacheSize int
	cache     map[string]*Clip
	order     []string
}

func NewWavClipper(normalize bool, cacheSize int) *WavClipper {
	if cacheSize < 1 {
		cacheSize = 1
	}
	return &WavClipper{
		Normalize: normalize,
		cacheSize: cacheSize,
		cache:     map[string]*Clip{},
	}
}

func (w *WavClipper) Empty() packer.Buffer { return &Clip{} }

// Cut returns the [startMs, endMs) span of source, clamped to its length.
func (w *WavClipper) Cut(source string, startMs, endMs int64) (packer.Buffer, error) {
	src, err := w.load(source)
	if err != nil {
		return nil, err
	}

	sr := int64(src.format.SampleRate)
	ch := src.format.NumChannels
	n := int64(src.frames())

	from := clamp(startMs*sr/1000, 0, n)
	to := clamp(endMs*sr/1000, from, n)

	data := make([]int, int(to-from)*ch)
	copy(data, src.data[int(from)*ch:int(to)*ch])
	return &Clip{format: src.format, depth: src.depth, data: data}, nil
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (w *WavClipper) Concat(a, b packer.Buffer) (packer.Buffer, error) {
	ca, ok := a.(*Clip)
	if !ok {
		return nil, fmt.Errorf("concat: unsupported buffer %T", a)
	}
	cb, ok := b.(*Clip)
	if !ok {
		return nil, fmt.Errorf("concat: unsupported buffer %T", b)
	}
	if ca.format == nil {
		return cb, nil
	}
	if cb.format == nil {
		return ca, nil
	}
	if ca.format.SampleRate != cb.format.SampleRate ||
		ca.format.NumChannels != cb.format.NumChannels ||
		ca.depth != cb.depth {
		return nil, fmt.Errorf("concat: format mismatch %dHz/%dch/%dbit vs %dHz/%dch/%dbit",
			ca.format.SampleRate, ca.format.NumChannels, ca.depth,
			cb.format.SampleRate, cb.format.NumChannels, cb.depth)
	}

	data := make([]int, 0, len(ca.data)+len(cb.data))
	data = append(data, ca.data...)
	data = append(data, cb.data...)
	return &Clip{format: ca.format, depth: ca.depth, data: data}, nil
}

// Export writes b to path. Only the wav format is supported.
func (w *WavClipper) Export(b packer.Buffer, path, format string) error {
	if !strings.EqualFold(format, "wav") {
		return fmt.Errorf("export %s: unsupported format %q", path, format)
	}
	c, ok := b.(*Clip)
	if !ok {
		return fmt.Errorf("export %s: unsupported buffer %T", path, b)
	}
	if c.format == nil || len(c.data) == 0 {
		return fmt.Errorf("export %s: empty clip", path)
	}

	data := c.data
	if w.Normalize {
		data = normalize(data, c.depth)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := wav.NewEncoder(f, c.format.SampleRate, c.depth, c.format.NumChannels, 1)
	err = enc.Write(&audio.IntBuffer{Format: c.format, Data: data, SourceBitDepth: c.depth})
	if err == nil {
		err = enc.Close()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// normalize scales samples so the peak reaches full scale for depth.
func normalize(data []int, depth int) []int {
	peak := 0
	for _, v := range data {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	full := 1<<(depth-1) - 1
	out := make([]int, len(data))
	if peak == 0 {
		return out
	}
	for i, v := range data {
		out[i] = int(int64(v) * int64(full) / int64(peak))
	}
	return out
}

func (w *WavClipper) load(path string) (*Clip, error) {
	if c, ok := w.cache[path]; ok {
		w.touch(path)
		return c, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}
	if buf.Format == nil || buf.Format.SampleRate == 0 || buf.Format.NumChannels == 0 {
		return nil, errors.New(path + ": missing audio format")
	}

	c := &Clip{format: buf.Format, depth: int(dec.BitDepth), data: buf.Data}
	w.cache[path] = c
	w.touch(path)
	for len(w.order) > w.cacheSize {
		delete(w.cache, w.order[0])
		w.order = w.order[1:]
	}
	return c, nil
}

func (w *WavClipper) touch(path string) {
	for i, p := range w.order {
		if p == path {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.order = append(w.order, path)
}
