package packer

// SpeakerKey identifies a speaker across the conversations of one
// organisation.
type SpeakerKey struct {
	Organisation string
	SpeakerID    string
	Gender       string
}

// Name is the "organisation_speaker" form used for directories and the
// speaker list.
func (k SpeakerKey) Name() string {
	return k.Organisation + "_" + k.SpeakerID
}

func (k SpeakerKey) less(o SpeakerKey) bool {
	if k.Organisation != o.Organisation {
		return k.Organisation < o.Organisation
	}
	if k.SpeakerID != o.SpeakerID {
		return k.SpeakerID < o.SpeakerID
	}
	return k.Gender < o.Gender
}

// Interval is a [StartMs, EndMs) span of one source audio file.
type Interval struct {
	Source  string
	StartMs int64
	EndMs   int64
}

func (i Interval) DurationMs() int64 { return i.EndMs - i.StartMs }

// GenerationInfo counts what has been exported for one speaker.
type GenerationInfo struct {
	Segments   int   `json:"segments"`
	DurationMs int64 `json:"duration_ms"`
}

// Buffer is an audio clip under construction.
type Buffer interface {
	DurationMs() int64
}

// Clipper cuts, joins and writes audio.
type Clipper interface {
	Empty() Buffer
	Cut(source string, startMs, endMs int64) (Buffer, error)
	Concat(a, b Buffer) (Buffer, error)
	Export(b Buffer, path, format string) error
}

// Shuffler is satisfied by *rand.Rand.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Options are the packing parameters, sizes in milliseconds.
type Options struct {
	TargetSegmentMs int64
	MinSegmentMs    int64
	MaxPerSpeakerMs int64
	Tolerance       float64
	Format          string
}

// Slack for float products such as 1.1*5000 and 0.9*20000.
const epsilon = 1e-6

// Ceiling is the largest clip size accepted: (1+tolerance)*target.
func (o Options) Ceiling() float64 {
	return (1 + o.Tolerance) * float64(o.TargetSegmentMs)
}

// QuotaFloor is the duration at or below which a speaker is excluded.
func (o Options) QuotaFloor() float64 {
	return (1 - o.Tolerance) * float64(o.MaxPerSpeakerMs)
}

func (o Options) fits(sizeMs int64) bool {
	return float64(sizeMs) <= o.Ceiling()+epsilon
}

func (o Options) excluded(durationMs int64) bool {
	return float64(durationMs) <= o.QuotaFloor()+epsilon
}
