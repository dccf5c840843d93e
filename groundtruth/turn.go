package groundtruth

// Turn is one annotated utterance of a conversation. Times are seconds.
type Turn struct {
	Start    float64
	End      float64
	Speaker  string
	SpkrType string
	Channel  string
	Dialect  string
}

// StartMs and EndMs truncate to whole milliseconds.
func (t Turn) StartMs() int64 { return int64(t.Start * 1000) }

func (t Turn) EndMs() int64 { return int64(t.End * 1000) }

// DurationMs is EndMs - StartMs; negative when the annotation is inverted.
func (t Turn) DurationMs() int64 { return t.EndMs() - t.StartMs() }
