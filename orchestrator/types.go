package orchestrator

import "github.com/maastricht-university/rt09-segmenter/packer"

// Conversation is one recorded meeting selected for a run.
type Conversation struct {
	ID           string
	Organisation string
	Channels     []string
	Files        []string // decodable audio, one per synchronized channel
}

type ParseFailure struct {
	Conversation string `json:"conversation"`
	Error        string `json:"error"`
}

// Report describes a finished run.
type Report struct {
	RunID         string
	Split         string
	OutputRoot    string
	Conversations int
	Result        *packer.Result
	Failures      []ParseFailure
	SpeakerList   string
}

// SpeakerRow is the per-speaker line of stats.json and speakers.xlsx.
type SpeakerRow struct {
	Organisation string `json:"organisation"`
	Speaker      string `json:"speaker"`
	Gender       string `json:"gender"`
	Segments     int    `json:"segments"`
	DurationMs   int64  `json:"duration_ms"`
	Excluded     bool   `json:"excluded"`
}
