package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/maastricht-university/rt09-segmenter/packer"
)

const (
	speakerListName = "speakers.txt"
	statsName       = "stats.json"
	workbookName    = "speakers.xlsx"
	workbookSheet   = "Sheet1"
)

// PackingParams is the slice of the configuration that shaped the clips.
type PackingParams struct {
	TargetSegmentMs int64   `json:"target_segment_size"`
	MinSegmentMs    int64   `json:"min_segment_size"`
	MaxPerSpeakerMs int64   `json:"max_duration_per_speaker"`
	Tolerance       float64 `json:"tolerance"`
	SkipOverlapping bool    `json:"skip_overlapping_segment"`
	Seed            int64   `json:"seed"` // effective seed
}

type StatsBundle struct {
	RunID         string         `json:"run_id"`
	Split         string         `json:"split"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Conversations int            `json:"conversations"`
	Params        PackingParams  `json:"params"`
	Stats         packer.Stats   `json:"stats"`
	Speakers      []SpeakerRow   `json:"speakers"`
	Excluded      []string       `json:"excluded"`
	Failures      []ParseFailure `json:"parse_failures,omitempty"`
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSpeakerList(path string, names []string) error {
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writeWorkbook(path string, rows []SpeakerRow) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	header := []interface{}{"organisation", "speaker", "gender", "segments", "duration_ms", "excluded"}
	if err := f.SetSheetRow(workbookSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Organisation, r.Speaker, r.Gender, r.Segments, r.DurationMs, r.Excluded}
		if err := f.SetSheetRow(workbookSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// persist writes the speaker list, stats.json and speakers.xlsx next to the
// clips and records the speaker list path on the report.
func (p *Pipeline) persist(r *Report) error {
	res := r.Result
	rows := speakerRows(res)

	listPath := filepath.Join(r.OutputRoot, speakerListName)
	if err := writeSpeakerList(listPath, speakerNames(res)); err != nil {
		return fmt.Errorf("write speaker list: %w", err)
	}
	r.SpeakerList = listPath

	excluded := make([]string, 0, len(res.Excluded))
	for _, k := range res.Excluded {
		excluded = append(excluded, k.Name())
	}
	c := p.cfg.Converter
	bundle := StatsBundle{
		RunID:         r.RunID,
		Split:         r.Split,
		GeneratedAt:   time.Now(),
		Conversations: r.Conversations,
		Params: PackingParams{
			TargetSegmentMs: c.TargetSegmentSize,
			MinSegmentMs:    c.MinSegmentSize,
			MaxPerSpeakerMs: c.MaxDurationPerSpeaker,
			Tolerance:       c.Tolerance,
			SkipOverlapping: c.SkipOverlappingSegment,
			Seed:            p.seed,
		},
		Stats:    res.Stats,
		Speakers: rows,
		Excluded: excluded,
		Failures: r.Failures,
	}
	if err := writeJSON(filepath.Join(r.OutputRoot, statsName), bundle); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}

	if err := writeWorkbook(filepath.Join(r.OutputRoot, workbookName), rows); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
