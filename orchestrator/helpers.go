package orchestrator

import (
	"sort"
	"strings"

	cfg "github.com/maastricht-university/rt09-segmenter/config"
	"github.com/maastricht-university/rt09-segmenter/groundtruth"
	"github.com/maastricht-university/rt09-segmenter/packer"
)

// organisation is the first underscore-delimited token of a conversation id,
// e.g. "EDI" for "EDI_20071128-1000".
func organisation(conversationID string) string {
	org, _, _ := strings.Cut(conversationID, "_")
	return org
}

// selectConversations merges the per-channel .uem entries and applies the
// split: only data.dataset_to_use when set, otherwise everything except the
// held-out evaluation conversation.
func selectConversations(c *cfg.Root, entries []uemEntry, audio map[string][]string) ([]Conversation, error) {
	var (
		out   []Conversation
		index = map[string]int{}
	)
	for _, e := range entries {
		if i, ok := index[e.ID]; ok {
			out[i].Channels = append(out[i].Channels, e.Channel)
			continue
		}
		index[e.ID] = len(out)
		out = append(out, Conversation{
			ID:           e.ID,
			Organisation: organisation(e.ID),
			Channels:     []string{e.Channel},
		})
	}

	selected := out[:0]
	for _, conv := range out {
		if c.Data.DatasetToUse != "" {
			if conv.ID != c.Data.DatasetToUse {
				continue
			}
		} else if conv.ID == c.Data.EvaluationSplit {
			continue
		}
		files, ok := audio[conv.ID]
		if !ok {
			return nil, configErrorf("no audio files listed for conversation %s", conv.ID)
		}
		conv.Files = files
		selected = append(selected, conv)
	}

	if len(selected) == 0 {
		if c.Data.DatasetToUse != "" {
			return nil, configErrorf("conversation %q not found in the uem index", c.Data.DatasetToUse)
		}
		return nil, configErrorf("no conversations left after holding out %q", c.Data.EvaluationSplit)
	}
	return selected, nil
}

// addIntervals crosses every turn with every audio file of the conversation.
func addIntervals(dst map[packer.SpeakerKey][]packer.Interval, conv Conversation, turns []groundtruth.Turn) {
	for _, t := range turns {
		key := packer.SpeakerKey{
			Organisation: conv.Organisation,
			SpeakerID:    t.Speaker,
			Gender:       t.SpkrType,
		}
		for _, f := range conv.Files {
			dst[key] = append(dst[key], packer.Interval{
				Source:  f,
				StartMs: t.StartMs(),
				EndMs:   t.EndMs(),
			})
		}
	}
}

func speakerRows(res *packer.Result) []SpeakerRow {
	excluded := make(map[packer.SpeakerKey]bool, len(res.Excluded))
	for _, k := range res.Excluded {
		excluded[k] = true
	}
	rows := make([]SpeakerRow, 0, len(res.Speakers))
	for k, info := range res.Speakers {
		rows = append(rows, SpeakerRow{
			Organisation: k.Organisation,
			Speaker:      k.SpeakerID,
			Gender:       k.Gender,
			Segments:     info.Segments,
			DurationMs:   info.DurationMs,
			Excluded:     excluded[k],
		})
	}
	sortRows(rows)
	return rows
}

func sortRows(rows []SpeakerRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Organisation != b.Organisation {
			return a.Organisation < b.Organisation
		}
		if a.Speaker != b.Speaker {
			return a.Speaker < b.Speaker
		}
		return a.Gender < b.Gender
	})
}

// speakerNames lists the included speakers as org_speaker, de-duplicated
// and sorted.
func speakerNames(res *packer.Result) []string {
	seen := map[string]bool{}
	var names []string
	for _, k := range res.Included() {
		n := k.Name()
		if seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
