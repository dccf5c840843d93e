package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/rt09-segmenter/clients"
	cfg "github.com/maastricht-university/rt09-segmenter/config"
	"github.com/maastricht-university/rt09-segmenter/filter"
	"github.com/maastricht-university/rt09-segmenter/groundtruth"
	"github.com/maastricht-university/rt09-segmenter/packer"
)

const clipCacheSize = 4

type converter interface {
	Convert(ctx context.Context, src string) (string, error)
}

type Pipeline struct {
	cfg   *cfg.Root
	runID string
	seed  int64
	log   *logrus.Entry

	conv converter
	clip packer.Clipper
	rng  packer.Shuffler
}

func NewPipeline(c *cfg.Root, log *logrus.Entry, runID string) *Pipeline {
	seed := c.Converter.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.WithField("seed", seed).Info("random source seeded")

	conv := clients.NewConverter(c.Conversion.Tool, c.Converter.AudioFormat, log)
	conv.SourceExt = c.Conversion.SourceExt

	return &Pipeline{
		cfg:   c,
		runID: runID,
		seed:  seed,
		log:   log,
		conv:  conv,
		clip:  clients.NewWavClipper(c.Converter.UseNormalizedAudio, clipCacheSize),
		rng:   rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)),
	}
}

func (p *Pipeline) OutputRoot() string {
	return filepath.Join(p.cfg.Converter.OutDir, p.cfg.Split())
}

// Run builds the segment corpus for the configured split.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	base := p.cfg.Data.BaseDir

	uemPath, err := findIndexFile(base, uemSuffix, p.cfg.Data.Task)
	if err != nil {
		return nil, err
	}
	listPath, err := findIndexFile(base, audioListSuffix, p.cfg.Data.Task)
	if err != nil {
		return nil, err
	}
	entries, err := readIndex(uemPath, parseUEM)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uemPath, err)
	}
	audio, err := readIndex(listPath, func(r io.Reader) (map[string][]string, error) {
		return parseAudioList(r, base)
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", listPath, err)
	}

	convs, err := selectConversations(p.cfg, entries, audio)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{
		"uem":           uemPath,
		"audio_list":    listPath,
		"conversations": len(convs),
	}).Info("corpus indexed")

	for i := range convs {
		for j, src := range convs[i].Files {
			dst, err := p.conv.Convert(ctx, src)
			if err != nil {
				return nil, err
			}
			convs[i].Files[j] = dst
		}
	}

	root := p.OutputRoot()
	if err := resetDir(root); err != nil {
		return nil, fmt.Errorf("prepare %s: %w", root, err)
	}

	policy := filter.NewPolicy(
		p.cfg.Converter.SkipOverlappingSegment,
		p.cfg.Converter.MinSegmentSize,
		p.cfg.Converter.Tolerance,
		p.log,
	)

	report := &Report{
		RunID:         p.runID,
		Split:         p.cfg.Split(),
		OutputRoot:    root,
		Conversations: len(convs),
	}
	intervals := map[packer.SpeakerKey][]packer.Interval{}

	for _, conv := range convs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := p.log.WithField("conversation", conv.ID)

		turns, err := groundtruth.Parse(p.groundTruthPath(conv.ID))
		if err != nil {
			var perr *groundtruth.ParseError
			if !errors.As(err, &perr) || !p.cfg.Data.ContinueOnParseError {
				return nil, fmt.Errorf("conversation %s: %w", conv.ID, err)
			}
			log.WithError(err).Warn("ground truth unreadable, conversation skipped")
			report.Failures = append(report.Failures, ParseFailure{Conversation: conv.ID, Error: err.Error()})
			continue
		}

		kept := policy(turns)
		log.WithFields(logrus.Fields{
			"turns": len(turns),
			"kept":  len(kept),
			"files": len(conv.Files),
		}).Debug("turns filtered")
		addIntervals(intervals, conv, kept)
	}

	pk := packer.New(packer.Options{
		TargetSegmentMs: p.cfg.Converter.TargetSegmentSize,
		MinSegmentMs:    p.cfg.Converter.MinSegmentSize,
		MaxPerSpeakerMs: p.cfg.Converter.MaxDurationPerSpeaker,
		Tolerance:       p.cfg.Converter.Tolerance,
		Format:          p.cfg.Converter.AudioFormat,
	}, p.clip, p.rng, p.log)

	res, err := pk.Pack(intervals, root)
	if err != nil {
		return nil, err
	}
	report.Result = res

	if err := p.persist(report); err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"output":         root,
		"speakers":       len(res.Speakers),
		"excluded":       len(res.Excluded),
		"segments":       res.Stats.Segments,
		"parse_failures": len(report.Failures),
	}).Info("run finished")
	return report, nil
}

func (p *Pipeline) groundTruthPath(id string) string {
	return filepath.Join(p.cfg.Data.BaseDir, id, id+"."+p.cfg.Data.GroundTruthExt)
}

// resetDir wipes dir and recreates it empty.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
