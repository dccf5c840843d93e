package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Pipeline struct {
	Name      string `yaml:"name" mapstructure:"name"`
	LogLvl    string `yaml:"log_level" mapstructure:"log_level"`
	LogFormat string `yaml:"log_format" mapstructure:"log_format"`
}

// Converter holds the packing parameters. Sizes are milliseconds.
type Converter struct {
	TargetSegmentSize      int64   `yaml:"target_segment_size" mapstructure:"target_segment_size"`
	MinSegmentSize         int64   `yaml:"min_segment_size" mapstructure:"min_segment_size"`
	MaxDurationPerSpeaker  int64   `yaml:"max_duration_per_speaker" mapstructure:"max_duration_per_speaker"`
	Tolerance              float64 `yaml:"tolerance" mapstructure:"tolerance"`
	SkipOverlappingSegment bool    `yaml:"skip_overlapping_segment" mapstructure:"skip_overlapping_segment"`
	UseNormalizedAudio     bool    `yaml:"use_normalized_audio" mapstructure:"use_normalized_audio"`
	OutDir                 string  `yaml:"out_dir" mapstructure:"out_dir"`
	AudioFormat            string  `yaml:"audio_format" mapstructure:"audio_format"`
	Seed                   int64   `yaml:"seed" mapstructure:"seed"`
}

type Data struct {
	BaseDir              string `yaml:"base_dir" mapstructure:"base_dir"`
	Task                 string `yaml:"task" mapstructure:"task"`
	EvaluationSplit      string `yaml:"evaluation_split" mapstructure:"evaluation_split"`
	DatasetToUse         string `yaml:"dataset_to_use" mapstructure:"dataset_to_use"`
	GroundTruthExt       string `yaml:"ground_truth_ext" mapstructure:"ground_truth_ext"`
	ContinueOnParseError bool   `yaml:"continue_on_parse_error" mapstructure:"continue_on_parse_error"`
}

type Conversion struct {
	Tool      string `yaml:"tool" mapstructure:"tool"`
	SourceExt string `yaml:"source_ext" mapstructure:"source_ext"`
}

type Root struct {
	Pipeline   Pipeline   `yaml:"pipeline" mapstructure:"pipeline"`
	Converter  Converter  `yaml:"converter" mapstructure:"converter"`
	Data       Data       `yaml:"data" mapstructure:"data"`
	Conversion Conversion `yaml:"conversion" mapstructure:"conversion"`
}

// Split names the output subdirectory of a run: the selected conversation
// in dataset-selection mode, otherwise the held-out evaluation one.
func (r *Root) Split() string {
	if r.Data.DatasetToUse != "" {
		return r.Data.DatasetToUse
	}
	return r.Data.EvaluationSplit
}

func (r *Root) Validate() error {
	c := r.Converter
	if c.TargetSegmentSize <= 0 {
		return fmt.Errorf("converter.target_segment_size must be positive, got %d", c.TargetSegmentSize)
	}
	if c.MinSegmentSize <= 0 {
		return fmt.Errorf("converter.min_segment_size must be positive, got %d", c.MinSegmentSize)
	}
	if c.MinSegmentSize > c.TargetSegmentSize {
		return fmt.Errorf("converter.min_segment_size (%d) exceeds target_segment_size (%d)", c.MinSegmentSize, c.TargetSegmentSize)
	}
	if c.MaxDurationPerSpeaker <= 0 {
		return fmt.Errorf("converter.max_duration_per_speaker must be positive, got %d", c.MaxDurationPerSpeaker)
	}
	if c.Tolerance < 0 || c.Tolerance >= 1 {
		return fmt.Errorf("converter.tolerance must be in [0,1), got %f", c.Tolerance)
	}
	if c.OutDir == "" {
		return errors.New("converter.out_dir is required")
	}
	if r.Data.BaseDir == "" {
		return errors.New("data.base_dir is required")
	}
	if r.Split() == "" {
		return errors.New("one of data.evaluation_split or data.dataset_to_use is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "rt09-segmenter")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")
	v.SetDefault("converter.target_segment_size", 5000)
	v.SetDefault("converter.min_segment_size", 4000)
	v.SetDefault("converter.max_duration_per_speaker", 60000)
	v.SetDefault("converter.tolerance", 0.1)
	v.SetDefault("converter.skip_overlapping_segment", true)
	v.SetDefault("converter.use_normalized_audio", false)
	v.SetDefault("converter.out_dir", "")
	v.SetDefault("converter.audio_format", "wav")
	v.SetDefault("converter.seed", 0)
	v.SetDefault("data.base_dir", "")
	v.SetDefault("data.task", "")
	v.SetDefault("data.evaluation_split", "")
	v.SetDefault("data.dataset_to_use", "")
	v.SetDefault("data.ground_truth_ext", "utf")
	v.SetDefault("data.continue_on_parse_error", true)
	v.SetDefault("conversion.tool", "sph2pipe")
	v.SetDefault("conversion.source_ext", "sph")
}

func candidates() []string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yml",
		"config.yaml",
	}
}

// Load reads the configuration at path, or the first file found in the
// default locations when path is empty. Environment variables prefixed with
// RT09_ override file values (RT09_CONVERTER_SEED, RT09_DATA_BASE_DIR, ...).
func Load(path string) (*Root, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("RT09")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		for _, p := range candidates() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		return nil, fmt.Errorf("no config file found (tried %s)", strings.Join(candidates(), ", "))
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &cfg, cfg.Validate()
}

// Dump renders the effective configuration as YAML.
func Dump(r *Root) ([]byte, error) {
	return yaml.Marshal(r)
}
