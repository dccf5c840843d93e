package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/rt09-segmenter/config"
	"github.com/maastricht-university/rt09-segmenter/logger"
	"github.com/maastricht-university/rt09-segmenter/orchestrator"
	"github.com/maastricht-university/rt09-segmenter/voxceleb"
)

type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

var versionInfo = VersionInfo{Version: "dev", Commit: "none", Date: "unknown"}

func SetVersion(version, commit, date string) {
	versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

type rootFlags struct {
	configPath string
	logLevel   string
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "rt09seg",
		Short: "Build speaker-segment corpora from RT09 meeting recordings",
		Long: `rt09seg cuts the annotated speaker turns of the RT09 meeting corpus into
clips of roughly equal length, caps the amount of audio kept per speaker and
writes the list of speakers with enough material for training.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default: config/$CONFIG_ENV/config.yaml, config.yml, config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override pipeline.log_level")

	cmd.AddCommand(
		newRunCmd(flags),
		newConfigCmd(flags),
		newVoxCelebCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

func (f *rootFlags) load() (*cfg.Root, *logger.Logger, error) {
	conf, err := cfg.Load(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	level := conf.Pipeline.LogLvl
	if f.logLevel != "" {
		level = f.logLevel
	}
	return conf, logger.New(level, conf.Pipeline.LogFormat), nil
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Generate the segment corpus for the configured split",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, log, err := flags.load()
			if err != nil {
				return err
			}
			entry, runID := log.WithRun()
			entry.WithField("split", conf.Split()).Info("run started")

			report, err := orchestrator.NewPipeline(conf, entry, runID).Run(cmd.Context())
			if err != nil {
				entry.WithError(err).Error("run failed")
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", report.SpeakerList)
			return nil
		},
	}
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, _, err := flags.load()
			if err != nil {
				return err
			}
			out, err := cfg.Dump(conf)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newVoxCelebCmd(flags *rootFlags) *cobra.Command {
	var (
		count  int
		seed   int64
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "voxceleb <path>",
		Short: "Write a random subset of VoxCeleb speaker ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := flags.logLevel
			if level == "" {
				level = "info"
			}
			log := logger.New(level, "text")

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			log.WithField("seed", seed).Debug("random source seeded")

			path, err := voxceleb.WriteSubset(args[0], count, rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)), outDir)
			if err != nil {
				return err
			}
			log.WithField("file", path).Info("speaker subset written")
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", path)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 100, "number of speakers to keep")
	cmd.Flags().Int64Var(&seed, "seed", 0, "shuffle seed (0: time based)")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory the list is written to")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rt09seg %s\n", versionInfo.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", versionInfo.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "Built:  %s\n", versionInfo.Date)
		},
	}
}
