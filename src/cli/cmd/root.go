package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vidaislive/forksync/src/config"
)

var (
	cfgFile string
	verbose bool
	repoDir string
	cfg     *config.Config
	logger  *logrus.Entry
)

var rootCmd = &cobra.Command{
	Use:   "forksync",
	Short: "Keep a downstream fork in step with its upstream releases",
	Long: `forksync merges upstream release tags into a fork, tags fork releases,
writes handoff notes when a merge needs manual conflict resolution, and
verifies that the docker packaging repository plans correctly tagged images.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(verbose)

		// Skip config loading for commands that don't need it.
		if cmd.Name() == "version" || cmd.Name() == "image-tag" {
			cfg = config.Defaults()
			return nil
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		warnings, err := config.Validate(cfg)
		for _, w := range warnings {
			logger.Warn(w)
		}
		return err
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .forksync.yml, .forksync.yaml or .forksync.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&repoDir, "repo", "C", ".", "path to the fork repository")
}

func newLogger(verbose bool) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return logrus.NewEntry(l)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

// ExitCode maps an error to a process exit status. Errors carrying the
// status of a failed external command propagate it.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) && coded.ExitCode() > 0 {
		return coded.ExitCode()
	}
	return 1
}
