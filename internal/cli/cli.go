// SPDX-License-Identifier: EPL-2.0

// Package cli implements the avconvert command line.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

// CLI holds the root command and the filesystem every subcommand works on.
type CLI struct {
	rootCmd *cobra.Command
	fs      afero.Fs

	logLevel string
	logFile  string
	logClose io.Closer
}

// New builds the command tree on top of fs.
func New(fs afero.Fs) *CLI {
	c := &CLI{fs: fs}

	rootCmd := &cobra.Command{
		Use:           "avconvert",
		Short:         "Decode, downmix, resample and re-encode audio files",
		Long:          "avconvert decodes WAV, MP3, Ogg Vorbis and AIFF input and writes WAV or AIFF output.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			closer, err := setupLogging(c.logLevel, c.logFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.logClose = closer
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&c.logFile, "log-file", "", "Also write logs to this file, rotated by size")

	rootCmd.AddCommand(c.newConvertCommand())
	rootCmd.AddCommand(c.newInfoCommand())

	c.rootCmd = rootCmd
	return c
}

// Run executes the command line args (program name first) and returns the
// process exit code.
func (c *CLI) Run(args []string, stdout, stderr io.Writer) int {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	defer func() {
		if c.logClose != nil {
			if err := c.logClose.Close(); err != nil {
				slog.Error("closing log file failed", "error", err)
			}
			c.logClose = nil
		}
	}()

	if len(args) > 0 {
		args = args[1:]
	}
	c.rootCmd.SetArgs(args)
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)

	if err := c.rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		c.rootCmd.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
