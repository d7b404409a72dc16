// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ik5/avstream"
	"github.com/ik5/avstream/stream"
)

func (c *CLI) newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>...",
		Short: "Print the container and sample layout of audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if err := c.info(name, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *CLI) info(name string, w io.Writer) error {
	f, err := c.fs.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	src, format, err := avstream.Open(f)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer src.Close()

	length := "unknown length"
	if n, ok := src.Length(); ok {
		length = stream.DurationOf(src.SampleRate(), n).String()
	}
	fmt.Fprintf(w, "%s: %s, %d Hz, %d ch, %s, %s, seekable=%v\n",
		name, format, src.SampleRate(), src.Channels(), src.Format(), length, src.CanSeek())
	return nil
}
