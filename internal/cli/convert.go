// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ik5/avstream"
	"github.com/ik5/avstream/audio"
	"github.com/ik5/avstream/buffer"
	"github.com/ik5/avstream/formats/aiff"
	"github.com/ik5/avstream/formats/wav"
	"github.com/ik5/avstream/stream"
)

type convertOptions struct {
	rate    int
	mono    bool
	format  string
	buffer  int
	quality string
}

// Resampling qualities accepted by --quality.
const (
	qualityFast = "fast"
	qualityHigh = "high"
)

func (c *CLI) newConvertCommand() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert an audio file to WAV or AIFF",
		Long: `Convert decodes the input, optionally downmixes it to mono and resamples
it, and writes the result. The output container follows the output extension:
.aif and .aiff write AIFF, anything else writes WAV.

Examples:
  avconvert convert voice.mp3 voice.wav --mono --rate 8000
  avconvert convert music.ogg music.aiff --format s32le
  avconvert convert in.wav out.wav --format "" --buffer 32
  avconvert convert in.wav out.wav --rate 44100 --quality high

The fast resampler keeps the exact output length and stays seekable; the
high quality one uses a windowed-sinc filter and streams only.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.convert(args[0], args[1], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.rate, "rate", 0, "Output sample rate in Hz (0 keeps the input rate)")
	cmd.Flags().BoolVar(&opts.mono, "mono", false, "Downmix to a single channel")
	cmd.Flags().StringVar(&opts.format, "format", stream.Int16.String(), `Output sample format (u8, s16le, s32le, f32le; "" keeps the decoded format)`)
	cmd.Flags().IntVar(&opts.buffer, "buffer", 0, "Decode ahead into this many buffer slots (0 decodes inline)")
	cmd.Flags().StringVar(&opts.quality, "quality", qualityFast, "Resampling quality (fast, high)")

	return cmd
}

func (c *CLI) convert(in, out string, opts convertOptions, w io.Writer) error {
	f, err := c.fs.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		src    stream.SampleStream
		format string
	)
	if opts.buffer > 0 {
		src, format, err = avstream.OpenBuffered(f,
			buffer.WithCapacity(opts.buffer),
			buffer.WithName(filepath.Base(in)),
			buffer.WithRegisterer(nil))
	} else {
		src, format, err = avstream.Open(f)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	defer src.Close()

	slog.Info("input opened",
		"path", in,
		"format", format,
		"sample_rate", src.SampleRate(),
		"channels", src.Channels(),
		"sample_format", src.Format())

	res, err := pipeline(src, opts)
	if err != nil {
		return err
	}

	counted := &countingStream{SampleStream: res}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".aif", ".aiff":
		err = aiff.CreateFile(c.fs, out, counted)
	default:
		_, err = wav.CreateFile(c.fs, out, counted)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}

	groups := counted.n / int64(stream.GroupSize(res))
	slog.Info("output written", "path", out, "groups", groups)
	fmt.Fprintf(w, "%s: %d Hz, %d ch, %s, %s\n",
		out, res.SampleRate(), res.Channels(), res.Format(), stream.DurationOf(res.SampleRate(), groups))
	return nil
}

// pipeline stacks the downmix, resample and format stages that opts ask for
// on top of src.
func pipeline(src stream.SampleStream, opts convertOptions) (stream.SampleStream, error) {
	if opts.rate < 0 {
		return nil, fmt.Errorf("%w: rate %d", stream.ErrArgument, opts.rate)
	}

	s := src
	if opts.mono && s.Channels() > 1 {
		mono, err := audio.NewMonoMixer(s)
		if err != nil {
			return nil, err
		}
		s = mono
	}
	if opts.rate > 0 && opts.rate != s.SampleRate() {
		var (
			res stream.SampleStream
			err error
		)
		switch opts.quality {
		case qualityFast, "":
			res, err = audio.NewResampler(s, opts.rate)
		case qualityHigh:
			res, err = audio.NewHQResampler(s, opts.rate)
		default:
			err = fmt.Errorf("%w: quality %q", stream.ErrArgument, opts.quality)
		}
		if err != nil {
			return nil, err
		}
		s = res
	}
	if opts.format != "" {
		target, err := stream.ParseSampleFormat(opts.format)
		if err != nil {
			return nil, err
		}
		if s, err = stream.AsFormat(s, target); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// countingStream counts the bytes read through it.
type countingStream struct {
	stream.SampleStream
	n int64
}

func (c *countingStream) Read(p []byte) (int, error) {
	n, err := c.SampleStream.Read(p)
	c.n += int64(n)
	return n, err
}
