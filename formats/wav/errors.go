// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"

	"github.com/ik5/avstream/stream"
)

var (
	ErrNotWavFile       = fmt.Errorf("%w: not a WAV file", stream.ErrMalformedData)
	ErrInvalidFmtChunk  = fmt.Errorf("%w: invalid fmt chunk", stream.ErrMalformedData)
	ErrMissingFmtChunk  = fmt.Errorf("%w: missing fmt chunk", stream.ErrMalformedData)
	ErrMissingDataChunk = fmt.Errorf("%w: missing data chunk", stream.ErrMalformedData)

	ErrUnsupportedEncoding = fmt.Errorf("%w: unsupported WAV encoding", stream.ErrUnsupportedFormat)

	ErrUnsizedDestination = fmt.Errorf("%w: stream length unknown and destination not seekable", stream.ErrArgument)
	ErrTooLarge           = fmt.Errorf("%w: data does not fit a WAV file", stream.ErrArgument)

	ErrLengthMismatch = errors.New("stream length does not match the data written")
)
