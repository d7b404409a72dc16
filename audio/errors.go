// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/ik5/avstream/stream"
)

var (
	ErrInvalidDstSize = fmt.Errorf("%w: dst size must be multiple of channels", stream.ErrArgument)
	ErrTargetRate     = fmt.Errorf("%w: target sample rate must be positive", stream.ErrArgument)
	ErrSourceRate     = fmt.Errorf("%w: source sample rate must be positive", stream.ErrArgument)
	ErrNilStream      = fmt.Errorf("%w: nil stream", stream.ErrArgument)

	ErrUnknownFormat = fmt.Errorf("%w: no decoder registered", stream.ErrUnsupportedFormat)
	ErrBitDepth      = fmt.Errorf("%w: bit depth", stream.ErrUnsupportedFormat)
	ErrEmptyInput    = fmt.Errorf("%w: empty input", stream.ErrMalformedData)
)
