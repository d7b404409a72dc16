// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"errors"
	"fmt"
)

// Error kinds shared by every package in the module. Packages wrap them with
// their own sentinels so callers can match either the specific or the general
// condition with errors.Is.
var (
	// ErrArgument reports an invalid parameter: bad capacity, a buffer
	// shorter than one unit, a negative position.
	ErrArgument = errors.New("invalid argument")

	// ErrUnsupportedFormat reports a sample or pixel encoding that a
	// converter or container cannot represent.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidOperation reports a call the stream cannot honor in its
	// current state or with its capabilities.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrMalformedData reports container data that does not follow the
	// expected layout.
	ErrMalformedData = errors.New("malformed data")
)

var (
	// ErrNotSeekable is returned by Seek on a stream without seek support.
	ErrNotSeekable = fmt.Errorf("%w: stream is not seekable", ErrInvalidOperation)

	// ErrClosed is returned by operations on a stream after Close.
	ErrClosed = fmt.Errorf("%w: stream is closed", ErrInvalidOperation)

	// ErrShortBuffer is returned when a read buffer cannot hold a single
	// sample-group or frame.
	ErrShortBuffer = fmt.Errorf("%w: buffer shorter than one unit", ErrArgument)

	// ErrNegativePosition is returned when Seek is asked for a position
	// before the start of the stream.
	ErrNegativePosition = fmt.Errorf("%w: negative position", ErrArgument)
)
