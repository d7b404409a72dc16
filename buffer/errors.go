// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"errors"
	"fmt"

	"github.com/ik5/avstream/stream"
)

var (
	ErrCapacity  = fmt.Errorf("%w: capacity must be greater than 1", stream.ErrArgument)
	ErrSlotSize  = fmt.Errorf("%w: slot size must be positive", stream.ErrArgument)
	ErrNilSource = fmt.Errorf("%w: nil source", stream.ErrArgument)

	// ErrSourcePanic wraps a panic raised by the source while producing.
	ErrSourcePanic = errors.New("source panicked")
)
