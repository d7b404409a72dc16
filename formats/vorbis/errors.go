// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"

	"github.com/ik5/avstream/stream"
)

var (
	ErrInvalidStream = fmt.Errorf("%w: invalid ogg vorbis stream", stream.ErrMalformedData)
)
