// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"

	"github.com/ik5/avstream/stream"
)

var (
	ErrInvalidStream = fmt.Errorf("%w: invalid mp3 stream", stream.ErrMalformedData)
)
