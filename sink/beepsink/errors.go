// SPDX-License-Identifier: EPL-2.0

package beepsink

import (
	"fmt"

	"github.com/ik5/avstream/stream"
)

var (
	ErrNilStream = fmt.Errorf("%w: nil stream", stream.ErrArgument)
	ErrChannels  = fmt.Errorf("%w: beep streams carry one or two channels", stream.ErrArgument)
)
