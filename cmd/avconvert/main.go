// SPDX-License-Identifier: EPL-2.0

// Command avconvert converts audio files between the containers and sample
// layouts supported by avstream.
package main

import (
	"os"

	"github.com/spf13/afero"

	"github.com/ik5/avstream/internal/cli"
)

func main() {
	os.Exit(cli.New(afero.NewOsFs()).Run(os.Args, os.Stdout, os.Stderr))
}
