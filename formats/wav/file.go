// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/ik5/avstream/stream"
)

// CreateFile writes src to a new WAV file name on fs and returns the number
// of PCM bytes written. The file is removed if writing fails.
func CreateFile(fs afero.Fs, name string, src stream.SampleStream) (int64, error) {
	f, err := fs.Create(name)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}

	n, err := Write(f, src)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", name, cerr)
	}
	if err != nil {
		return n, errors.Join(err, removeIfExists(fs, name))
	}
	return n, nil
}

// OpenFile opens the WAV file name on fs. Closing the stream closes the file.
func OpenFile(fs afero.Fs, name string) (*Stream, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	s, err := NewStream(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	s.closer = f
	return s, nil
}

func removeIfExists(fs afero.Fs, name string) error {
	ok, err := afero.Exists(fs, name)
	if err != nil || !ok {
		return err
	}
	return fs.Remove(name)
}
