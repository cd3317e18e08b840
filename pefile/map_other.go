//go:build !linux && !darwin

package pefile

import (
	"io"
	"os"
)

// mapFile loads the file into memory on platforms without a wired mmap;
// Close writes the buffer back.
func mapFile(f *os.File, size int64) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

// Close writes the edited buffer back to the file, syncs and closes it.
func (img *Image) Close() error {
	var err error
	if img.data != nil {
		if _, e := img.f.WriteAt(img.data, 0); e != nil {
			err = e
		}
		if e := img.f.Sync(); e != nil && err == nil {
			err = e
		}
		img.data = nil
	}
	if e := img.f.Close(); e != nil && err == nil {
		err = e
	}
	return err
}
