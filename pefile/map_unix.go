//go:build linux || darwin

package pefile

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapFile mmaps the file RW and shared so edits land in the file itself.
func mapFile(f *os.File, size int64) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// Close flushes pending writes, unmaps the image and closes the file.
// It reports the first failure but always releases everything it can.
func (img *Image) Close() error {
	var err error
	if img.data != nil {
		if e := unix.Msync(img.data, unix.MS_SYNC); e != nil {
			err = e
		}
		if e := unix.Munmap(img.data); e != nil && err == nil {
			err = e
		}
		img.data = nil
	}
	if e := img.f.Close(); e != nil && err == nil {
		err = e
	}
	return err
}
