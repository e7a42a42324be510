//go:build linux

package fs

import "golang.org/x/sys/unix"

func adviseSequential(fd uintptr) error {
	return unix.Fadvise(int(fd), 0, 0, unix.FADV_SEQUENTIAL)
}
