//go:build !linux

package fs

func adviseSequential(uintptr) error { return nil }
