//go:build unix

package spi

import "golang.org/x/sys/unix"

// canOpen reports whether the process may read and write path.
func canOpen(path string) bool {
	return unix.Access(path, unix.R_OK|unix.W_OK) == nil
}
