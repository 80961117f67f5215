//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly || solaris

package core

import (
	"os"
	"syscall"
)

func isBlockDevice(fi os.FileInfo) bool {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return uint32(st.Mode)&syscall.S_IFMT == syscall.S_IFBLK
	}
	return false
}
