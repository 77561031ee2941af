//go:build unix

package internal

import "golang.org/x/sys/unix"

// abort raises SIGABRT against the current process.
func abort() {
	unix.Kill(unix.Getpid(), unix.SIGABRT)
}
