//go:build !unix

package internal

import "os"

func abort() {
	os.Exit(134)
}
