//go:build !windows && !((darwin || freebsd || linux) && !android && (amd64 || arm64))

package engine

import (
	"fmt"
	"runtime"
)

var errUnsupportedPlatform = fmt.Errorf("dynamic loading is not supported on %s/%s", runtime.GOOS, runtime.GOARCH)

func openLibrary(string) (uintptr, error) {
	return 0, errUnsupportedPlatform
}

func lookupSymbol(uintptr, string) (uintptr, error) {
	return 0, errUnsupportedPlatform
}

func closeLibrary(uintptr) error {
	return nil
}

func registerFunc(any, uintptr) error {
	return errUnsupportedPlatform
}

func cRuntimeName() string {
	return ""
}
