//go:build (darwin || freebsd || linux) && !android && (amd64 || arm64)

package engine

import (
	"runtime"

	"github.com/ebitengine/purego"
)

func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func closeLibrary(handle uintptr) error {
	return purego.Dlclose(handle)
}

func registerFunc(fptr any, addr uintptr) error {
	purego.RegisterFunc(fptr, addr)
	return nil
}

// cRuntimeName is the C library providing free on this platform.
func cRuntimeName() string {
	switch runtime.GOOS {
	case "darwin":
		return "/usr/lib/libSystem.B.dylib"
	case "freebsd":
		return "libc.so.7"
	default:
		return "libc.so.6"
	}
}
