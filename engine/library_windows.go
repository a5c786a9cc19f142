//go:build windows

package engine

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// LOAD_WITH_ALTERED_SEARCH_PATH lets the engine DLL find the DLLs that sit
// next to it in its installation directory.
func openLibrary(path string) (uintptr, error) {
	h, err := windows.LoadLibraryEx(path, 0, windows.LOAD_WITH_ALTERED_SEARCH_PATH)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

func closeLibrary(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}

// Calls go through SyscallN so 386 builds can drive the stock 32-bit engine.
// On 386 it restores the stack after the call, which covers both the stdcall
// and cdecl exports seen in engine builds.
func registerFunc(fptr any, addr uintptr) error {
	return makeWordFunc(fptr, func(args ...uintptr) uintptr {
		r1, _, _ := syscall.SyscallN(addr, args...)
		return r1
	})
}

// The engine is built against the system MSVC runtime.
func cRuntimeName() string {
	return "msvcrt.dll"
}
