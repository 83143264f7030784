//go:build windows

package onnxruntime

import "syscall"

func defaultLibraryName() string {
	return "onnxruntime.dll"
}

func openLibrary(path string) (uintptr, error) {
	h, err := syscall.LoadLibrary(path)
	return uintptr(h), err
}

func closeLibrary(handle uintptr) error {
	return syscall.FreeLibrary(syscall.Handle(handle))
}
