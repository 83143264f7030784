package onnxruntime

import (
	"fmt"
	"unsafe"

	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api"
)

// RuntimeError is a non-OK status returned by the ONNX Runtime C API.
type RuntimeError struct {
	Code    ErrorCode
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("onnxruntime error (%s): %s", errorCodeName(e.Code), e.Message)
}

// statusError converts status into a *RuntimeError and releases it. A zero
// status is success.
func (r *Runtime) statusError(status api.OrtStatus) error {
	if status == 0 {
		return nil
	}
	defer r.apiFuncs.ReleaseStatus(status)
	return &RuntimeError{
		Code:    r.apiFuncs.GetErrorCode(status),
		Message: cString((*byte)(r.apiFuncs.GetErrorMessage(status))),
	}
}

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeOK:               "OK",
	ErrorCodeFail:             "Fail",
	ErrorCodeInvalidArgument:  "InvalidArgument",
	ErrorCodeNoSuchFile:       "NoSuchFile",
	ErrorCodeNoModel:          "NoModel",
	ErrorCodeEngineError:      "EngineError",
	ErrorCodeRuntimeException: "RuntimeException",
	ErrorCodeInvalidProtobuf:  "InvalidProtobuf",
	ErrorCodeModelLoaded:      "ModelLoaded",
	ErrorCodeNotImplemented:   "NotImplemented",
	ErrorCodeInvalidGraph:     "InvalidGraph",
	ErrorCodeEPFail:           "EPFail",
}

func errorCodeName(code ErrorCode) string {
	if name, ok := errorCodeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", code)
}

// cString copies a NUL-terminated C string.
func cString(ptr *byte) string {
	if ptr == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(ptr), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(ptr, n))
}

// cBytes returns s as a NUL-terminated byte slice.
func cBytes(s string) []byte {
	return append([]byte(s), 0)
}
