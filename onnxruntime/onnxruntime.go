package onnxruntime

import (
	"errors"
	"fmt"

	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api"
)

var (
	ErrSessionClosed = errors.New("session is closed")
	ErrRuntimeClosed = errors.New("runtime is closed")
)

// ErrorCode is the OrtErrorCode carried by a failed status.
type ErrorCode = api.OrtErrorCode

const (
	ErrorCodeOK ErrorCode = iota
	ErrorCodeFail
	ErrorCodeInvalidArgument
	ErrorCodeNoSuchFile
	ErrorCodeNoModel
	ErrorCodeEngineError
	ErrorCodeRuntimeException
	ErrorCodeInvalidProtobuf
	ErrorCodeModelLoaded
	ErrorCodeNotImplemented
	ErrorCodeInvalidGraph
	ErrorCodeEPFail
)

// LoggingLevel is the minimum severity ORT writes to its own log.
type LoggingLevel = api.OrtLoggingLevel

const (
	LoggingLevelVerbose LoggingLevel = iota
	LoggingLevelInfo
	LoggingLevelWarning
	LoggingLevelError
	LoggingLevelFatal
)

// ONNXType is the kind of a graph value. Only tensors can back a profile.
type ONNXType = api.ONNXType

const ONNXTypeTensor ONNXType = 1

// ONNXTensorElementDataType is the ONNX TensorProto data type. Its values
// match binding.ElementType one-to-one.
type ONNXTensorElementDataType = api.ONNXTensorElementDataType

const (
	ONNXTensorElementDataTypeUndefined ONNXTensorElementDataType = iota
	ONNXTensorElementDataTypeFloat
	ONNXTensorElementDataTypeUint8
	ONNXTensorElementDataTypeInt8
	ONNXTensorElementDataTypeUint16
	ONNXTensorElementDataTypeInt16
	ONNXTensorElementDataTypeInt32
	ONNXTensorElementDataTypeInt64
	ONNXTensorElementDataTypeString
	ONNXTensorElementDataTypeBool
	ONNXTensorElementDataTypeFloat16
	ONNXTensorElementDataTypeDouble
	ONNXTensorElementDataTypeUint32
	ONNXTensorElementDataTypeUint64
	ONNXTensorElementDataTypeComplex64
	ONNXTensorElementDataTypeComplex128
	ONNXTensorElementDataTypeBFloat16
)

// CPU memory info for tensors and device-bound outputs.
const (
	allocatorTypeDevice api.OrtAllocatorType = 0
	memTypeCPU          api.OrtMemType       = 0
)

// GraphOptimizationLevel mirrors GraphOptimizationLevel in the C API.
type GraphOptimizationLevel int32

const (
	GraphOptimizationDisabled GraphOptimizationLevel = 0
	GraphOptimizationBasic    GraphOptimizationLevel = 1
	GraphOptimizationExtended GraphOptimizationLevel = 2
	GraphOptimizationAll      GraphOptimizationLevel = 99
)

// ParseGraphOptimizationLevel accepts disabled, basic, extended, or all.
func ParseGraphOptimizationLevel(s string) (GraphOptimizationLevel, error) {
	switch s {
	case "disabled", "none":
		return GraphOptimizationDisabled, nil
	case "basic":
		return GraphOptimizationBasic, nil
	case "extended":
		return GraphOptimizationExtended, nil
	case "all":
		return GraphOptimizationAll, nil
	default:
		return 0, fmt.Errorf("unknown graph optimization level %q", s)
	}
}

// ExecutionMode mirrors ExecutionMode in the C API.
type ExecutionMode int32

const (
	ExecutionModeSequential ExecutionMode = 0
	ExecutionModeParallel   ExecutionMode = 1
)
