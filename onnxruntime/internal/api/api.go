// Package api declares the opaque ONNX Runtime handle types and the subset of
// the C API graphbind calls.
package api

import "unsafe"

// Opaque ORT handles. Each is the address of a native object and is released
// through its matching Release entry.
type (
	OrtStatus                 uintptr
	OrtEnv                    uintptr
	OrtSession                uintptr
	OrtSessionOptions         uintptr
	OrtRunOptions             uintptr
	OrtIoBinding              uintptr
	OrtValue                  uintptr
	OrtAllocator              uintptr
	OrtMemoryInfo             uintptr
	OrtTypeInfo               uintptr
	OrtTensorTypeAndShapeInfo uintptr
	OrtModelMetadata          uintptr
)

// C enums, passed by value.
type (
	OrtErrorCode              int32
	OrtLoggingLevel           int32
	OrtAllocatorType          int32
	OrtMemType                int32
	ONNXType                  int32
	ONNXTensorElementDataType int32
)

// APIFuncs is the part of the OrtApi vtable graphbind binds. Methods keep
// their C names and argument order.
type APIFuncs interface {
	GetVersionString() unsafe.Pointer
	GetErrorCode(OrtStatus) OrtErrorCode
	GetErrorMessage(OrtStatus) unsafe.Pointer
	ReleaseStatus(OrtStatus)

	// Process-wide state.
	CreateEnv(OrtLoggingLevel, *byte, *OrtEnv) OrtStatus
	ReleaseEnv(OrtEnv)
	GetAllocatorWithDefaultOptions(*OrtAllocator) OrtStatus
	AllocatorFree(OrtAllocator, unsafe.Pointer)
	CreateCpuMemoryInfo(OrtAllocatorType, OrtMemType, *OrtMemoryInfo) OrtStatus
	ReleaseMemoryInfo(OrtMemoryInfo)
	GetAvailableProviders(***byte, *int32) OrtStatus
	ReleaseAvailableProviders(**byte, int32) OrtStatus

	// Compile: one session per model.
	CreateSessionOptions(*OrtSessionOptions) OrtStatus
	SetIntraOpNumThreads(OrtSessionOptions, int32) OrtStatus
	SetInterOpNumThreads(OrtSessionOptions, int32) OrtStatus
	SetSessionExecutionMode(OrtSessionOptions, int32) OrtStatus
	SetSessionGraphOptimizationLevel(OrtSessionOptions, int32) OrtStatus
	SetSessionLogSeverityLevel(OrtSessionOptions, int32) OrtStatus
	AddSessionConfigEntry(OrtSessionOptions, *byte, *byte) OrtStatus
	SessionOptionsAppendExecutionProvider(OrtSessionOptions, *byte, **byte, **byte, uintptr) OrtStatus
	ReleaseSessionOptions(OrtSessionOptions)
	CreateSessionFromArray(OrtEnv, unsafe.Pointer, uintptr, OrtSessionOptions, *OrtSession) OrtStatus
	ReleaseSession(OrtSession)

	// Graph introspection.
	SessionGetInputCount(OrtSession, *uintptr) OrtStatus
	SessionGetOutputCount(OrtSession, *uintptr) OrtStatus
	SessionGetInputName(OrtSession, uintptr, OrtAllocator, **byte) OrtStatus
	SessionGetOutputName(OrtSession, uintptr, OrtAllocator, **byte) OrtStatus
	SessionGetInputTypeInfo(OrtSession, uintptr, *OrtTypeInfo) OrtStatus
	SessionGetOutputTypeInfo(OrtSession, uintptr, *OrtTypeInfo) OrtStatus
	GetOnnxTypeFromTypeInfo(OrtTypeInfo, *ONNXType) OrtStatus
	CastTypeInfoToTensorInfo(OrtTypeInfo, *OrtTensorTypeAndShapeInfo) OrtStatus
	ReleaseTypeInfo(OrtTypeInfo)
	SessionGetModelMetadata(OrtSession, *OrtModelMetadata) OrtStatus
	ModelMetadataGetProducerName(OrtModelMetadata, OrtAllocator, **byte) OrtStatus
	ModelMetadataGetGraphName(OrtModelMetadata, OrtAllocator, **byte) OrtStatus
	ModelMetadataGetDomain(OrtModelMetadata, OrtAllocator, **byte) OrtStatus
	ModelMetadataGetDescription(OrtModelMetadata, OrtAllocator, **byte) OrtStatus
	ModelMetadataGetVersion(OrtModelMetadata, *int64) OrtStatus
	ModelMetadataGetCustomMetadataMapKeys(OrtModelMetadata, OrtAllocator, ***byte, *int64) OrtStatus
	ModelMetadataLookupCustomMetadataMap(OrtModelMetadata, OrtAllocator, *byte, **byte) OrtStatus
	ReleaseModelMetadata(OrtModelMetadata)

	// Profile buffers.
	CreateTensorAsOrtValue(OrtAllocator, *int64, uintptr, ONNXTensorElementDataType, *OrtValue) OrtStatus
	GetTensorMutableData(OrtValue, *unsafe.Pointer) OrtStatus
	GetTensorTypeAndShape(OrtValue, *OrtTensorTypeAndShapeInfo) OrtStatus
	GetTensorElementType(OrtTensorTypeAndShapeInfo, *ONNXTensorElementDataType) OrtStatus
	GetDimensionsCount(OrtTensorTypeAndShapeInfo, *uintptr) OrtStatus
	GetDimensions(OrtTensorTypeAndShapeInfo, *int64, uintptr) OrtStatus
	ReleaseTensorTypeAndShapeInfo(OrtTensorTypeAndShapeInfo)
	ReleaseValue(OrtValue)

	// Runs over bound buffers.
	CreateIoBinding(OrtSession, *OrtIoBinding) OrtStatus
	BindInput(OrtIoBinding, *byte, OrtValue) OrtStatus
	BindOutput(OrtIoBinding, *byte, OrtValue) OrtStatus
	BindOutputToDevice(OrtIoBinding, *byte, OrtMemoryInfo) OrtStatus
	GetBoundOutputValues(OrtIoBinding, OrtAllocator, **OrtValue, *uintptr) OrtStatus
	ClearBoundOutputs(OrtIoBinding)
	ReleaseIoBinding(OrtIoBinding)
	CreateRunOptions(*OrtRunOptions) OrtStatus
	RunOptionsSetRunTag(OrtRunOptions, *byte) OrtStatus
	RunOptionsSetTerminate(OrtRunOptions) OrtStatus
	ReleaseRunOptions(OrtRunOptions)
	RunWithBinding(OrtSession, OrtRunOptions, OrtIoBinding) OrtStatus
}
