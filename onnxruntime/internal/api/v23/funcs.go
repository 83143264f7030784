package v23

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api"
)

var _ api.APIFuncs = (*Funcs)(nil)

// Funcs holds the registered ONNX Runtime C API entry points.
type Funcs struct {
	getVersionString func() unsafe.Pointer

	// Status and error handling
	getErrorCode    func(api.OrtStatus) api.OrtErrorCode
	getErrorMessage func(api.OrtStatus) unsafe.Pointer
	releaseStatus   func(api.OrtStatus)

	// Environment
	createEnv  func(api.OrtLoggingLevel, *byte, *api.OrtEnv) api.OrtStatus
	releaseEnv func(api.OrtEnv)

	// Allocator
	getAllocatorWithDefaultOptions func(*api.OrtAllocator) api.OrtStatus
	allocatorFree                  func(api.OrtAllocator, unsafe.Pointer)

	// Memory info
	createCpuMemoryInfo func(api.OrtAllocatorType, api.OrtMemType, *api.OrtMemoryInfo) api.OrtStatus
	releaseMemoryInfo   func(api.OrtMemoryInfo)

	// Session options
	createSessionOptions                  func(*api.OrtSessionOptions) api.OrtStatus
	setIntraOpNumThreads                  func(api.OrtSessionOptions, int32) api.OrtStatus
	setInterOpNumThreads                  func(api.OrtSessionOptions, int32) api.OrtStatus
	setSessionExecutionMode               func(api.OrtSessionOptions, int32) api.OrtStatus
	setSessionGraphOptimizationLevel      func(api.OrtSessionOptions, int32) api.OrtStatus
	setSessionLogSeverityLevel            func(api.OrtSessionOptions, int32) api.OrtStatus
	addSessionConfigEntry                 func(api.OrtSessionOptions, *byte, *byte) api.OrtStatus
	sessionOptionsAppendExecutionProvider func(api.OrtSessionOptions, *byte, **byte, **byte, uintptr) api.OrtStatus
	releaseSessionOptions                 func(api.OrtSessionOptions)

	// Run options
	createRunOptions       func(*api.OrtRunOptions) api.OrtStatus
	releaseRunOptions      func(api.OrtRunOptions)
	runOptionsSetTerminate func(api.OrtRunOptions) api.OrtStatus
	runOptionsSetRunTag    func(api.OrtRunOptions, *byte) api.OrtStatus

	// Session
	createSessionFromArray func(api.OrtEnv, unsafe.Pointer, uintptr, api.OrtSessionOptions, *api.OrtSession) api.OrtStatus
	sessionGetInputCount   func(api.OrtSession, *uintptr) api.OrtStatus
	sessionGetOutputCount  func(api.OrtSession, *uintptr) api.OrtStatus
	sessionGetInputName    func(api.OrtSession, uintptr, api.OrtAllocator, **byte) api.OrtStatus
	sessionGetOutputName   func(api.OrtSession, uintptr, api.OrtAllocator, **byte) api.OrtStatus
	releaseSession         func(api.OrtSession)

	// Model metadata
	sessionGetModelMetadata               func(api.OrtSession, *api.OrtModelMetadata) api.OrtStatus
	modelMetadataGetProducerName          func(api.OrtModelMetadata, api.OrtAllocator, **byte) api.OrtStatus
	modelMetadataGetGraphName             func(api.OrtModelMetadata, api.OrtAllocator, **byte) api.OrtStatus
	modelMetadataGetDomain                func(api.OrtModelMetadata, api.OrtAllocator, **byte) api.OrtStatus
	modelMetadataGetDescription           func(api.OrtModelMetadata, api.OrtAllocator, **byte) api.OrtStatus
	modelMetadataLookupCustomMetadataMap  func(api.OrtModelMetadata, api.OrtAllocator, *byte, **byte) api.OrtStatus
	modelMetadataGetVersion               func(api.OrtModelMetadata, *int64) api.OrtStatus
	modelMetadataGetCustomMetadataMapKeys func(api.OrtModelMetadata, api.OrtAllocator, ***byte, *int64) api.OrtStatus
	releaseModelMetadata                  func(api.OrtModelMetadata)

	// Type introspection
	sessionGetInputTypeInfo  func(api.OrtSession, uintptr, *api.OrtTypeInfo) api.OrtStatus
	sessionGetOutputTypeInfo func(api.OrtSession, uintptr, *api.OrtTypeInfo) api.OrtStatus
	castTypeInfoToTensorInfo func(api.OrtTypeInfo, *api.OrtTensorTypeAndShapeInfo) api.OrtStatus
	getOnnxTypeFromTypeInfo  func(api.OrtTypeInfo, *api.ONNXType) api.OrtStatus
	releaseTypeInfo          func(api.OrtTypeInfo)

	// Tensors
	createTensorAsOrtValue        func(api.OrtAllocator, *int64, uintptr, api.ONNXTensorElementDataType, *api.OrtValue) api.OrtStatus
	getTensorMutableData          func(api.OrtValue, *unsafe.Pointer) api.OrtStatus
	getTensorTypeAndShape         func(api.OrtValue, *api.OrtTensorTypeAndShapeInfo) api.OrtStatus
	getTensorElementType          func(api.OrtTensorTypeAndShapeInfo, *api.ONNXTensorElementDataType) api.OrtStatus
	getDimensionsCount            func(api.OrtTensorTypeAndShapeInfo, *uintptr) api.OrtStatus
	getDimensions                 func(api.OrtTensorTypeAndShapeInfo, *int64, uintptr) api.OrtStatus
	releaseValue                  func(api.OrtValue)
	releaseTensorTypeAndShapeInfo func(api.OrtTensorTypeAndShapeInfo)

	// IO binding
	createIoBinding      func(api.OrtSession, *api.OrtIoBinding) api.OrtStatus
	releaseIoBinding     func(api.OrtIoBinding)
	bindInput            func(api.OrtIoBinding, *byte, api.OrtValue) api.OrtStatus
	bindOutput           func(api.OrtIoBinding, *byte, api.OrtValue) api.OrtStatus
	bindOutputToDevice   func(api.OrtIoBinding, *byte, api.OrtMemoryInfo) api.OrtStatus
	getBoundOutputValues func(api.OrtIoBinding, api.OrtAllocator, **api.OrtValue, *uintptr) api.OrtStatus
	clearBoundOutputs    func(api.OrtIoBinding)
	runWithBinding       func(api.OrtSession, api.OrtRunOptions, api.OrtIoBinding) api.OrtStatus

	// Execution providers
	getAvailableProviders     func(***byte, *int32) api.OrtStatus
	releaseAvailableProviders func(**byte, int32) api.OrtStatus
}

// InitializeFuncs resolves OrtGetApiBase in the loaded library, requests the
// given API version, and registers every entry point once.
func InitializeFuncs(libraryHandle uintptr, version uint32) (*Funcs, error) {
	var ortGetAPIBase func() *APIBase
	purego.RegisterLibFunc(&ortGetAPIBase, libraryHandle, "OrtGetApiBase")

	apiBase := ortGetAPIBase()
	if apiBase == nil {
		return nil, fmt.Errorf("OrtGetApiBase returned nil")
	}

	var getAPI func(uint32) unsafe.Pointer
	purego.RegisterFunc(&getAPI, apiBase.GetAPI)

	apiPtr := getAPI(version)
	if apiPtr == nil {
		return nil, fmt.Errorf("failed to get OrtApi for version %d", version)
	}
	api := (*API)(apiPtr)

	funcs := &Funcs{}
	purego.RegisterFunc(&funcs.getVersionString, apiBase.GetVersionString)

	purego.RegisterFunc(&funcs.getErrorCode, api.GetErrorCode)
	purego.RegisterFunc(&funcs.getErrorMessage, api.GetErrorMessage)
	purego.RegisterFunc(&funcs.releaseStatus, api.ReleaseStatus)

	purego.RegisterFunc(&funcs.createEnv, api.CreateEnv)
	purego.RegisterFunc(&funcs.releaseEnv, api.ReleaseEnv)

	purego.RegisterFunc(&funcs.getAllocatorWithDefaultOptions, api.GetAllocatorWithDefaultOptions)
	purego.RegisterFunc(&funcs.allocatorFree, api.AllocatorFree)

	purego.RegisterFunc(&funcs.createCpuMemoryInfo, api.CreateCpuMemoryInfo)
	purego.RegisterFunc(&funcs.releaseMemoryInfo, api.ReleaseMemoryInfo)

	purego.RegisterFunc(&funcs.createSessionOptions, api.CreateSessionOptions)
	purego.RegisterFunc(&funcs.setIntraOpNumThreads, api.SetIntraOpNumThreads)
	purego.RegisterFunc(&funcs.setInterOpNumThreads, api.SetInterOpNumThreads)
	purego.RegisterFunc(&funcs.setSessionExecutionMode, api.SetSessionExecutionMode)
	purego.RegisterFunc(&funcs.setSessionGraphOptimizationLevel, api.SetSessionGraphOptimizationLevel)
	purego.RegisterFunc(&funcs.setSessionLogSeverityLevel, api.SetSessionLogSeverityLevel)
	purego.RegisterFunc(&funcs.addSessionConfigEntry, api.AddSessionConfigEntry)
	purego.RegisterFunc(&funcs.sessionOptionsAppendExecutionProvider, api.SessionOptionsAppendExecutionProvider)
	purego.RegisterFunc(&funcs.releaseSessionOptions, api.ReleaseSessionOptions)

	purego.RegisterFunc(&funcs.createRunOptions, api.CreateRunOptions)
	purego.RegisterFunc(&funcs.releaseRunOptions, api.ReleaseRunOptions)
	purego.RegisterFunc(&funcs.runOptionsSetTerminate, api.RunOptionsSetTerminate)
	purego.RegisterFunc(&funcs.runOptionsSetRunTag, api.RunOptionsSetRunTag)

	purego.RegisterFunc(&funcs.createSessionFromArray, api.CreateSessionFromArray)
	purego.RegisterFunc(&funcs.sessionGetInputCount, api.SessionGetInputCount)
	purego.RegisterFunc(&funcs.sessionGetOutputCount, api.SessionGetOutputCount)
	purego.RegisterFunc(&funcs.sessionGetInputName, api.SessionGetInputName)
	purego.RegisterFunc(&funcs.sessionGetOutputName, api.SessionGetOutputName)
	purego.RegisterFunc(&funcs.releaseSession, api.ReleaseSession)

	purego.RegisterFunc(&funcs.sessionGetModelMetadata, api.SessionGetModelMetadata)
	purego.RegisterFunc(&funcs.modelMetadataGetProducerName, api.ModelMetadataGetProducerName)
	purego.RegisterFunc(&funcs.modelMetadataGetGraphName, api.ModelMetadataGetGraphName)
	purego.RegisterFunc(&funcs.modelMetadataGetDomain, api.ModelMetadataGetDomain)
	purego.RegisterFunc(&funcs.modelMetadataGetDescription, api.ModelMetadataGetDescription)
	purego.RegisterFunc(&funcs.modelMetadataLookupCustomMetadataMap, api.ModelMetadataLookupCustomMetadataMap)
	purego.RegisterFunc(&funcs.modelMetadataGetVersion, api.ModelMetadataGetVersion)
	purego.RegisterFunc(&funcs.modelMetadataGetCustomMetadataMapKeys, api.ModelMetadataGetCustomMetadataMapKeys)
	purego.RegisterFunc(&funcs.releaseModelMetadata, api.ReleaseModelMetadata)

	purego.RegisterFunc(&funcs.sessionGetInputTypeInfo, api.SessionGetInputTypeInfo)
	purego.RegisterFunc(&funcs.sessionGetOutputTypeInfo, api.SessionGetOutputTypeInfo)
	purego.RegisterFunc(&funcs.castTypeInfoToTensorInfo, api.CastTypeInfoToTensorInfo)
	purego.RegisterFunc(&funcs.getOnnxTypeFromTypeInfo, api.GetOnnxTypeFromTypeInfo)
	purego.RegisterFunc(&funcs.releaseTypeInfo, api.ReleaseTypeInfo)

	purego.RegisterFunc(&funcs.createTensorAsOrtValue, api.CreateTensorAsOrtValue)
	purego.RegisterFunc(&funcs.getTensorMutableData, api.GetTensorMutableData)
	purego.RegisterFunc(&funcs.getTensorTypeAndShape, api.GetTensorTypeAndShape)
	purego.RegisterFunc(&funcs.getTensorElementType, api.GetTensorElementType)
	purego.RegisterFunc(&funcs.getDimensionsCount, api.GetDimensionsCount)
	purego.RegisterFunc(&funcs.getDimensions, api.GetDimensions)
	purego.RegisterFunc(&funcs.releaseValue, api.ReleaseValue)
	purego.RegisterFunc(&funcs.releaseTensorTypeAndShapeInfo, api.ReleaseTensorTypeAndShapeInfo)

	purego.RegisterFunc(&funcs.createIoBinding, api.CreateIoBinding)
	purego.RegisterFunc(&funcs.releaseIoBinding, api.ReleaseIoBinding)
	purego.RegisterFunc(&funcs.bindInput, api.BindInput)
	purego.RegisterFunc(&funcs.bindOutput, api.BindOutput)
	purego.RegisterFunc(&funcs.bindOutputToDevice, api.BindOutputToDevice)
	purego.RegisterFunc(&funcs.getBoundOutputValues, api.GetBoundOutputValues)
	purego.RegisterFunc(&funcs.clearBoundOutputs, api.ClearBoundOutputs)
	purego.RegisterFunc(&funcs.runWithBinding, api.RunWithBinding)

	purego.RegisterFunc(&funcs.getAvailableProviders, api.GetAvailableProviders)
	purego.RegisterFunc(&funcs.releaseAvailableProviders, api.ReleaseAvailableProviders)

	return funcs, nil
}

func (f *Funcs) GetVersionString() unsafe.Pointer {
	return f.getVersionString()
}

func (f *Funcs) GetErrorCode(status api.OrtStatus) api.OrtErrorCode {
	return f.getErrorCode(status)
}

func (f *Funcs) GetErrorMessage(status api.OrtStatus) unsafe.Pointer {
	return f.getErrorMessage(status)
}

func (f *Funcs) ReleaseStatus(status api.OrtStatus) {
	f.releaseStatus(status)
}

func (f *Funcs) CreateEnv(logLevel api.OrtLoggingLevel, logID *byte, env *api.OrtEnv) api.OrtStatus {
	return f.createEnv(logLevel, logID, env)
}

func (f *Funcs) ReleaseEnv(env api.OrtEnv) {
	f.releaseEnv(env)
}

func (f *Funcs) GetAllocatorWithDefaultOptions(allocator *api.OrtAllocator) api.OrtStatus {
	return f.getAllocatorWithDefaultOptions(allocator)
}

func (f *Funcs) AllocatorFree(allocator api.OrtAllocator, ptr unsafe.Pointer) {
	f.allocatorFree(allocator, ptr)
}

func (f *Funcs) CreateCpuMemoryInfo(allocType api.OrtAllocatorType, memType api.OrtMemType, info *api.OrtMemoryInfo) api.OrtStatus {
	return f.createCpuMemoryInfo(allocType, memType, info)
}

func (f *Funcs) ReleaseMemoryInfo(info api.OrtMemoryInfo) {
	f.releaseMemoryInfo(info)
}

func (f *Funcs) CreateSessionOptions(options *api.OrtSessionOptions) api.OrtStatus {
	return f.createSessionOptions(options)
}

func (f *Funcs) SetIntraOpNumThreads(options api.OrtSessionOptions, n int32) api.OrtStatus {
	return f.setIntraOpNumThreads(options, n)
}

func (f *Funcs) SetInterOpNumThreads(options api.OrtSessionOptions, n int32) api.OrtStatus {
	return f.setInterOpNumThreads(options, n)
}

func (f *Funcs) SetSessionExecutionMode(options api.OrtSessionOptions, mode int32) api.OrtStatus {
	return f.setSessionExecutionMode(options, mode)
}

func (f *Funcs) SetSessionGraphOptimizationLevel(options api.OrtSessionOptions, level int32) api.OrtStatus {
	return f.setSessionGraphOptimizationLevel(options, level)
}

func (f *Funcs) SetSessionLogSeverityLevel(options api.OrtSessionOptions, level int32) api.OrtStatus {
	return f.setSessionLogSeverityLevel(options, level)
}

func (f *Funcs) AddSessionConfigEntry(options api.OrtSessionOptions, key *byte, value *byte) api.OrtStatus {
	return f.addSessionConfigEntry(options, key, value)
}

func (f *Funcs) SessionOptionsAppendExecutionProvider(options api.OrtSessionOptions, name *byte, keys **byte, values **byte, n uintptr) api.OrtStatus {
	return f.sessionOptionsAppendExecutionProvider(options, name, keys, values, n)
}

func (f *Funcs) ReleaseSessionOptions(options api.OrtSessionOptions) {
	f.releaseSessionOptions(options)
}

func (f *Funcs) CreateRunOptions(options *api.OrtRunOptions) api.OrtStatus {
	return f.createRunOptions(options)
}

func (f *Funcs) ReleaseRunOptions(options api.OrtRunOptions) {
	f.releaseRunOptions(options)
}

func (f *Funcs) RunOptionsSetTerminate(options api.OrtRunOptions) api.OrtStatus {
	return f.runOptionsSetTerminate(options)
}

func (f *Funcs) RunOptionsSetRunTag(options api.OrtRunOptions, tag *byte) api.OrtStatus {
	return f.runOptionsSetRunTag(options, tag)
}

func (f *Funcs) CreateSessionFromArray(env api.OrtEnv, data unsafe.Pointer, n uintptr, options api.OrtSessionOptions, session *api.OrtSession) api.OrtStatus {
	return f.createSessionFromArray(env, data, n, options, session)
}

func (f *Funcs) SessionGetInputCount(session api.OrtSession, count *uintptr) api.OrtStatus {
	return f.sessionGetInputCount(session, count)
}

func (f *Funcs) SessionGetOutputCount(session api.OrtSession, count *uintptr) api.OrtStatus {
	return f.sessionGetOutputCount(session, count)
}

func (f *Funcs) SessionGetInputName(session api.OrtSession, index uintptr, allocator api.OrtAllocator, name **byte) api.OrtStatus {
	return f.sessionGetInputName(session, index, allocator, name)
}

func (f *Funcs) SessionGetOutputName(session api.OrtSession, index uintptr, allocator api.OrtAllocator, name **byte) api.OrtStatus {
	return f.sessionGetOutputName(session, index, allocator, name)
}

func (f *Funcs) ReleaseSession(session api.OrtSession) {
	f.releaseSession(session)
}

func (f *Funcs) SessionGetModelMetadata(session api.OrtSession, metadata *api.OrtModelMetadata) api.OrtStatus {
	return f.sessionGetModelMetadata(session, metadata)
}

func (f *Funcs) ModelMetadataGetProducerName(metadata api.OrtModelMetadata, allocator api.OrtAllocator, value **byte) api.OrtStatus {
	return f.modelMetadataGetProducerName(metadata, allocator, value)
}

func (f *Funcs) ModelMetadataGetGraphName(metadata api.OrtModelMetadata, allocator api.OrtAllocator, value **byte) api.OrtStatus {
	return f.modelMetadataGetGraphName(metadata, allocator, value)
}

func (f *Funcs) ModelMetadataGetDomain(metadata api.OrtModelMetadata, allocator api.OrtAllocator, value **byte) api.OrtStatus {
	return f.modelMetadataGetDomain(metadata, allocator, value)
}

func (f *Funcs) ModelMetadataGetDescription(metadata api.OrtModelMetadata, allocator api.OrtAllocator, value **byte) api.OrtStatus {
	return f.modelMetadataGetDescription(metadata, allocator, value)
}

func (f *Funcs) ModelMetadataLookupCustomMetadataMap(metadata api.OrtModelMetadata, allocator api.OrtAllocator, key *byte, value **byte) api.OrtStatus {
	return f.modelMetadataLookupCustomMetadataMap(metadata, allocator, key, value)
}

func (f *Funcs) ModelMetadataGetVersion(metadata api.OrtModelMetadata, version *int64) api.OrtStatus {
	return f.modelMetadataGetVersion(metadata, version)
}

func (f *Funcs) ModelMetadataGetCustomMetadataMapKeys(metadata api.OrtModelMetadata, allocator api.OrtAllocator, keys ***byte, n *int64) api.OrtStatus {
	return f.modelMetadataGetCustomMetadataMapKeys(metadata, allocator, keys, n)
}

func (f *Funcs) ReleaseModelMetadata(metadata api.OrtModelMetadata) {
	f.releaseModelMetadata(metadata)
}

func (f *Funcs) SessionGetInputTypeInfo(session api.OrtSession, index uintptr, info *api.OrtTypeInfo) api.OrtStatus {
	return f.sessionGetInputTypeInfo(session, index, info)
}

func (f *Funcs) SessionGetOutputTypeInfo(session api.OrtSession, index uintptr, info *api.OrtTypeInfo) api.OrtStatus {
	return f.sessionGetOutputTypeInfo(session, index, info)
}

func (f *Funcs) CastTypeInfoToTensorInfo(info api.OrtTypeInfo, tensorInfo *api.OrtTensorTypeAndShapeInfo) api.OrtStatus {
	return f.castTypeInfoToTensorInfo(info, tensorInfo)
}

func (f *Funcs) GetOnnxTypeFromTypeInfo(info api.OrtTypeInfo, onnxType *api.ONNXType) api.OrtStatus {
	return f.getOnnxTypeFromTypeInfo(info, onnxType)
}

func (f *Funcs) ReleaseTypeInfo(info api.OrtTypeInfo) {
	f.releaseTypeInfo(info)
}

func (f *Funcs) CreateTensorAsOrtValue(allocator api.OrtAllocator, shape *int64, rank uintptr, elemType api.ONNXTensorElementDataType, value *api.OrtValue) api.OrtStatus {
	return f.createTensorAsOrtValue(allocator, shape, rank, elemType, value)
}

func (f *Funcs) GetTensorMutableData(value api.OrtValue, data *unsafe.Pointer) api.OrtStatus {
	return f.getTensorMutableData(value, data)
}

func (f *Funcs) GetTensorTypeAndShape(value api.OrtValue, info *api.OrtTensorTypeAndShapeInfo) api.OrtStatus {
	return f.getTensorTypeAndShape(value, info)
}

func (f *Funcs) GetTensorElementType(info api.OrtTensorTypeAndShapeInfo, elemType *api.ONNXTensorElementDataType) api.OrtStatus {
	return f.getTensorElementType(info, elemType)
}

func (f *Funcs) GetDimensionsCount(info api.OrtTensorTypeAndShapeInfo, count *uintptr) api.OrtStatus {
	return f.getDimensionsCount(info, count)
}

func (f *Funcs) GetDimensions(info api.OrtTensorTypeAndShapeInfo, dims *int64, n uintptr) api.OrtStatus {
	return f.getDimensions(info, dims, n)
}

func (f *Funcs) ReleaseValue(value api.OrtValue) {
	f.releaseValue(value)
}

func (f *Funcs) ReleaseTensorTypeAndShapeInfo(info api.OrtTensorTypeAndShapeInfo) {
	f.releaseTensorTypeAndShapeInfo(info)
}

func (f *Funcs) CreateIoBinding(session api.OrtSession, binding *api.OrtIoBinding) api.OrtStatus {
	return f.createIoBinding(session, binding)
}

func (f *Funcs) ReleaseIoBinding(binding api.OrtIoBinding) {
	f.releaseIoBinding(binding)
}

func (f *Funcs) BindInput(binding api.OrtIoBinding, name *byte, value api.OrtValue) api.OrtStatus {
	return f.bindInput(binding, name, value)
}

func (f *Funcs) BindOutput(binding api.OrtIoBinding, name *byte, value api.OrtValue) api.OrtStatus {
	return f.bindOutput(binding, name, value)
}

func (f *Funcs) BindOutputToDevice(binding api.OrtIoBinding, name *byte, info api.OrtMemoryInfo) api.OrtStatus {
	return f.bindOutputToDevice(binding, name, info)
}

func (f *Funcs) GetBoundOutputValues(binding api.OrtIoBinding, allocator api.OrtAllocator, values **api.OrtValue, n *uintptr) api.OrtStatus {
	return f.getBoundOutputValues(binding, allocator, values, n)
}

func (f *Funcs) ClearBoundOutputs(binding api.OrtIoBinding) {
	f.clearBoundOutputs(binding)
}

func (f *Funcs) RunWithBinding(session api.OrtSession, options api.OrtRunOptions, binding api.OrtIoBinding) api.OrtStatus {
	return f.runWithBinding(session, options, binding)
}

func (f *Funcs) GetAvailableProviders(names ***byte, n *int32) api.OrtStatus {
	return f.getAvailableProviders(names, n)
}

func (f *Funcs) ReleaseAvailableProviders(names **byte, n int32) api.OrtStatus {
	return f.releaseAvailableProviders(names, n)
}
