package onnxruntime

import (
	"fmt"
	"unsafe"

	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api"
)

// ModelMetadata is a snapshot of a model's metadata.
type ModelMetadata struct {
	ProducerName   string
	GraphName      string
	Domain         string
	Description    string
	Version        int64
	CustomMetadata map[string]string
}

// GetModelMetadata reads the model metadata from the session.
func (s *Session) GetModelMetadata() (*ModelMetadata, error) {
	if s.ptr == 0 {
		return nil, ErrSessionClosed
	}

	r := s.runtime
	var md api.OrtModelMetadata
	if err := r.statusError(r.apiFuncs.SessionGetModelMetadata(s.ptr, &md)); err != nil {
		return nil, fmt.Errorf("failed to get model metadata: %w", err)
	}
	defer r.apiFuncs.ReleaseModelMetadata(md)

	alloc := r.allocator
	result := &ModelMetadata{}

	strs := []struct {
		field *string
		get   func(api.OrtModelMetadata, api.OrtAllocator, **byte) api.OrtStatus
		what  string
	}{
		{&result.ProducerName, r.apiFuncs.ModelMetadataGetProducerName, "producer name"},
		{&result.GraphName, r.apiFuncs.ModelMetadataGetGraphName, "graph name"},
		{&result.Domain, r.apiFuncs.ModelMetadataGetDomain, "domain"},
		{&result.Description, r.apiFuncs.ModelMetadataGetDescription, "description"},
	}
	for _, f := range strs {
		var p *byte
		if err := r.statusError(f.get(md, alloc.ptr, &p)); err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", f.what, err)
		}
		*f.field = alloc.takeString(p)
	}

	if err := r.statusError(r.apiFuncs.ModelMetadataGetVersion(md, &result.Version)); err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}

	var keysPtr **byte
	var numKeys int64
	if err := r.statusError(r.apiFuncs.ModelMetadataGetCustomMetadataMapKeys(md, alloc.ptr, &keysPtr, &numKeys)); err != nil {
		return nil, fmt.Errorf("failed to get custom metadata keys: %w", err)
	}

	result.CustomMetadata = make(map[string]string, numKeys)
	if numKeys == 0 {
		return result, nil
	}
	defer alloc.free(unsafe.Pointer(keysPtr))

	keyPtrs := unsafe.Slice(keysPtr, numKeys)
	var lookupErr error
	for _, kp := range keyPtrs {
		key := alloc.takeString(kp)
		if lookupErr != nil {
			continue
		}
		k := cBytes(key)
		var vp *byte
		if err := r.statusError(r.apiFuncs.ModelMetadataLookupCustomMetadataMap(md, alloc.ptr, &k[0], &vp)); err != nil {
			lookupErr = fmt.Errorf("failed to get custom metadata value for key %q: %w", key, err)
			continue
		}
		result.CustomMetadata[key] = alloc.takeString(vp)
	}
	if lookupErr != nil {
		return nil, lookupErr
	}
	return result, nil
}
