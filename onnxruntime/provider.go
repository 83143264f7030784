package onnxruntime

import (
	"fmt"
	"slices"
	"strings"
)

// CPUExecutionProvider is always available and needs no registration.
const CPUExecutionProvider = "CPUExecutionProvider"

var providerAliases = map[string]string{
	"":         CPUExecutionProvider,
	"cpu":      CPUExecutionProvider,
	"mkldnn":   "DnnlExecutionProvider",
	"dnnl":     "DnnlExecutionProvider",
	"cuda":     "CUDAExecutionProvider",
	"tensorrt": "TensorrtExecutionProvider",
	"coreml":   "CoreMLExecutionProvider",
	"openvino": "OpenVINOExecutionProvider",
	"rocm":     "ROCMExecutionProvider",
	"dml":      "DmlExecutionProvider",
	"xnnpack":  "XnnpackExecutionProvider",
	"qnn":      "QNNExecutionProvider",
}

// ProviderName maps a backend name such as "cuda" or "mkldnn" to its ORT
// execution provider name. Unknown names are returned unchanged.
func ProviderName(backend string) string {
	if name, ok := providerAliases[strings.ToLower(backend)]; ok {
		return name
	}
	return backend
}

// NewSessionWithProviderFallback creates a session trying each provider in order.
// It returns the session and the name of the provider that was used.
// If all requested providers fail, it falls back to CPUExecutionProvider.
//
// Example:
//
//	session, provider, err := runtime.NewSessionWithProviderFallback(env, modelData, nil,
//	    ExecutionProvider{Name: "CUDAExecutionProvider", Options: map[string]string{"device_id": "0"}},
//	    ExecutionProvider{Name: "CoreMLExecutionProvider"},
//	)
//	fmt.Println("Using provider:", provider)
func (r *Runtime) NewSessionWithProviderFallback(env *Env, modelData []byte, baseOptions *SessionOptions, providers ...ExecutionProvider) (*Session, string, error) {
	if baseOptions == nil {
		baseOptions = &SessionOptions{}
	}

	available, err := r.GetAvailableProviders()
	if err != nil {
		return nil, "", err
	}

	var errs []string
	for _, provider := range providers {
		if provider.Name == CPUExecutionProvider {
			break
		}
		if !slices.Contains(available, provider.Name) {
			errs = append(errs, provider.Name+": not available")
			continue
		}

		opts := *baseOptions
		opts.ExecutionProviders = []ExecutionProvider{provider}
		session, err := r.NewSessionFromBytes(env, modelData, &opts)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", provider.Name, err))
			continue
		}
		return session, provider.Name, nil
	}

	opts := *baseOptions
	opts.ExecutionProviders = nil
	session, err := r.NewSessionFromBytes(env, modelData, &opts)
	if err != nil {
		if len(errs) > 0 {
			return nil, "", fmt.Errorf("%w (providers tried: %s)", err, strings.Join(errs, "; "))
		}
		return nil, "", err
	}
	return session, CPUExecutionProvider, nil
}
