// Command codegen generates the OrtApi vtable index struct used by
// onnxruntime/internal/api/vNN from the published C API header.
//
//	go run ./tools/codegen -version 1.23.0 -through SessionOptionsAppendExecutionProvider -out onnxruntime/internal/api/v23
package main

import (
	"bufio"
	"bytes"
	_ "embed"
	"flag"
	"fmt"
	"go/format"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
)

const headerURLTemplate = "https://raw.githubusercontent.com/microsoft/onnxruntime/v%s/include/onnxruntime/core/session/onnxruntime_c_api.h"

var (
	macroPattern   = regexp.MustCompile(`ORT_API2_STATUS\(([A-Za-z0-9_]+)`)
	releasePattern = regexp.MustCompile(`ORT_CLASS_RELEASE\(([A-Za-z0-9_]+)\)`)
	directPattern  = regexp.MustCompile(`\*\s*([A-Z][a-zA-Z0-9_]*)\)`)
)

//go:embed templates/api.go.tmpl
var apiTemplate string

// Function is one OrtApi entry and its position in the table.
type Function struct {
	Name  string
	Index int
}

type generatorConfig struct {
	Version     string
	FullVersion string
	Through     string
	Functions   []Function
	PackageName string
	HeaderURL   string
}

func main() {
	version := flag.String("version", "1.23.0", "ONNX Runtime version (X.Y.Z)")
	through := flag.String("through", "", "last OrtApi entry to emit; empty emits the whole table")
	header := flag.String("header", "", "read the header from a local file instead of downloading it")
	outDir := flag.String("out", "", "output directory (e.g. onnxruntime/internal/api/v23)")
	flag.Parse()

	if err := run(*version, *through, *header, *outDir); err != nil {
		slog.Error("codegen failed", "error", err)
		os.Exit(1)
	}
}

func run(version, through, header, outDir string) error {
	if outDir == "" {
		return fmt.Errorf("output directory is required (-out)")
	}
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return fmt.Errorf("invalid version %q, expected X.Y.Z", version)
	}

	headerURL := fmt.Sprintf(headerURLTemplate, version)
	src, err := openHeader(header, headerURL)
	if err != nil {
		return err
	}
	defer src.Close()

	functions, err := parseOrtAPIStruct(src)
	if err != nil {
		return fmt.Errorf("failed to parse header: %w", err)
	}
	functions, err = truncateThrough(functions, through)
	if err != nil {
		return err
	}
	slog.Info("parsed OrtApi", "functions", len(functions), "through", through)

	cfg := generatorConfig{
		Version:     parts[1],
		FullVersion: version,
		Through:     through,
		Functions:   functions,
		PackageName: "v" + parts[1],
		HeaderURL:   headerURL,
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(outDir, "api.go")
	if err := executeTemplate(path, apiTemplate, cfg); err != nil {
		return err
	}
	slog.Info("generated", "path", path)
	return nil
}

func openHeader(path, url string) (io.ReadCloser, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open header: %w", err)
		}
		return f, nil
	}
	slog.Info("downloading header", "url", url)
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download header: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download header: HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// parseOrtAPIStruct returns the entries of the OrtApi struct in declaration
// order.
func parseOrtAPIStruct(r io.Reader) ([]Function, error) {
	var functions []Function
	inStruct := false

	add := func(name string) {
		functions = append(functions, Function{Name: name, Index: len(functions)})
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.Contains(line, "struct OrtApi {") {
			inStruct = true
			continue
		}
		if !inStruct {
			continue
		}
		if strings.HasPrefix(trimmed, "};") {
			break
		}
		if isCommentOrEmpty(trimmed) {
			continue
		}

		if m := macroPattern.FindStringSubmatch(line); m != nil {
			add(m[1])
		} else if m := releasePattern.FindStringSubmatch(line); m != nil {
			add("Release" + m[1])
		} else if m := directPattern.FindStringSubmatch(line); m != nil {
			add(m[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(functions) == 0 {
		return nil, fmt.Errorf("no OrtApi entries found")
	}
	return functions, nil
}

func isCommentOrEmpty(s string) bool {
	return s == "" || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*") || strings.HasPrefix(s, "*")
}

// truncateThrough keeps entries up to and including name.
func truncateThrough(functions []Function, name string) ([]Function, error) {
	if name == "" {
		return functions, nil
	}
	for i, f := range functions {
		if f.Name == name {
			return functions[:i+1], nil
		}
	}
	return nil, fmt.Errorf("OrtApi has no entry %q", name)
}

func executeTemplate(path, tmplStr string, cfg generatorConfig) error {
	tmpl, err := template.New("api").Parse(tmplStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		slog.Warn("failed to format generated code", "error", err)
		formatted = buf.Bytes()
	}

	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
