package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benedoc-inc/graphbind/binding"
	"github.com/benedoc-inc/graphbind/internal/envconfig"
	"github.com/benedoc-inc/graphbind/onnxruntime"
	"github.com/benedoc-inc/graphbind/reference"
)

// Version is set at build time.
var Version = "dev"

const (
	engineAuto        = "auto"
	engineReference   = "ref"
	engineONNXRuntime = "onnxruntime"
)

type globalFlags struct {
	engine  string
	backend string
	config  string
	verbose bool
}

// NewCLI returns the root command.
func NewCLI() *cobra.Command {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:           "graphbind",
		Short:         "Inspect and run ONNX graphs through graphbind",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Version: Version,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.engine, "engine", engineAuto, "engine to use (auto, ref, onnxruntime); auto picks onnxruntime when ONNXRUNTIME_LIB_PATH is set")
	flags.StringVar(&g.backend, "backend", "", "backend name passed to the engine (e.g. cpu, mkldnn, cuda, ref)")
	flags.StringVar(&g.config, "config", "", "backend config YAML file")
	flags.BoolVarP(&g.verbose, "verbose", "V", false, "enable debug logging")

	rootCmd.AddCommand(
		newInspectCmd(&g),
		newRunCmd(&g),
		newVersionCmd(),
	)
	return rootCmd
}

func (g *globalFlags) logger(w io.Writer) *slog.Logger {
	level := envconfig.LogLevel()
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// backendConfig merges --config and --backend, the flag winning.
func (g *globalFlags) backendConfig() (binding.BackendConfig, error) {
	var cfg binding.BackendConfig
	if g.config != "" {
		var err error
		cfg, err = binding.LoadBackendConfig(g.config)
		if err != nil {
			return binding.BackendConfig{}, err
		}
	}
	if g.backend != "" {
		cfg.BackendName = g.backend
	}
	return cfg, nil
}

// engineName resolves --engine auto against the backend and environment.
func (g *globalFlags) engineName(cfg binding.BackendConfig) (string, error) {
	switch strings.ToLower(g.engine) {
	case engineReference, "reference":
		return engineReference, nil
	case engineONNXRuntime, "ort":
		return engineONNXRuntime, nil
	case engineAuto, "":
		backend := cfg.BackendName
		if backend == "" {
			backend = envconfig.Backend()
		}
		if backend != "" && reference.Supports(backend) {
			return engineReference, nil
		}
		if envconfig.LibraryPath() != "" {
			return engineONNXRuntime, nil
		}
		return engineReference, nil
	default:
		return "", fmt.Errorf("unknown engine %q", g.engine)
	}
}

// openEngine creates the named engine. The returned closer releases native
// resources and must be called after every Model is closed.
func openEngine(name string, logger *slog.Logger) (binding.Engine, func() error, error) {
	switch name {
	case engineReference:
		return reference.NewEngine(reference.WithLogger(logger)), func() error { return nil }, nil
	case engineONNXRuntime:
		rt, err := onnxruntime.NewRuntime("", 0)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load ONNX Runtime: %w", err)
		}
		env, err := rt.NewEnv("graphbind", onnxruntime.LoggingLevelWarning)
		if err != nil {
			rt.Close()
			return nil, nil, err
		}
		closer := func() error {
			env.Close()
			return rt.Close()
		}
		return onnxruntime.NewEngine(rt, env, onnxruntime.WithLogger(logger)), closer, nil
	default:
		return nil, nil, fmt.Errorf("unknown engine %q", name)
	}
}
