package binding

import "log/slog"

// SlogHook logs runs through log/slog: Info on success, Error on failure.
//
// Example:
//
//	model, _ := builder.Compile(cfg, binding.WithHooks(binding.NewSlogHook(slog.Default())))
type SlogHook struct {
	logger *slog.Logger
}

// NewSlogHook creates a Hook logging to logger, or slog.Default() when nil.
func NewSlogHook(logger *slog.Logger) *SlogHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogHook{logger: logger}
}

func (h *SlogHook) BeforeRun(*RunInfo) {}

func (h *SlogHook) AfterRun(info *RunInfo) {
	if info.Error != nil {
		h.logger.Error("run failed",
			slog.String("model", info.ModelID),
			slog.Duration("duration", info.Duration),
			slog.Any("inputs", info.Inputs),
			slog.String("error", info.Error.Error()),
		)
		return
	}
	h.logger.Info("run completed",
		slog.String("model", info.ModelID),
		slog.Duration("duration", info.Duration),
		slog.Any("inputs", info.Inputs),
		slog.Any("outputs", info.Outputs),
	)
}
