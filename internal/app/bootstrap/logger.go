// internal/app/bootstrap/logger.go
package bootstrap

import (
	"go.uber.org/zap"
)

// NewLogger builds the client's logger. It writes JSON to stderr so the
// shell's view output on stdout stays clean. dev switches to the console
// encoder and debug-level caller info.
func NewLogger(level string, dev bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
