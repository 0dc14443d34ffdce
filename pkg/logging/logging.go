// Package logging builds the process-wide zap logger.
package logging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production logger, at debug level if asked.  Per-tick
// telemetry from the control loop is only emitted at debug level.
func New(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	log, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	return log, nil
}
