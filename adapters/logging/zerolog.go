package logging

import (
	"io"

	"github.com/goliatone/go-tableexport/export"
	"github.com/rs/zerolog"
)

// Zerolog adapts a zerolog.Logger to export.Logger.
type Zerolog struct {
	logger zerolog.Logger
}

var _ export.Logger = Zerolog{}

// NewZerolog wraps an existing zerolog logger.
func NewZerolog(logger zerolog.Logger) Zerolog {
	return Zerolog{logger: logger}
}

// New creates a JSON logger writing to w at the given level
// ("debug", "info", "warn", "error"). Unknown levels mean info.
func New(w io.Writer, level string) Zerolog {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return NewZerolog(zerolog.New(w).Level(lvl).With().Timestamp().Str("component", "tableexport").Logger())
}

// With returns a logger carrying an extra string field.
func (z Zerolog) With(key, value string) Zerolog {
	return Zerolog{logger: z.logger.With().Str(key, value).Logger()}
}

func (z Zerolog) Debugf(format string, args ...any) { z.logger.Debug().Msgf(format, args...) }
func (z Zerolog) Infof(format string, args ...any)  { z.logger.Info().Msgf(format, args...) }
func (z Zerolog) Warnf(format string, args ...any)  { z.logger.Warn().Msgf(format, args...) }
func (z Zerolog) Errorf(format string, args ...any) { z.logger.Error().Msgf(format, args...) }
