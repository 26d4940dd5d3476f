package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the global logger. Unknown level names fall back to
// info. When file is non-empty the output is duplicated into a
// size-rotated file so long-running monitors can be audited later.
func Setup(level, file string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}

	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("cannot create log directory, file logging disabled")
		} else {
			writers = append(writers, &lumberjack.Logger{
				Filename:   file,
				MaxSize:    10, // max file size (MB) before rotation
				MaxBackups: 5,  // max number of old log files to keep
				MaxAge:     7,  // max age (days) to retain a log file
				Compress:   true,
			})
		}
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Logger().
		Level(lvl)
}
