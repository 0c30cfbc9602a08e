// Package logger envuelve zerolog con la configuración del servicio: salida
// legible para desarrollo local y JSON estructurado en producción.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controla formato y verbosidad del logger.
type Config struct {
	Env   string // development usa consola legible; cualquier otro valor, JSON
	Level string // trace, debug, info, warn, error
}

// Logger es el logger estructurado que se inyecta en capas superiores.
type Logger struct {
	zl zerolog.Logger
}

// New construye el logger según la configuración. Un nivel vacío o
// irreconocible cae a info.
func New(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()

	// las librerías que loguean por el global de zerolog salen por aquí también
	log.Logger = zl

	return &Logger{zl: zl}
}

// Trace, Debug, Info, Warn, Error y Fatal delegan en zerolog.
func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With abre un sublogger con campos fijos.
func (l *Logger) With() zerolog.Context { return l.zl.With() }

// Zerolog expone el logger interno cuando se necesita la API directa.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }
