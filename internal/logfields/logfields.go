// Package logfields defines canonical slog field names so log keys never
// drift between packages.
package logfields

import "log/slog"

const (
	KeyStudy      = "study"
	KeyStage      = "stage"
	KeySection    = "section"
	KeyImage      = "image"
	KeyTemplate   = "template"
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Study(name string) slog.Attr     { return slog.String(KeyStudy, name) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Section(key string) slog.Attr    { return slog.String(KeySection, key) }
func Image(key string) slog.Attr      { return slog.String(KeyImage, key) }
func Template(path string) slog.Attr  { return slog.String(KeyTemplate, path) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
