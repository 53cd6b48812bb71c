package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyTarget     = "target"
	KeyReference  = "reference"
	KeyRevisioned = "revisioned"
	KeyDigest     = "digest"
	KeyCount      = "count"
	KeyRoot       = "root_dir"
	KeySubject    = "subject"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Target(p string) slog.Attr       { return slog.String(KeyTarget, p) }
func Reference(r string) slog.Attr    { return slog.String(KeyReference, r) }
func Revisioned(p string) slog.Attr   { return slog.String(KeyRevisioned, p) }
func Digest(d string) slog.Attr       { return slog.String(KeyDigest, d) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Root(dir string) slog.Attr       { return slog.String(KeyRoot, dir) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
