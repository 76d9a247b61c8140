package logger

import "log/slog"

// Error returns a slog attribute for an error value. Nil errors render as an
// empty string so call sites don't need to guard.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
