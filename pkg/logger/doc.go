// Package logger constructs configured *slog.Logger instances for the module.
//
// All components in this module log through log/slog and accept a logger via
// functional options, falling back to slog.Default(). This package only owns
// logger construction: output format, level, and static service attributes.
//
// Usage:
//
//	log := logger.New(
//	    logger.WithProduction("invoicing"),
//	)
//	logger.SetAsDefault(log)
package logger
